package severity_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/triage/internal/domain/model"
	"github.com/okian/triage/internal/domain/severity"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeClassifier returns canned polarities keyed by text.
type fakeClassifier struct {
	byText map[string]model.Polarity
	err    error
	calls  int
}

func (f *fakeClassifier) Classify(_ context.Context, text string) (model.Polarity, error) {
	f.calls++
	if f.err != nil {
		return model.Polarity{}, f.err
	}
	return f.byText[text], nil
}

func TestRatingSeverity(t *testing.T) {
	Convey("Given every valid rating", t, func() {
		want := map[int]float64{1: 1.0, 2: 0.75, 3: 0.5, 4: 0.25, 5: 0.0}

		Convey("Then the linear map is applied", func() {
			for rating, expected := range want {
				So(severity.RatingSeverity(rating), ShouldEqual, expected)
			}
		})
	})
}

func TestNormalize(t *testing.T) {
	Convey("Given classifier polarities", t, func() {
		Convey("Then negative labels keep their confidence", func() {
			So(severity.Normalize(model.Polarity{Label: "NEGATIVE", Confidence: 0.9}), ShouldEqual, 0.9)
		})

		Convey("Then other labels use the complement", func() {
			So(severity.Normalize(model.Polarity{Label: "POSITIVE", Confidence: 0.95}), ShouldAlmostEqual, 0.05, 1e-9)
		})

		Convey("Then out-of-range confidences are clamped", func() {
			So(severity.Normalize(model.Polarity{Label: "NEGATIVE", Confidence: 1.7}), ShouldEqual, 1.0)
			So(severity.Normalize(model.Polarity{Label: "POSITIVE", Confidence: -0.2}), ShouldEqual, 1.0)
		})
	})
}

func TestCombineIsConvex(t *testing.T) {
	Convey("Given sub-scores across the unit cube", t, func() {
		steps := []float64{0, 0.1, 0.25, 0.4, 0.5, 0.75, 0.9, 1}

		Convey("Then the combined score stays in [0,1]", func() {
			for _, r := range steps {
				for _, f := range steps {
					for _, s := range steps {
						v := severity.Combine(r, f, s)
						So(v, ShouldBeGreaterThanOrEqualTo, 0)
						So(v, ShouldBeLessThanOrEqualTo, 1)
					}
				}
			}
		})

		Convey("Then the extremes map to 0 and 1", func() {
			So(severity.Combine(0, 0, 0), ShouldEqual, 0)
			So(severity.Combine(1, 1, 1), ShouldAlmostEqual, 1, 1e-12)
		})
	})
}

func TestLabel(t *testing.T) {
	Convey("Given threshold boundaries", t, func() {
		Convey("Then both boundaries are closed", func() {
			So(severity.Label(0.75), ShouldEqual, model.SentimentNegative)
			So(severity.Label(0.40), ShouldEqual, model.SentimentPositive)
		})

		Convey("Then the gap maps to neutral", func() {
			So(severity.Label(0.5), ShouldEqual, model.SentimentNeutral)
			So(severity.Label(0.4000001), ShouldEqual, model.SentimentNeutral)
			So(severity.Label(0.7499999), ShouldEqual, model.SentimentNeutral)
		})

		Convey("Then the extremes are labelled", func() {
			So(severity.Label(0), ShouldEqual, model.SentimentPositive)
			So(severity.Label(1), ShouldEqual, model.SentimentNegative)
		})
	})
}

func TestParseRating(t *testing.T) {
	Convey("Given rating input strings", t, func() {
		Convey("Then valid ratings parse", func() {
			r, err := severity.ParseRating(" 3 ")
			So(err, ShouldBeNil)
			So(r, ShouldEqual, 3)
		})

		Convey("Then out-of-range and non-numeric input fail with ErrInvalidRating", func() {
			for _, in := range []string{"0", "6", "-1", "abc", "", "2.5"} {
				_, err := severity.ParseRating(in)
				So(errors.Is(err, severity.ErrInvalidRating), ShouldBeTrue)
			}
		})
	})
}

func TestEngineCompute(t *testing.T) {
	Convey("Given an engine backed by a canned classifier", t, func() {
		classifier := &fakeClassifier{byText: map[string]model.Polarity{
			"awful":      {Label: "NEGATIVE", Confidence: 0.9},
			"rude agent": {Label: "NEGATIVE", Confidence: 0.8},
			"love it":    {Label: "POSITIVE", Confidence: 0.95},
			"happy call": {Label: "POSITIVE", Confidence: 0.9},
			"meh":        {Label: "NEGATIVE", Confidence: 0.5},
			"so-so":      {Label: "POSITIVE", Confidence: 0.5},
		}}
		engine := severity.NewEngine(severity.NewSentimentScorer(classifier))
		ctx := context.Background()

		Convey("When scoring scenario A (rating 1, strongly negative texts)", func() {
			a, err := engine.Compute(ctx, 1, "awful", "rude agent")

			Convey("Then the score is 0.945 and the label negative", func() {
				So(err, ShouldBeNil)
				So(a.RatingSeverity, ShouldEqual, 1.0)
				So(a.FeedbackScore, ShouldEqual, 0.9)
				So(a.SummaryScore, ShouldEqual, 0.8)
				So(a.Score, ShouldAlmostEqual, 0.945, 1e-9)
				So(a.Sentiment, ShouldEqual, model.SentimentNegative)
			})
		})

		Convey("When scoring scenario B (rating 5, strongly positive texts)", func() {
			b, err := engine.Compute(ctx, 5, "love it", "happy call")

			Convey("Then the score is 0.0275 and the label positive", func() {
				So(err, ShouldBeNil)
				So(b.Score, ShouldAlmostEqual, 0.0275, 1e-9)
				So(b.Sentiment, ShouldEqual, model.SentimentPositive)
			})
		})

		Convey("When scoring scenario C (rating 3, undecided texts)", func() {
			c, err := engine.Compute(ctx, 3, "meh", "so-so")

			Convey("Then the score is 0.5 and the label neutral", func() {
				So(err, ShouldBeNil)
				So(c.Score, ShouldAlmostEqual, 0.5, 1e-9)
				So(c.Sentiment, ShouldEqual, model.SentimentNeutral)
			})
		})

		Convey("When the rating is out of range", func() {
			_, err := engine.Compute(ctx, 0, "awful", "rude agent")

			Convey("Then ErrInvalidRating is returned without calling the classifier", func() {
				So(errors.Is(err, severity.ErrInvalidRating), ShouldBeTrue)
				So(classifier.calls, ShouldEqual, 0)
			})
		})

		Convey("When the classifier fails", func() {
			classifier.err = errors.New("model unavailable")
			_, err := engine.Compute(ctx, 2, "awful", "rude agent")

			Convey("Then the failure is surfaced as ErrClassifier", func() {
				So(errors.Is(err, severity.ErrClassifier), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "model unavailable")
			})
		})
	})
}
