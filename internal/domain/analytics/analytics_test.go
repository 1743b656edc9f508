package analytics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/okian/triage/internal/domain/analytics"
	"github.com/okian/triage/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func ev(day int, hour int, sentiment model.Sentiment, category string, severity float64, ticket string) model.FeedbackEvent {
	return model.FeedbackEvent{
		Timestamp:     time.Date(2025, 3, day, hour, 0, 0, 0, time.UTC),
		Sentiment:     sentiment,
		Category:      category,
		SeverityScore: severity,
		TicketID:      ticket,
	}
}

func fixture() []model.FeedbackEvent {
	return []model.FeedbackEvent{
		ev(1, 9, model.SentimentNegative, "Database", 0.9, "SCRUM-1"),
		ev(1, 23, model.SentimentPositive, "Application", 0.1, ""),
		ev(2, 0, model.SentimentNeutral, "Application", 0.5, ""),
		ev(2, 12, model.SentimentNegative, "Application", 0.8, "SCRUM-2"),
		ev(3, 8, model.SentimentNegative, "Infrastructure", 1.0, ""),
	}
}

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestFilter(t *testing.T) {
	Convey("Given a log spanning three days", t, func() {
		events := fixture()

		Convey("When the filter is empty", func() {
			got := analytics.Apply(events, analytics.Filter{})
			So(got, ShouldHaveLength, len(events))
		})

		Convey("When filtering on an inclusive day range", func() {
			f, err := analytics.ParseFilter("2025-03-01", "2025-03-02", nil, nil)
			So(err, ShouldBeNil)
			got := analytics.Apply(events, f)

			Convey("Then records on both boundary days are kept", func() {
				So(got, ShouldHaveLength, 4)
				So(got[0].Timestamp.Day(), ShouldEqual, 1)
				So(got[3].Timestamp.Day(), ShouldEqual, 2)
			})
		})

		Convey("When filtering on sentiment and category", func() {
			f, err := analytics.ParseFilter("", "", []string{"negative"}, []string{"application,database"})
			So(err, ShouldBeNil)
			got := analytics.Apply(events, f)
			So(got, ShouldHaveLength, 2)
			So(got[0].TicketID, ShouldEqual, "SCRUM-1")
			So(got[1].TicketID, ShouldEqual, "SCRUM-2")
		})

		Convey("When inputs are invalid", func() {
			for _, in := range [][2]string{{"03/01/2025", ""}, {"", "yesterday"}, {"2025-03-02", "2025-03-01"}} {
				_, err := analytics.ParseFilter(in[0], in[1], nil, nil)
				So(errors.Is(err, analytics.ErrInvalidFilter), ShouldBeTrue)
			}
			_, err := analytics.ParseFilter("", "", []string{"ANGRY"}, nil)
			So(errors.Is(err, analytics.ErrInvalidFilter), ShouldBeTrue)
		})

		Convey("When listing options", func() {
			opts := analytics.Options(events)
			want := analytics.FilterOptions{
				MinDate:    "2025-03-01",
				MaxDate:    "2025-03-03",
				Sentiments: []model.Sentiment{model.SentimentNegative, model.SentimentPositive, model.SentimentNeutral},
				Categories: []string{"Database", "Application", "Infrastructure"},
			}
			So(cmp.Diff(want, opts), ShouldBeEmpty)
		})
	})
}

func TestSummaries(t *testing.T) {
	Convey("Given a log spanning three days", t, func() {
		events := fixture()

		Convey("When summarizing", func() {
			o := analytics.Summarize(events)
			want := analytics.Overview{Total: 5, Negative: 3, NegativePct: 60, AvgSeverity: 0.66, TicketsCreated: 2}
			So(cmp.Diff(want, o, approx), ShouldBeEmpty)
		})

		Convey("When summarizing an empty view", func() {
			So(analytics.Summarize(nil), ShouldResemble, analytics.Overview{})
		})

		Convey("When building trends", func() {
			tr := analytics.BuildTrends(events)

			Convey("Then sentiment counts are grouped per day", func() {
				want := []analytics.CountPoint{
					{Date: "2025-03-01", Key: "NEGATIVE", Count: 1},
					{Date: "2025-03-01", Key: "POSITIVE", Count: 1},
					{Date: "2025-03-02", Key: "NEGATIVE", Count: 1},
					{Date: "2025-03-02", Key: "NEUTRAL", Count: 1},
					{Date: "2025-03-03", Key: "NEGATIVE", Count: 1},
				}
				So(cmp.Diff(want, tr.Sentiment), ShouldBeEmpty)
			})

			Convey("Then categories are grouped per day", func() {
				want := []analytics.CountPoint{
					{Date: "2025-03-01", Key: "Application", Count: 1},
					{Date: "2025-03-01", Key: "Database", Count: 1},
					{Date: "2025-03-02", Key: "Application", Count: 2},
					{Date: "2025-03-03", Key: "Infrastructure", Count: 1},
				}
				So(cmp.Diff(want, tr.Category), ShouldBeEmpty)
			})

			Convey("Then severity is averaged per day", func() {
				want := []analytics.ValuePoint{
					{Date: "2025-03-01", Value: 0.5},
					{Date: "2025-03-02", Value: 0.65},
					{Date: "2025-03-03", Value: 1.0},
				}
				So(cmp.Diff(want, tr.Severity, approx), ShouldBeEmpty)
			})

			Convey("Then tickets are counted on days that have them", func() {
				want := []analytics.CountPoint{
					{Date: "2025-03-01", Count: 1},
					{Date: "2025-03-02", Count: 1},
				}
				So(cmp.Diff(want, tr.Tickets), ShouldBeEmpty)
			})
		})

		Convey("When breaking down by category", func() {
			got := analytics.CategoryBreakdown(events)
			want := []analytics.CategoryStat{
				{Category: "Application", Count: 3, Negative: 1, Tickets: 1, AvgSeverity: 1.4 / 3},
				{Category: "Database", Count: 1, Negative: 1, Tickets: 1, AvgSeverity: 0.9},
				{Category: "Infrastructure", Count: 1, Negative: 1, Tickets: 0, AvgSeverity: 1.0},
			}
			So(cmp.Diff(want, got, approx), ShouldBeEmpty)
		})
	})
}
