package escalation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/triage/internal/domain/escalation"
	"github.com/okian/triage/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeTopics struct {
	ranking   model.TopicRanking
	err       error
	gotText   string
	gotLabels []string
}

func (f *fakeTopics) Classify(_ context.Context, text string, labels []string) (model.TopicRanking, error) {
	f.gotText = text
	f.gotLabels = labels
	return f.ranking, f.err
}

type fakeTracker struct {
	key    string
	err    error
	issues []escalation.Issue
}

func (f *fakeTracker) CreateIssue(_ context.Context, issue escalation.Issue) (string, error) {
	f.issues = append(f.issues, issue)
	return f.key, f.err
}

type fakeNotifier struct {
	ok       bool
	messages []string
}

func (f *fakeNotifier) Post(_ context.Context, message string) bool {
	f.messages = append(f.messages, message)
	return f.ok
}

func negativeEvent() model.FeedbackEvent {
	sub := model.Submission{Rating: 1, Feedback: "Checkout fails every time", Summary: "Customer angry about outage"}
	return model.FeedbackEvent{
		Timestamp:          time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC),
		Rating:             sub.Rating,
		Feedback:           sub.Feedback,
		Summary:            sub.Summary,
		CombinedText:       sub.CombinedText(),
		SeverityScore:      0.945,
		Sentiment:          model.SentimentNegative,
		Category:           "Database",
		CategoryConfidence: 0.8123,
	}
}

func TestDecide(t *testing.T) {
	Convey("Given a policy with the default categories", t, func() {
		topics := &fakeTopics{ranking: model.TopicRanking{
			Labels: []string{"database", "Application", "Infrastructure"},
			Scores: []float64{0.81, 0.12, 0.07},
		}}
		policy := escalation.New(escalation.Config{}, topics, &fakeTracker{}, &fakeNotifier{})
		ctx := context.Background()

		Convey("When deciding on a negative event", func() {
			ev := negativeEvent()
			d, err := policy.Decide(ctx, ev)

			Convey("Then it escalates with the top category in configured spelling", func() {
				So(err, ShouldBeNil)
				So(d.ShouldEscalate, ShouldBeTrue)
				So(d.Category, ShouldEqual, "Database")
				So(d.Confidence, ShouldEqual, 0.81)
			})

			Convey("Then the combined text is classified against every candidate", func() {
				So(topics.gotText, ShouldEqual, ev.CombinedText)
				So(topics.gotLabels, ShouldResemble, escalation.DefaultCategories)
			})
		})

		Convey("When deciding on non-negative events", func() {
			for _, s := range []model.Sentiment{model.SentimentNeutral, model.SentimentPositive} {
				ev := negativeEvent()
				ev.Sentiment = s
				d, err := policy.Decide(ctx, ev)

				So(err, ShouldBeNil)
				So(d.ShouldEscalate, ShouldBeFalse)
				So(d.Category, ShouldEqual, "Database")
			}
		})

		Convey("When the classifier fails", func() {
			topics.err = errors.New("timeout")
			_, err := policy.Decide(ctx, negativeEvent())

			Convey("Then ErrTopicClassifier is returned", func() {
				So(errors.Is(err, escalation.ErrTopicClassifier), ShouldBeTrue)
			})
		})

		Convey("When the classifier returns an empty ranking", func() {
			topics.ranking = model.TopicRanking{}
			_, err := policy.Decide(ctx, negativeEvent())

			Convey("Then ErrNoCategory is returned", func() {
				So(errors.Is(err, escalation.ErrNoCategory), ShouldBeTrue)
			})
		})

		Convey("When the classifier returns a label outside the candidate set", func() {
			topics.ranking = model.TopicRanking{Labels: []string{"Billing"}, Scores: []float64{0.9}}
			_, err := policy.Decide(ctx, negativeEvent())

			Convey("Then ErrNoCategory is returned", func() {
				So(errors.Is(err, escalation.ErrNoCategory), ShouldBeTrue)
			})
		})
	})
}

func TestEscalate(t *testing.T) {
	Convey("Given a policy with a working tracker", t, func() {
		tracker := &fakeTracker{key: "SCRUM-42"}
		notifier := &fakeNotifier{ok: true}
		policy := escalation.New(escalation.DefaultConfig(), &fakeTopics{}, tracker, notifier)
		ctx := context.Background()

		Convey("When escalating a negative event", func() {
			out, err := policy.Escalate(ctx, negativeEvent())

			Convey("Then a ticket is created and the notification references it", func() {
				So(err, ShouldBeNil)
				So(out.TicketID, ShouldEqual, "SCRUM-42")
				So(out.Notified, ShouldBeTrue)
				So(tracker.issues, ShouldHaveLength, 1)
				So(notifier.messages, ShouldHaveLength, 1)
				So(notifier.messages[0], ShouldContainSubstring, "*JIRA Ticket*: SCRUM-42")
				So(notifier.messages[0], ShouldContainSubstring, "*Rating*: 1/5")
				So(notifier.messages[0], ShouldContainSubstring, "*Severity*: 0.94")
			})
		})

		Convey("When the notifier fails after the ticket is created (scenario D)", func() {
			notifier.ok = false
			out, err := policy.Escalate(ctx, negativeEvent())

			Convey("Then the ticket is kept and no error propagates", func() {
				So(err, ShouldBeNil)
				So(out.TicketID, ShouldEqual, "SCRUM-42")
				So(out.Notified, ShouldBeFalse)
			})
		})

		Convey("When the tracker fails", func() {
			tracker.err = errors.New("401 unauthorized")
			out, err := policy.Escalate(ctx, negativeEvent())

			Convey("Then ErrTicketCreation is returned and nothing is posted", func() {
				So(errors.Is(err, escalation.ErrTicketCreation), ShouldBeTrue)
				So(out.TicketID, ShouldBeEmpty)
				So(notifier.messages, ShouldBeEmpty)
			})
		})

		Convey("When the tracker returns an empty key", func() {
			tracker.key = " "
			_, err := policy.Escalate(ctx, negativeEvent())

			Convey("Then it counts as a failed creation", func() {
				So(errors.Is(err, escalation.ErrTicketCreation), ShouldBeTrue)
				So(notifier.messages, ShouldBeEmpty)
			})
		})

		Convey("When escalating a neutral event", func() {
			ev := negativeEvent()
			ev.Sentiment = model.SentimentNeutral
			_, err := policy.Escalate(ctx, ev)

			Convey("Then it is refused", func() {
				So(errors.Is(err, escalation.ErrNotNegative), ShouldBeTrue)
				So(tracker.issues, ShouldBeEmpty)
			})
		})
	})
}

func TestBuildIssue(t *testing.T) {
	Convey("Given a negative event", t, func() {
		ev := negativeEvent()

		Convey("When building the tracker payload", func() {
			issue := escalation.BuildIssue(escalation.DefaultConfig(), ev)

			Convey("Then it matches the expected layout", func() {
				want := escalation.Issue{
					ProjectKey: "SCRUM",
					Summary:    "Database issue from rated feedback",
					Description: ev.CombinedText +
						"\nSentiment: NEGATIVE (Severity: 0.94)\nCategory: Database (0.81)",
					IssueType: "Task",
					Labels:    []string{"ai_feedback", "category_database"},
				}
				So(cmp.Diff(want, issue), ShouldBeEmpty)
			})
		})
	})

	Convey("Given multi-word categories", t, func() {
		So(escalation.CategoryLabel("Customer  Support"), ShouldEqual, "category_customer_support")
		So(escalation.CategoryLabel("Infrastructure"), ShouldEqual, "category_infrastructure")
	})
}
