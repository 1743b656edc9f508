package intake_test

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/okian/triage/internal/domain/intake"
	"github.com/okian/triage/internal/domain/model"
	"github.com/okian/triage/internal/domain/severity"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSession(t *testing.T) {
	Convey("Given a new session", t, func() {
		s := intake.NewSession()

		Convey("Then it awaits a rating", func() {
			So(s.State(), ShouldEqual, intake.AwaitingRating)
			So(s.Prompt(), ShouldEqual, intake.RatingPrompt)
		})

		Convey("When a full submission is entered", func() {
			_, ready, err := s.Feed(" 2 ")
			So(err, ShouldBeNil)
			So(ready, ShouldBeFalse)
			So(s.State(), ShouldEqual, intake.AwaitingFeedback)

			_, ready, err = s.Feed("  slow checkout ")
			So(err, ShouldBeNil)
			So(ready, ShouldBeFalse)
			So(s.State(), ShouldEqual, intake.AwaitingSummary)

			sub, ready, err := s.Feed("agent apologised")

			Convey("Then the trimmed submission is emitted and the cycle restarts", func() {
				So(err, ShouldBeNil)
				So(ready, ShouldBeTrue)
				So(sub, ShouldResemble, model.Submission{Rating: 2, Feedback: "slow checkout", Summary: "agent apologised"})
				So(s.State(), ShouldEqual, intake.AwaitingRating)
			})
		})

		Convey("When the rating is invalid", func() {
			for _, in := range []string{"0", "6", "abc", "", "3.5"} {
				_, ready, err := s.Feed(in)
				So(errors.Is(err, severity.ErrInvalidRating), ShouldBeTrue)
				So(ready, ShouldBeFalse)
				So(s.State(), ShouldEqual, intake.AwaitingRating)
			}
		})

		Convey("When the sentinel is entered at any prompt", func() {
			for _, steps := range [][]string{{"EXIT"}, {"4", "Exit"}, {"4", "ok", "exit"}} {
				s := intake.NewSession()
				var ready bool
				var err error
				for _, line := range steps {
					_, ready, err = s.Feed(line)
				}
				So(err, ShouldBeNil)
				So(ready, ShouldBeFalse)
				So(s.State(), ShouldEqual, intake.Done)
				So(s.Prompt(), ShouldBeEmpty)

				_, _, err = s.Feed("5")
				So(errors.Is(err, intake.ErrSessionClosed), ShouldBeTrue)
			}
		})

		Convey("When a custom sentinel is configured", func() {
			s := intake.NewSession(intake.WithSentinel("quit"))
			_, _, err := s.Feed("exit")
			So(errors.Is(err, severity.ErrInvalidRating), ShouldBeTrue)
			_, _, err = s.Feed("QUIT")
			So(err, ShouldBeNil)
			So(s.State(), ShouldEqual, intake.Done)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given scripted input", t, func() {
		in := strings.NewReader("9\n1\ncrashes\nangry\n5\ngreat\nexit\n")
		var out bytes.Buffer
		var got []model.Submission
		handle := func(_ context.Context, sub model.Submission) error {
			got = append(got, sub)
			return nil
		}

		err := intake.Run(context.Background(), in, &out, handle)

		Convey("Then only complete submissions reach the handler", func() {
			So(err, ShouldBeNil)
			So(got, ShouldResemble, []model.Submission{{Rating: 1, Feedback: "crashes", Summary: "angry"}})
		})

		Convey("Then invalid ratings are reported", func() {
			So(out.String(), ShouldContainSubstring, intake.InvalidRating)
			So(strings.Count(out.String(), intake.RatingPrompt), ShouldEqual, 3)
		})
	})

	Convey("Given a handler that fails", t, func() {
		in := strings.NewReader("1\na\nb\n")
		var out bytes.Buffer
		err := intake.Run(context.Background(), in, &out, func(context.Context, model.Submission) error {
			return errors.New("classifier unavailable")
		})

		Convey("Then the error is shown and the loop ends at end of input", func() {
			So(err, ShouldBeNil)
			So(out.String(), ShouldContainSubstring, "Processing failed: classifier unavailable")
		})
	})

	Convey("Given feedback longer than the default scanner token", t, func() {
		long := strings.Repeat("the export page times out again ", 8*1024)
		in := strings.NewReader("2\n" + long + "\nescalated\nexit\n")
		var got []model.Submission
		err := intake.Run(context.Background(), in, &bytes.Buffer{}, func(_ context.Context, sub model.Submission) error {
			got = append(got, sub)
			return nil
		})

		Convey("Then the whole line is accepted", func() {
			So(len(long), ShouldBeGreaterThan, 64*1024)
			So(err, ShouldBeNil)
			So(got, ShouldHaveLength, 1)
			So(got[0].Feedback, ShouldEqual, strings.TrimSpace(long))
			So(got[0].Summary, ShouldEqual, "escalated")
		})
	})

	Convey("Given a line over the intake limit", t, func() {
		in := strings.NewReader("2\n" + strings.Repeat("x", intake.MaxLineBytes+1) + "\n")
		err := intake.Run(context.Background(), in, &bytes.Buffer{}, func(context.Context, model.Submission) error { return nil })
		So(errors.Is(err, bufio.ErrTooLong), ShouldBeTrue)
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := intake.Run(ctx, strings.NewReader("1\n"), &bytes.Buffer{}, func(context.Context, model.Submission) error { return nil })
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})
}
