// Package intake runs the interactive prompt loop that collects one
// submission at a time: rating, then feedback, then summary.
package intake

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/okian/triage/internal/domain/model"
	"github.com/okian/triage/internal/domain/severity"
)

// DefaultSentinel ends a session when typed at any prompt.
const DefaultSentinel = "exit"

// MaxLineBytes bounds a single input line, pasted transcripts included.
const MaxLineBytes = 1 << 20

// State is the position of a session in the prompt sequence.
type State int

// Session states.
const (
	AwaitingRating State = iota
	AwaitingFeedback
	AwaitingSummary
	Done
)

func (s State) String() string {
	switch s {
	case AwaitingRating:
		return "awaiting_rating"
	case AwaitingFeedback:
		return "awaiting_feedback"
	case AwaitingSummary:
		return "awaiting_summary"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Prompt texts.
const (
	RatingPrompt   = "Enter customer rating (1-5): "
	FeedbackPrompt = "Enter customer feedback: "
	SummaryPrompt  = "Enter communication summary: "
	InvalidRating  = "Invalid rating. Please enter a number between 1 and 5."
)

// Session is the prompt state machine. It is not safe for concurrent use.
type Session struct {
	state    State
	sentinel string
	draft    model.Submission
}

// Option configures a Session.
type Option func(*Session)

// WithSentinel sets the word that ends the session. Matching ignores case.
func WithSentinel(word string) Option {
	return func(s *Session) {
		if w := strings.TrimSpace(word); w != "" {
			s.sentinel = w
		}
	}
}

// NewSession creates a session awaiting a rating.
func NewSession(opts ...Option) *Session {
	s := &Session{state: AwaitingRating, sentinel: DefaultSentinel}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// Prompt returns the text to show for the current state, or "" once done.
func (s *Session) Prompt() string {
	switch s.state {
	case AwaitingRating:
		return RatingPrompt
	case AwaitingFeedback:
		return FeedbackPrompt
	case AwaitingSummary:
		return SummaryPrompt
	default:
		return ""
	}
}

// Feed consumes one line of input. It returns ready=true with the completed
// submission after the summary line. The sentinel moves the session to Done
// and discards any partial submission. An invalid rating keeps the session
// awaiting a rating and returns an error wrapping severity.ErrInvalidRating.
func (s *Session) Feed(line string) (sub model.Submission, ready bool, err error) {
	if s.state == Done {
		return model.Submission{}, false, ErrSessionClosed
	}

	line = strings.TrimSpace(line)
	if strings.EqualFold(line, s.sentinel) {
		s.state = Done
		s.draft = model.Submission{}
		return model.Submission{}, false, nil
	}

	switch s.state {
	case AwaitingRating:
		rating, err := severity.ParseRating(line)
		if err != nil {
			return model.Submission{}, false, err
		}
		s.draft = model.Submission{Rating: rating}
		s.state = AwaitingFeedback
	case AwaitingFeedback:
		s.draft.Feedback = line
		s.state = AwaitingSummary
	case AwaitingSummary:
		s.draft.Summary = line
		sub = s.draft
		s.draft = model.Submission{}
		s.state = AwaitingRating
		return sub, true, nil
	}
	return model.Submission{}, false, nil
}

// Handler processes one completed submission.
type Handler func(ctx context.Context, sub model.Submission) error

// Run drives a session over r, writing prompts to w and passing every
// completed submission to handle. Handler errors are reported on w and the
// loop continues with the next submission. Run returns nil when the sentinel
// is entered or r is exhausted.
func Run(ctx context.Context, r io.Reader, w io.Writer, handle Handler, opts ...Option) error {
	s := NewSession(opts...)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)

	fmt.Fprintf(w, "Real-time feedback input mode (type '%s' to stop)\n\n", s.sentinel)
	for s.State() != Done {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(w, s.Prompt())
		if !sc.Scan() {
			fmt.Fprintln(w)
			return sc.Err()
		}

		sub, ready, err := s.Feed(sc.Text())
		if errors.Is(err, severity.ErrInvalidRating) {
			fmt.Fprintln(w, InvalidRating)
			continue
		}
		if err != nil {
			return err
		}
		if !ready {
			continue
		}
		if err := handle(ctx, sub); err != nil {
			fmt.Fprintf(w, "Processing failed: %v\n\n", err)
		}
	}
	return nil
}
