// Package escalation decides which feedback events open a tracker issue and
// raise a chat notification, and builds both payloads.
package escalation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/okian/triage/internal/domain/model"
	"github.com/okian/triage/pkg/logger"
	"github.com/okian/triage/pkg/metrics"
)

// Defaults used by DefaultConfig.
const (
	DefaultProjectKey = "SCRUM"
	DefaultIssueType  = "Task"
	DefaultBaseLabel  = "ai_feedback"
)

// DefaultCategories is the candidate category set used when none is configured.
var DefaultCategories = []string{"Application", "Database", "Infrastructure"} //nolint:gochecknoglobals // read-only default

// Config is the policy configuration. It is injected explicitly so the
// policy never reads process state.
type Config struct {
	ProjectKey string
	IssueType  string
	Categories []string
	BaseLabel  string
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		ProjectKey: DefaultProjectKey,
		IssueType:  DefaultIssueType,
		Categories: append([]string(nil), DefaultCategories...),
		BaseLabel:  DefaultBaseLabel,
	}
}

// TopicClassifier ranks candidate labels by relevance to text.
type TopicClassifier interface {
	Classify(ctx context.Context, text string, labels []string) (model.TopicRanking, error)
}

// Issue is the payload submitted to the ticket tracker.
type Issue struct {
	ProjectKey  string   `json:"project_key"`
	Summary     string   `json:"summary"`
	Description string   `json:"description"`
	IssueType   string   `json:"issue_type"`
	Labels      []string `json:"labels"`
}

// Tracker creates issues in an external ticket tracker and returns their key.
type Tracker interface {
	CreateIssue(ctx context.Context, issue Issue) (string, error)
}

// Notifier posts a message to a chat channel. It reports delivery instead of
// returning an error because delivery failures never abort escalation.
type Notifier interface {
	Post(ctx context.Context, message string) bool
}

// Decision is the result of classifying an event.
type Decision struct {
	ShouldEscalate bool
	Category       string
	Confidence     float64
}

// Outcome describes what an escalation did.
type Outcome struct {
	TicketID string
	Notified bool
}

// Policy classifies events and escalates negative ones.
type Policy struct {
	cfg      Config
	topics   TopicClassifier
	tracker  Tracker
	notifier Notifier
	logger   logger.Logger
}

// Option applies a configuration option to the Policy.
type Option func(*Policy)

// WithLogger sets a custom logger for the policy.
func WithLogger(l logger.Logger) Option {
	return func(p *Policy) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a policy. Empty config fields fall back to DefaultConfig values.
func New(cfg Config, topics TopicClassifier, tracker Tracker, notifier Notifier, opts ...Option) *Policy {
	def := DefaultConfig()
	if cfg.ProjectKey == "" {
		cfg.ProjectKey = def.ProjectKey
	}
	if cfg.IssueType == "" {
		cfg.IssueType = def.IssueType
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = def.Categories
	}
	if cfg.BaseLabel == "" {
		cfg.BaseLabel = def.BaseLabel
	}

	p := &Policy{
		cfg:      cfg,
		topics:   topics,
		tracker:  tracker,
		notifier: notifier,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Categories returns the configured candidate categories.
func (p *Policy) Categories() []string {
	return append([]string(nil), p.cfg.Categories...)
}

// Decide classifies the event's combined text against the candidate
// categories. Every event is classified; only negative ones escalate.
func (p *Policy) Decide(ctx context.Context, ev model.FeedbackEvent) (Decision, error) {
	start := time.Now()
	ranking, err := p.topics.Classify(ctx, ev.CombinedText, p.cfg.Categories)
	metrics.RecordClassifierCall(metrics.ClassifierTopic, float64(time.Since(start).Milliseconds()), err != nil)
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %w", ErrTopicClassifier, err)
	}

	label, score, ok := ranking.Top()
	if !ok {
		return Decision{}, ErrNoCategory
	}
	category, ok := p.matchCategory(label)
	if !ok {
		return Decision{}, fmt.Errorf("%w: %q is not a candidate", ErrNoCategory, label)
	}

	return Decision{
		ShouldEscalate: ev.Sentiment == model.SentimentNegative,
		Category:       category,
		Confidence:     math.Max(0, math.Min(1, score)),
	}, nil
}

// matchCategory maps a classifier label onto the configured spelling.
func (p *Policy) matchCategory(label string) (string, bool) {
	for _, c := range p.cfg.Categories {
		if strings.EqualFold(strings.TrimSpace(label), c) {
			return c, true
		}
	}
	return "", false
}

// Escalate opens a ticket for a negative event and posts a notification
// referencing it. A failed notification is logged and reported through
// Outcome.Notified; it never undoes the ticket. A failed ticket skips the
// notification and returns ErrTicketCreation. Once the ticket exists the
// notification ignores cancellation of ctx.
func (p *Policy) Escalate(ctx context.Context, ev model.FeedbackEvent) (Outcome, error) {
	if ev.Sentiment != model.SentimentNegative {
		return Outcome{}, ErrNotNegative
	}

	issue := BuildIssue(p.cfg, ev)
	key, err := p.tracker.CreateIssue(ctx, issue)
	if err == nil && strings.TrimSpace(key) == "" {
		err = errors.New("tracker returned an empty issue key")
	}
	if err != nil {
		metrics.RecordTicketError()
		metrics.RecordErrorByComponent("tracker", "create_issue")
		p.logger.Error(ctx, "ticket creation failed",
			logger.String("category", ev.Category),
			logger.Float64("severity", ev.SeverityScore),
			logger.Error(err),
		)
		return Outcome{}, fmt.Errorf("%w: %w", ErrTicketCreation, err)
	}
	metrics.RecordTicketCreated(ev.Category)
	p.logger.Info(ctx, "ticket created", logger.String("ticket", key), logger.String("category", ev.Category))

	ev.TicketID = key
	ctx = context.WithoutCancel(ctx)
	notified := p.notifier.Post(ctx, BuildNotification(ev))
	metrics.RecordNotification(notified)
	if !notified {
		metrics.RecordErrorByComponent("notifier", "post")
		p.logger.Warn(ctx, "notification failed; ticket kept", logger.String("ticket", key))
	}

	return Outcome{TicketID: key, Notified: notified}, nil
}

// BuildIssue builds the tracker payload for a negative event.
func BuildIssue(cfg Config, ev model.FeedbackEvent) Issue {
	base := cfg.BaseLabel
	if base == "" {
		base = DefaultBaseLabel
	}
	return Issue{
		ProjectKey: cfg.ProjectKey,
		Summary:    fmt.Sprintf("%s issue from rated feedback", ev.Category),
		Description: fmt.Sprintf("%s\nSentiment: %s (Severity: %.2f)\nCategory: %s (%.2f)",
			ev.CombinedText, ev.Sentiment, ev.SeverityScore, ev.Category, ev.CategoryConfidence),
		IssueType: cfg.IssueType,
		Labels:    []string{base, CategoryLabel(ev.Category)},
	}
}

// CategoryLabel returns the tracker label tagging a category. Tracker labels
// cannot contain whitespace, so runs of it become underscores.
func CategoryLabel(category string) string {
	return "category_" + strings.Join(strings.Fields(strings.ToLower(category)), "_")
}

// BuildNotification renders the chat alert for an escalated event.
func BuildNotification(ev model.FeedbackEvent) string {
	var b strings.Builder
	b.WriteString(":bell: *Negative Feedback Alert!*\n")
	fmt.Fprintf(&b, "• *Rating*: %d/5\n", ev.Rating)
	fmt.Fprintf(&b, "• *Feedback*: %s\n", ev.Feedback)
	fmt.Fprintf(&b, "• *Category*: %s\n", ev.Category)
	fmt.Fprintf(&b, "• *Severity*: %.2f\n", ev.SeverityScore)
	fmt.Fprintf(&b, "• *JIRA Ticket*: %s", ev.TicketID)
	return b.String()
}
