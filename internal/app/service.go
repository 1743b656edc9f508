// Package service wires the severity engine, the escalation policy and the
// feedback log into the single-event processing pipeline used by the CLI
// and the HTTP API.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	repository "github.com/okian/triage/internal/adapters/repository"
	"github.com/okian/triage/internal/domain/escalation"
	"github.com/okian/triage/internal/domain/model"
	"github.com/okian/triage/internal/domain/severity"
	"github.com/okian/triage/pkg/logger"
	"github.com/okian/triage/pkg/metrics"
)

// Result is the outcome of processing one submission.
type Result struct {
	Event      model.FeedbackEvent `json:"event"`
	Assessment severity.Assessment `json:"assessment"`
	// Escalated is true when a ticket was attempted.
	Escalated bool `json:"escalated"`
	// Notified reports chat delivery for escalated events.
	Notified bool `json:"notified"`
	// TicketError describes a failed ticket creation. The event is still logged.
	TicketError string `json:"ticket_error,omitempty"`
}

// Service processes submissions one at a time.
type Service struct {
	mu      sync.Mutex // serializes Process
	statsMu sync.RWMutex

	engine *severity.Engine
	policy *escalation.Policy
	store  repository.Store

	now    func() time.Time
	logger logger.Logger

	processed     int64
	rejected      int64
	escalated     int64
	tickets       int64
	ticketErrors  int64
	notifyErrors  int64
	lastProcessed time.Time
	startedAt     time.Time
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the time source used for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service.
func New(engine *severity.Engine, policy *escalation.Policy, store repository.Store, opts ...Option) *Service {
	s := &Service{
		engine: engine,
		policy: policy,
		store:  store,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startedAt = s.now()
	return s
}

// Process runs one submission through scoring, classification, escalation
// and logging. Classifier failures and invalid ratings abort the event and
// nothing is logged. A failed ticket creation does not abort: the event is
// logged without a ticket and Result.TicketError is set.
func (s *Service) Process(ctx context.Context, sub model.Submission) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()

	assessment, err := s.engine.Compute(ctx, sub.Rating, sub.Feedback, sub.Summary)
	if err != nil {
		s.reject(ctx, rejectReason(err), err)
		return Result{}, err
	}

	ev := model.FeedbackEvent{
		Timestamp:     s.now(),
		Rating:        sub.Rating,
		Feedback:      sub.Feedback,
		Summary:       sub.Summary,
		CombinedText:  sub.CombinedText(),
		SeverityScore: assessment.Score,
		Sentiment:     assessment.Sentiment,
	}

	decision, err := s.policy.Decide(ctx, ev)
	if err != nil {
		s.reject(ctx, rejectReason(err), err)
		return Result{}, err
	}
	ev.Category = decision.Category
	ev.CategoryConfidence = decision.Confidence

	res := Result{Assessment: assessment}
	if decision.ShouldEscalate {
		res.Escalated = true
		out, err := s.policy.Escalate(ctx, ev)
		if err != nil {
			res.TicketError = err.Error()
		} else {
			ev.TicketID = out.TicketID
			res.Notified = out.Notified
		}
	}

	// The outcome is decided and a ticket may already exist; the record is
	// written even if the caller has gone away.
	if err := s.store.Append(context.WithoutCancel(ctx), ev); err != nil {
		s.logger.Error(ctx, "append to feedback log failed", logger.Error(err))
		s.reject(ctx, "append", err)
		return Result{}, err
	}
	res.Event = ev

	latency := time.Since(start)
	metrics.RecordEventProcessed(string(ev.Sentiment), ev.SeverityScore, float64(latency.Milliseconds()))
	s.record(res)

	s.logger.Info(ctx, "feedback processed",
		logger.String("sentiment", string(ev.Sentiment)),
		logger.Float64("severity", ev.SeverityScore),
		logger.String("category", ev.Category),
		logger.String("ticket", ev.TicketID),
		logger.Duration("latency", latency),
	)
	return res, nil
}

// Records returns every logged event in append order.
func (s *Service) Records(ctx context.Context) ([]model.FeedbackEvent, error) {
	return s.store.ReadAll(ctx)
}

// Categories returns the candidate categories of the escalation policy.
func (s *Service) Categories() []string {
	return s.policy.Categories()
}

func (s *Service) reject(ctx context.Context, reason string, err error) {
	metrics.RecordEventRejected(reason)
	s.statsMu.Lock()
	s.rejected++
	s.statsMu.Unlock()
	s.logger.Warn(ctx, "feedback rejected", logger.String("reason", reason), logger.Error(err))
}

func (s *Service) record(res Result) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	s.processed++
	s.lastProcessed = res.Event.Timestamp
	if res.Escalated {
		s.escalated++
		if res.TicketError != "" {
			s.ticketErrors++
		} else {
			s.tickets++
			if !res.Notified {
				s.notifyErrors++
			}
		}
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, severity.ErrInvalidRating):
		return "invalid_rating"
	case errors.Is(err, severity.ErrClassifier):
		return "sentiment_classifier"
	case errors.Is(err, escalation.ErrTopicClassifier):
		return "topic_classifier"
	case errors.Is(err, escalation.ErrNoCategory):
		return "no_category"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "other"
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.statsMu.RLock()
	defer s.statsMu.RUnlock()

	stats := map[string]interface{}{
		"processed":            s.processed,
		"rejected":             s.rejected,
		"escalated":            s.escalated,
		"ticketsCreated":       s.tickets,
		"ticketFailures":       s.ticketErrors,
		"notificationFailures": s.notifyErrors,
		"categories":           s.policy.Categories(),
		"logExists":            s.store.Exists(),
		"uptimeSeconds":        int64(s.now().Sub(s.startedAt).Seconds()),
	}
	if !s.lastProcessed.IsZero() {
		stats["lastProcessed"] = s.lastProcessed.Format(time.RFC3339)
	}
	return stats
}
