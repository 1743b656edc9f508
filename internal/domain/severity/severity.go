// Package severity turns a numeric rating and two sentiment signals into a
// single severity score and a tri-state sentiment label.
package severity

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/okian/triage/internal/domain/model"
	"github.com/okian/triage/pkg/metrics"
)

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Signal weights. They sum to 1 so the combined score stays in [0,1].
const (
	RatingWeight   = 0.6
	FeedbackWeight = 0.25
	SummaryWeight  = 0.15
)

// Label thresholds. Both boundaries are closed.
const (
	NegativeThreshold = 0.75
	PositiveThreshold = 0.40
)

// TextScorer maps a text onto a "how negative" score in [0,1].
type TextScorer interface {
	Score(ctx context.Context, text string) (float64, error)
}

// SentimentClassifier labels text with a polarity and a confidence in [0,1].
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) (model.Polarity, error)
}

// SentimentScorer adapts a SentimentClassifier into a TextScorer.
type SentimentScorer struct {
	classifier SentimentClassifier
}

// NewSentimentScorer wraps classifier.
func NewSentimentScorer(classifier SentimentClassifier) *SentimentScorer {
	return &SentimentScorer{classifier: classifier}
}

// Score classifies text and normalizes the result onto the negativity axis.
func (s *SentimentScorer) Score(ctx context.Context, text string) (float64, error) {
	start := time.Now()
	p, err := s.classifier.Classify(ctx, text)
	metrics.RecordClassifierCall(metrics.ClassifierSentiment, float64(time.Since(start).Milliseconds()), err != nil)
	if err != nil {
		return 0, err
	}
	return Normalize(p), nil
}

// Normalize maps a polarity onto [0,1]: the confidence itself for negative
// labels, its complement otherwise.
func Normalize(p model.Polarity) float64 {
	c := clamp01(p.Confidence)
	if p.IsNegative() {
		return c
	}
	return 1 - c
}

// Assessment is the full breakdown of one severity computation.
type Assessment struct {
	RatingSeverity float64
	FeedbackScore  float64
	SummaryScore   float64
	Score          float64
	Sentiment      model.Sentiment
}

// Engine computes severity assessments.
type Engine struct {
	scorer TextScorer
}

// NewEngine creates an engine that scores texts with scorer.
func NewEngine(scorer TextScorer) *Engine {
	return &Engine{scorer: scorer}
}

// Compute scores one rating/feedback/summary triple. The rating is checked
// before any classifier call is made.
func (e *Engine) Compute(ctx context.Context, rating int, feedback, summary string) (Assessment, error) {
	if err := ValidateRating(rating); err != nil {
		return Assessment{}, err
	}

	feedbackScore, err := e.scorer.Score(ctx, feedback)
	if err != nil {
		return Assessment{}, fmt.Errorf("%w: feedback: %w", ErrClassifier, err)
	}
	summaryScore, err := e.scorer.Score(ctx, summary)
	if err != nil {
		return Assessment{}, fmt.Errorf("%w: summary: %w", ErrClassifier, err)
	}

	rs := RatingSeverity(rating)
	score := Combine(rs, feedbackScore, summaryScore)
	return Assessment{
		RatingSeverity: rs,
		FeedbackScore:  clamp01(feedbackScore),
		SummaryScore:   clamp01(summaryScore),
		Score:          score,
		Sentiment:      Label(score),
	}, nil
}

// RatingSeverity maps rating 1 to 1.0 and rating 5 to 0.0 linearly.
func RatingSeverity(rating int) float64 {
	return float64(MaxRating-rating) / float64(MaxRating-MinRating)
}

// Combine returns the weighted severity. Sub-scores are clamped into [0,1]
// first so the result is always in [0,1].
func Combine(ratingSeverity, feedbackScore, summaryScore float64) float64 {
	score := RatingWeight*clamp01(ratingSeverity) +
		FeedbackWeight*clamp01(feedbackScore) +
		SummaryWeight*clamp01(summaryScore)
	return clamp01(score)
}

// Label thresholds a severity score into a sentiment.
func Label(score float64) model.Sentiment {
	switch {
	case score >= NegativeThreshold:
		return model.SentimentNegative
	case score <= PositiveThreshold:
		return model.SentimentPositive
	default:
		return model.SentimentNeutral
	}
}

// ValidateRating reports ErrInvalidRating for ratings outside [1,5].
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return fmt.Errorf("%w: got %d", ErrInvalidRating, rating)
	}
	return nil
}

// ParseRating parses user input into a validated rating.
func ParseRating(s string) (int, error) {
	r, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRating, s)
	}
	if err := ValidateRating(r); err != nil {
		return 0, err
	}
	return r, nil
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
