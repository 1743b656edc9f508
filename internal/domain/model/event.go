// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Sentiment is the tri-state label derived from a severity score.
type Sentiment string

// Sentiment labels. The string values are persisted in the feedback log.
const (
	SentimentNegative Sentiment = "NEGATIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
	SentimentPositive Sentiment = "POSITIVE"
)

// Sentiments lists every label in display order.
var Sentiments = []Sentiment{SentimentNegative, SentimentNeutral, SentimentPositive}

// ParseSentiment converts a persisted or user-supplied label into a Sentiment.
func ParseSentiment(s string) (Sentiment, error) {
	switch Sentiment(strings.ToUpper(strings.TrimSpace(s))) {
	case SentimentNegative:
		return SentimentNegative, nil
	case SentimentNeutral:
		return SentimentNeutral, nil
	case SentimentPositive:
		return SentimentPositive, nil
	}
	return "", fmt.Errorf("unknown sentiment %q", s)
}

// Submission is one raw rating/feedback/summary triple as entered by a user.
type Submission struct {
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback"`
	Summary  string `json:"summary"`
}

// CombinedText returns the deterministic concatenation used for topic
// classification and ticket descriptions.
func (s Submission) CombinedText() string {
	return CombineText(s.Rating, s.Feedback, s.Summary)
}

// FeedbackEvent is one fully processed feedback interaction. It is built once,
// appended to the feedback log and never mutated afterwards.
type FeedbackEvent struct {
	Timestamp          time.Time `json:"timestamp"`
	Rating             int       `json:"rating"`
	Feedback           string    `json:"feedback"`
	Summary            string    `json:"summary"`
	CombinedText       string    `json:"combined_text"`
	SeverityScore      float64   `json:"severity_score"`
	Sentiment          Sentiment `json:"sentiment"`
	Category           string    `json:"category"`
	CategoryConfidence float64   `json:"category_confidence"`
	TicketID           string    `json:"ticket_id,omitempty"` // empty when no ticket was created
}

// HasTicket reports whether an external ticket was opened for the event.
func (e FeedbackEvent) HasTicket() bool { return e.TicketID != "" }

// Date returns the calendar day of the event in its own location.
func (e FeedbackEvent) Date() time.Time {
	y, m, d := e.Timestamp.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, e.Timestamp.Location())
}

// Polarity is the raw output of a sentiment classifier.
type Polarity struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"score"`
}

// IsNegative reports whether the classifier labelled the text as negative.
func (p Polarity) IsNegative() bool {
	return strings.EqualFold(p.Label, string(SentimentNegative))
}

// TopicRanking is the output of a zero-shot topic classifier: labels sorted by
// descending relevance with parallel scores.
type TopicRanking struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// Top returns the highest ranked label and its score.
func (r TopicRanking) Top() (string, float64, bool) {
	if len(r.Labels) == 0 || len(r.Scores) == 0 {
		return "", 0, false
	}
	return r.Labels[0], r.Scores[0], true
}

const (
	ratingPrefix   = "Customer Rating: "
	feedbackPrefix = "Customer Feedback: "
	summaryPrefix  = "Communication Summary: "
)

// CombineText joins rating, feedback and summary into the combined input text.
func CombineText(rating int, feedback, summary string) string {
	return fmt.Sprintf("%s%d/5\n%s%s\n%s%s", ratingPrefix, rating, feedbackPrefix, feedback, summaryPrefix, summary)
}

// ParseCombinedText recovers the submission from a combined input text. It also
// accepts the indented multi-line layout older log files contain. Values are
// whitespace-trimmed.
func ParseCombinedText(s string) (Submission, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(s), ratingPrefix)
	if !ok {
		return Submission{}, false
	}
	// Values may be empty, so the labels are matched without their trailing
	// space, which TrimSpace removes at the end of the text.
	feedbackLabel := strings.TrimSpace(feedbackPrefix)
	summaryLabel := strings.TrimSpace(summaryPrefix)
	i := strings.Index(rest, feedbackLabel)
	if i < 0 {
		return Submission{}, false
	}
	num, _, _ := strings.Cut(strings.TrimSpace(rest[:i]), "/")
	rating, err := strconv.Atoi(num)
	if err != nil {
		return Submission{}, false
	}
	rest = rest[i+len(feedbackLabel):]
	j := labelAtLineStart(rest, summaryLabel)
	if j < 0 {
		return Submission{}, false
	}
	return Submission{
		Rating:   rating,
		Feedback: strings.TrimSpace(rest[:j]),
		Summary:  strings.TrimSpace(rest[j+len(summaryLabel):]),
	}, true
}

// labelAtLineStart returns the index of the first label in s that begins a
// line, allowing indentation, or -1.
func labelAtLineStart(s, label string) int {
	for off := 0; ; {
		k := strings.Index(s[off:], label)
		if k < 0 {
			return -1
		}
		k += off
		line := s[:k]
		if nl := strings.LastIndexByte(line, '\n'); nl >= 0 && strings.TrimLeft(line[nl+1:], " \t") == "" {
			return k
		}
		off = k + len(label)
	}
}
