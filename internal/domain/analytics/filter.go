// Package analytics derives the dashboard views from feedback log records:
// filtering, headline figures, per-day trends and per-category breakdowns.
package analytics

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/triage/internal/domain/model"
)

// DateLayout is the calendar-day format used in filters and trend points.
const DateLayout = "2006-01-02"

// Filter selects records by day range, sentiment and category. Zero dates are
// unbounded and an empty selection matches everything.
type Filter struct {
	From       time.Time         `json:"from,omitempty"`
	To         time.Time         `json:"to,omitempty"`
	Sentiments []model.Sentiment `json:"sentiments,omitempty"`
	Categories []string          `json:"categories,omitempty"`
}

// ParseFilter builds a Filter from textual inputs. Dates use DateLayout;
// sentiments and categories may be given repeated or comma separated.
func ParseFilter(from, to string, sentiments, categories []string) (Filter, error) {
	var f Filter
	var err error
	if f.From, err = parseDay(from); err != nil {
		return Filter{}, fmt.Errorf("%w: from: %w", ErrInvalidFilter, err)
	}
	if f.To, err = parseDay(to); err != nil {
		return Filter{}, fmt.Errorf("%w: to: %w", ErrInvalidFilter, err)
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return Filter{}, fmt.Errorf("%w: to %s is before from %s", ErrInvalidFilter, to, from)
	}
	for _, s := range splitValues(sentiments) {
		sentiment, err := model.ParseSentiment(s)
		if err != nil {
			return Filter{}, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
		}
		f.Sentiments = append(f.Sentiments, sentiment)
	}
	f.Categories = splitValues(categories)
	return f, nil
}

func parseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(DateLayout, s)
}

func splitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// Match reports whether ev passes the filter. Day bounds are inclusive and
// compared on the record's own calendar day.
func (f Filter) Match(ev model.FeedbackEvent) bool {
	day := dayKey(ev.Timestamp)
	if !f.From.IsZero() && day < dayKey(f.From) {
		return false
	}
	if !f.To.IsZero() && day > dayKey(f.To) {
		return false
	}
	if len(f.Sentiments) > 0 && !containsSentiment(f.Sentiments, ev.Sentiment) {
		return false
	}
	if len(f.Categories) > 0 && !containsFold(f.Categories, ev.Category) {
		return false
	}
	return true
}

// Apply returns the records matching f, preserving order.
func Apply(events []model.FeedbackEvent, f Filter) []model.FeedbackEvent {
	out := make([]model.FeedbackEvent, 0, len(events))
	for _, ev := range events {
		if f.Match(ev) {
			out = append(out, ev)
		}
	}
	return out
}

// FilterOptions describes the selectable values present in a log.
type FilterOptions struct {
	MinDate    string            `json:"min_date,omitempty"`
	MaxDate    string            `json:"max_date,omitempty"`
	Sentiments []model.Sentiment `json:"sentiments"`
	Categories []string          `json:"categories"`
}

// Options returns the day range and the distinct sentiments and categories in
// order of first appearance.
func Options(events []model.FeedbackEvent) FilterOptions {
	opts := FilterOptions{Sentiments: []model.Sentiment{}, Categories: []string{}}
	seenSentiment := map[model.Sentiment]bool{}
	seenCategory := map[string]bool{}
	for _, ev := range events {
		day := dayKey(ev.Timestamp)
		if opts.MinDate == "" || day < opts.MinDate {
			opts.MinDate = day
		}
		if day > opts.MaxDate {
			opts.MaxDate = day
		}
		if !seenSentiment[ev.Sentiment] {
			seenSentiment[ev.Sentiment] = true
			opts.Sentiments = append(opts.Sentiments, ev.Sentiment)
		}
		if !seenCategory[ev.Category] {
			seenCategory[ev.Category] = true
			opts.Categories = append(opts.Categories, ev.Category)
		}
	}
	return opts
}

func dayKey(t time.Time) string {
	return t.Format(DateLayout)
}

func containsSentiment(list []model.Sentiment, s model.Sentiment) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
