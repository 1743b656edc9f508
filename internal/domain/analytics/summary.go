package analytics

import (
	"sort"

	"github.com/okian/triage/internal/domain/model"
)

// Overview holds the headline figures of a view.
type Overview struct {
	Total          int     `json:"total"`
	Negative       int     `json:"negative"`
	NegativePct    float64 `json:"negative_pct"`
	AvgSeverity    float64 `json:"avg_severity"`
	TicketsCreated int     `json:"tickets_created"`
}

// Summarize computes the overview. An empty view yields zero percentages.
func Summarize(events []model.FeedbackEvent) Overview {
	o := Overview{Total: len(events)}
	if o.Total == 0 {
		return o
	}
	var sum float64
	for _, ev := range events {
		sum += ev.SeverityScore
		if ev.Sentiment == model.SentimentNegative {
			o.Negative++
		}
		if ev.HasTicket() {
			o.TicketsCreated++
		}
	}
	o.NegativePct = float64(o.Negative) / float64(o.Total) * 100
	o.AvgSeverity = sum / float64(o.Total)
	return o
}

// CountPoint is a count for one key on one day.
type CountPoint struct {
	Date  string `json:"date"`
	Key   string `json:"key,omitempty"`
	Count int    `json:"count"`
}

// ValuePoint is an aggregated value for one day.
type ValuePoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Trends bundles every per-day series of a view.
type Trends struct {
	Sentiment []CountPoint `json:"sentiment"`
	Category  []CountPoint `json:"category"`
	Severity  []ValuePoint `json:"severity"`
	Tickets   []CountPoint `json:"tickets"`
}

// BuildTrends computes all trend series.
func BuildTrends(events []model.FeedbackEvent) Trends {
	return Trends{
		Sentiment: SentimentTrend(events),
		Category:  CategoryTrend(events),
		Severity:  SeverityTrend(events),
		Tickets:   TicketTrend(events),
	}
}

// SentimentTrend counts records per day and sentiment.
func SentimentTrend(events []model.FeedbackEvent) []CountPoint {
	return countBy(events, func(ev model.FeedbackEvent) (string, bool) {
		return string(ev.Sentiment), true
	})
}

// CategoryTrend counts records per day and category.
func CategoryTrend(events []model.FeedbackEvent) []CountPoint {
	return countBy(events, func(ev model.FeedbackEvent) (string, bool) {
		return ev.Category, true
	})
}

// TicketTrend counts tickets created per day. Days without tickets are omitted.
func TicketTrend(events []model.FeedbackEvent) []CountPoint {
	return countBy(events, func(ev model.FeedbackEvent) (string, bool) {
		return "", ev.HasTicket()
	})
}

// SeverityTrend is the mean severity per day.
func SeverityTrend(events []model.FeedbackEvent) []ValuePoint {
	type acc struct {
		sum float64
		n   int
	}
	days := map[string]*acc{}
	for _, ev := range events {
		day := dayKey(ev.Timestamp)
		a, ok := days[day]
		if !ok {
			a = &acc{}
			days[day] = a
		}
		a.sum += ev.SeverityScore
		a.n++
	}
	out := make([]ValuePoint, 0, len(days))
	for day, a := range days {
		out = append(out, ValuePoint{Date: day, Value: a.sum / float64(a.n)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// countBy groups records by day and the key returned by keyFn. Records for
// which keyFn returns false are skipped. Points are sorted by day then key.
func countBy(events []model.FeedbackEvent, keyFn func(model.FeedbackEvent) (string, bool)) []CountPoint {
	type group struct{ date, key string }
	counts := map[group]int{}
	for _, ev := range events {
		key, ok := keyFn(ev)
		if !ok {
			continue
		}
		counts[group{dayKey(ev.Timestamp), key}]++
	}
	out := make([]CountPoint, 0, len(counts))
	for g, n := range counts {
		out = append(out, CountPoint{Date: g.date, Key: g.key, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// CategoryStat aggregates one category.
type CategoryStat struct {
	Category    string  `json:"category"`
	Count       int     `json:"count"`
	Negative    int     `json:"negative"`
	Tickets     int     `json:"tickets"`
	AvgSeverity float64 `json:"avg_severity"`
}

// CategoryBreakdown aggregates records per category, largest first and ties
// by name.
func CategoryBreakdown(events []model.FeedbackEvent) []CategoryStat {
	stats := map[string]*CategoryStat{}
	sums := map[string]float64{}
	for _, ev := range events {
		s, ok := stats[ev.Category]
		if !ok {
			s = &CategoryStat{Category: ev.Category}
			stats[ev.Category] = s
		}
		s.Count++
		sums[ev.Category] += ev.SeverityScore
		if ev.Sentiment == model.SentimentNegative {
			s.Negative++
		}
		if ev.HasTicket() {
			s.Tickets++
		}
	}
	out := make([]CategoryStat, 0, len(stats))
	for name, s := range stats {
		s.AvgSeverity = sums[name] / float64(s.Count)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}
