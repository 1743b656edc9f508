// Package lexicon is an offline classifier that scores text against keyword
// lists. It stands in for the hosted models in development, tests and air
// gapped deployments.
package lexicon

import (
	"context"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/okian/triage/internal/domain/model"
)

// Default word lists. Matching is done on lower-cased word tokens.
var (
	DefaultNegative = []string{ //nolint:gochecknoglobals // read-only word list
		"angry", "awful", "bad", "broken", "bug", "crash", "crashes", "crashing", "delay", "down",
		"error", "errors", "fail", "failed", "fails", "failing", "frustrated", "hate", "horrible",
		"issue", "lost", "outage", "poor", "problem", "refund", "slow", "terrible", "timeout",
		"unacceptable", "unhappy", "unusable", "worst", "wrong",
	}
	DefaultPositive = []string{ //nolint:gochecknoglobals // read-only word list
		"amazing", "awesome", "excellent", "fast", "fixed", "good", "great", "happy", "helpful",
		"love", "nice", "perfect", "pleased", "quick", "resolved", "satisfied", "smooth", "thanks",
		"thank", "works",
	}
	DefaultTopics = map[string][]string{ //nolint:gochecknoglobals // read-only keyword table
		"application": {"app", "application", "button", "checkout", "crash", "feature", "login", "page", "screen", "ui", "website"},
		"database":    {"data", "database", "db", "query", "record", "records", "sql", "table", "missing", "corrupt"},
		"infrastructure": {
			"cloud", "deploy", "disk", "dns", "down", "latency", "network", "outage", "server", "servers", "slow", "timeout",
		},
	}
)

// Classifier implements both the sentiment and the zero-shot topic contract.
type Classifier struct {
	negative map[string]struct{}
	positive map[string]struct{}
	topics   map[string]map[string]struct{}
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithWords replaces the sentiment word lists.
func WithWords(negative, positive []string) Option {
	return func(c *Classifier) {
		c.negative = toSet(negative)
		c.positive = toSet(positive)
	}
}

// WithTopicKeywords adds or replaces the keywords for a topic label.
func WithTopicKeywords(label string, keywords []string) Option {
	return func(c *Classifier) {
		c.topics[strings.ToLower(label)] = toSet(keywords)
	}
}

// New creates a Classifier with the default word lists.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		negative: toSet(DefaultNegative),
		positive: toSet(DefaultPositive),
		topics:   make(map[string]map[string]struct{}, len(DefaultTopics)),
	}
	for label, words := range DefaultTopics {
		c.topics[label] = toSet(words)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify labels text POSITIVE or NEGATIVE. Confidence grows with the
// margin between negative and positive hits; text with no hits, blank text
// included, returns POSITIVE at 0.5.
func (c *Classifier) Classify(ctx context.Context, text string) (model.Polarity, error) {
	if err := ctx.Err(); err != nil {
		return model.Polarity{}, err
	}

	var neg, pos int
	for _, tok := range tokenize(text) {
		if _, ok := c.negative[tok]; ok {
			neg++
		}
		if _, ok := c.positive[tok]; ok {
			pos++
		}
	}
	if neg == pos {
		return model.Polarity{Label: string(model.SentimentPositive), Confidence: 0.5}, nil
	}

	label := model.SentimentPositive
	if neg > pos {
		label = model.SentimentNegative
	}
	margin := math.Abs(float64(neg - pos))
	confidence := 0.5 + 0.5*(1-math.Exp(-margin))
	return model.Polarity{Label: string(label), Confidence: confidence}, nil
}

// Rank orders labels by keyword hits. Scores are hit shares with add-one
// smoothing so they sum to 1; ties keep the candidate order.
func (c *Classifier) Rank(ctx context.Context, text string, labels []string) (model.TopicRanking, error) {
	if err := ctx.Err(); err != nil {
		return model.TopicRanking{}, err
	}
	if len(labels) == 0 {
		return model.TopicRanking{}, nil
	}

	tokens := tokenize(text)
	type hit struct {
		label string
		score float64
	}
	hits := make([]hit, len(labels))
	total := 0.0
	for i, label := range labels {
		n := 1.0
		keywords := c.topics[strings.ToLower(label)]
		for _, tok := range tokens {
			if _, ok := keywords[tok]; ok {
				n++
			}
		}
		hits[i] = hit{label: label, score: n}
		total += n
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	out := model.TopicRanking{
		Labels: make([]string, len(hits)),
		Scores: make([]float64, len(hits)),
	}
	for i, h := range hits {
		out.Labels[i] = h.label
		out.Scores[i] = h.score / total
	}
	return out, nil
}

// Topics adapts the classifier to the zero-shot topic contract, whose method
// shares the Classify name with the sentiment contract.
func (c *Classifier) Topics() TopicClassifier {
	return TopicClassifier{c: c}
}

// TopicClassifier is the topic view of a Classifier.
type TopicClassifier struct {
	c *Classifier
}

// Classify ranks labels by keyword hits.
func (t TopicClassifier) Classify(ctx context.Context, text string, labels []string) (model.TopicRanking, error) {
	return t.c.Rank(ctx, text, labels)
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return set
}
