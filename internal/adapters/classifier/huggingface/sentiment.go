package huggingface

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okian/triage/internal/domain/model"
)

// blankPolarity is returned for empty text without calling the API. It maps
// to a neutral 0.5 sub-score.
var blankPolarity = model.Polarity{Label: string(model.SentimentPositive), Confidence: 0.5} //nolint:gochecknoglobals // constant value

// SentimentClassifier labels text POSITIVE or NEGATIVE with a text
// classification model.
type SentimentClassifier struct {
	client *Client
	model  string
}

// NewSentimentClassifier creates a classifier for the given model. An empty
// model selects DefaultSentimentModel.
func NewSentimentClassifier(client *Client, model string) *SentimentClassifier {
	if model == "" {
		model = DefaultSentimentModel
	}
	return &SentimentClassifier{client: client, model: model}
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classify returns the highest scoring label for text.
func (s *SentimentClassifier) Classify(ctx context.Context, text string) (model.Polarity, error) {
	if strings.TrimSpace(text) == "" {
		return blankPolarity, nil
	}

	raw, err := s.client.postJSON(ctx, s.model, map[string]any{"inputs": text})
	if err != nil {
		return model.Polarity{}, err
	}

	scores, err := decodeLabelScores(raw)
	if err != nil {
		return model.Polarity{}, err
	}
	if len(scores) == 0 {
		return model.Polarity{}, ErrEmptyResponse
	}

	best := scores[0]
	for _, ls := range scores[1:] {
		if ls.Score > best.Score {
			best = ls
		}
	}
	return model.Polarity{Label: normalizeLabel(best.Label), Confidence: best.Score}, nil
}

// decodeLabelScores accepts both the nested [[...]] shape returned for a
// single input and the flat [...] shape.
func decodeLabelScores(raw []byte) ([]labelScore, error) {
	var nested [][]labelScore
	if err := json.Unmarshal(raw, &nested); err == nil {
		if len(nested) == 0 {
			return nil, ErrEmptyResponse
		}
		return nested[0], nil
	}
	var flat []labelScore
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnexpectedBody, err)
	}
	return flat, nil
}

// normalizeLabel maps model-specific label names onto POSITIVE/NEGATIVE.
func normalizeLabel(label string) string {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "NEGATIVE", "NEG", "LABEL_0":
		return string(model.SentimentNegative)
	case "POSITIVE", "POS", "LABEL_1":
		return string(model.SentimentPositive)
	default:
		return strings.ToUpper(strings.TrimSpace(label))
	}
}
