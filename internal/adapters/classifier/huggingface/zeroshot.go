package huggingface

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okian/triage/internal/domain/model"
)

// TopicClassifier ranks candidate labels with a zero-shot NLI model.
type TopicClassifier struct {
	client *Client
	model  string
}

// NewTopicClassifier creates a zero-shot classifier. An empty model selects
// DefaultTopicModel.
func NewTopicClassifier(client *Client, model string) *TopicClassifier {
	if model == "" {
		model = DefaultTopicModel
	}
	return &TopicClassifier{client: client, model: model}
}

type zeroShotRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters zeroShotParameters `json:"parameters"`
}

type zeroShotParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
}

type zeroShotResponse struct {
	Sequence string    `json:"sequence"`
	Labels   []string  `json:"labels"`
	Scores   []float64 `json:"scores"`
}

// Classify ranks labels by relevance to text, best first. Blank text returns
// the labels in the given order with uniform scores.
func (t *TopicClassifier) Classify(ctx context.Context, text string, labels []string) (model.TopicRanking, error) {
	if len(labels) == 0 {
		return model.TopicRanking{}, nil
	}
	if strings.TrimSpace(text) == "" {
		return uniformRanking(labels), nil
	}

	raw, err := t.client.postJSON(ctx, t.model, zeroShotRequest{
		Inputs:     text,
		Parameters: zeroShotParameters{CandidateLabels: labels},
	})
	if err != nil {
		return model.TopicRanking{}, err
	}

	var resp zeroShotResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return model.TopicRanking{}, fmt.Errorf("%w: %w", ErrUnexpectedBody, err)
	}
	if len(resp.Labels) != len(resp.Scores) {
		return model.TopicRanking{}, ErrLabelMismatch
	}
	if len(resp.Labels) == 0 {
		return model.TopicRanking{}, ErrEmptyResponse
	}
	return model.TopicRanking{Labels: resp.Labels, Scores: resp.Scores}, nil
}

func uniformRanking(labels []string) model.TopicRanking {
	scores := make([]float64, len(labels))
	for i := range scores {
		scores[i] = 1 / float64(len(labels))
	}
	return model.TopicRanking{Labels: append([]string(nil), labels...), Scores: scores}
}
