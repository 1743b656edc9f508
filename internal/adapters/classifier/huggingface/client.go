// Package huggingface classifies text through the Hugging Face Inference API:
// binary sentiment for the severity engine and zero-shot topic ranking for
// escalation.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Defaults for the hosted inference endpoint.
const (
	DefaultBaseURL        = "https://api-inference.huggingface.co"
	DefaultSentimentModel = "distilbert/distilbert-base-uncased-finetuned-sst-2-english"
	DefaultTopicModel     = "facebook/bart-large-mnli"
	DefaultTimeout        = 30 * time.Second

	maxErrorBody = 512
)

// Client is an HTTP client for the inference API with Bearer auth.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures Client behavior.
type Option func(*Client)

// WithBaseURL overrides the inference endpoint, e.g. for a self-hosted server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithToken sets the API token sent as a Bearer credential.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout sets the HTTP client timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Timeout returns the HTTP timeout applied to every request.
func (c *Client) Timeout() time.Duration { return c.httpClient.Timeout }

// postJSON sends payload to the model endpoint and returns the raw body.
// Returns *APIError for non-2xx responses.
func (c *Client) postJSON(ctx context.Context, model string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("huggingface: marshal: %w", err)
	}

	url := c.baseURL + "/models/" + model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("huggingface: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("huggingface: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("huggingface: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := string(raw)
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Body: msg}
	}
	return raw, nil
}
