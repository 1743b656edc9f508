package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/triage/internal/domain/model"
)

// Submission outcomes.
const (
	outcomeAccepted = "accepted"
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"
)

// httpClient talks to the triage HTTP API.
type httpClient struct {
	client  *http.Client
	baseURL string
}

func newHTTPClient(baseURL string, timeout time.Duration) *httpClient {
	return &httpClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// submitResponse is the subset of the POST /api/feedback answer we count.
type submitResponse struct {
	Event struct {
		Sentiment string `json:"sentiment"`
		TicketID  string `json:"ticket_id"`
	} `json:"event"`
	Escalated bool `json:"escalated"`
}

// overview is the subset of GET /api/overview used for verification.
type overview struct {
	Total          int `json:"total"`
	TicketsCreated int `json:"tickets_created"`
}

func (c *httpClient) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// health checks GET /healthz.
func (c *httpClient) health(ctx context.Context) error {
	resp, err := c.get(ctx, "/healthz")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

// overview fetches the unfiltered KPIs.
func (c *httpClient) overview(ctx context.Context) (overview, error) {
	var out overview
	resp, err := c.get(ctx, "/api/overview")
	if err != nil {
		return out, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return out, fmt.Errorf("overview returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("decode overview: %w", err)
	}
	return out, nil
}

// submit posts one submission and classifies the answer.
func (c *httpClient) submit(ctx context.Context, sub model.Submission) (string, submitResponse, error) {
	var out submitResponse
	body, err := json.Marshal(sub)
	if err != nil {
		return outcomeFailed, out, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/feedback", bytes.NewReader(body))
	if err != nil {
		return outcomeFailed, out, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return outcomeFailed, out, fmt.Errorf("%w: %w", ErrSubmit, err)
	}
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return outcomeFailed, out, fmt.Errorf("%w: %w", ErrSubmit, err)
	}

	switch {
	case resp.StatusCode == http.StatusCreated:
		// An undecodable body still means the event was logged.
		_ = json.Unmarshal(raw, &out)
		return outcomeAccepted, out, nil
	case resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError:
		return outcomeRejected, out, fmt.Errorf("%w: status %d: %s", ErrSubmit, resp.StatusCode, bytes.TrimSpace(raw))
	default:
		return outcomeFailed, out, fmt.Errorf("%w: status %d: %s", ErrSubmit, resp.StatusCode, bytes.TrimSpace(raw))
	}
}
