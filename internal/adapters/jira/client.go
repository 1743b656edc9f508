// Package jira creates issues in Jira through the REST API v2, plus a dry-run
// tracker used when no server is configured.
package jira

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	gojira "github.com/andygrunwald/go-jira"
	"github.com/google/uuid"

	"github.com/okian/triage/internal/domain/escalation"
	"github.com/okian/triage/pkg/logger"
)

const (
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 512
)

// Client is a Jira REST client authenticating with an email and API token.
type Client struct {
	api        *gojira.Client
	httpClient *http.Client
}

// Option configures Client behavior.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates a Client for serverURL using basic auth.
func New(serverURL, email, token string, opts ...Option) (*Client, error) {
	serverURL = strings.TrimRight(strings.TrimSpace(serverURL), "/")
	if serverURL == "" {
		return nil, ErrNoServer
	}
	auth := &gojira.BasicAuthTransport{Username: email, Password: token}
	c := &Client{httpClient: auth.Client()}
	c.httpClient.Timeout = defaultTimeout
	for _, opt := range opts {
		opt(c)
	}

	api, err := gojira.NewClient(c.httpClient, serverURL)
	if err != nil {
		return nil, fmt.Errorf("jira: %w", err)
	}
	c.api = api
	return c, nil
}

// Timeout returns the HTTP timeout applied to every request.
func (c *Client) Timeout() time.Duration { return c.httpClient.Timeout }

// CreateIssue submits issue and returns the created issue key.
func (c *Client) CreateIssue(ctx context.Context, issue escalation.Issue) (string, error) {
	created, resp, err := c.api.Issue.CreateWithContext(ctx, &gojira.Issue{Fields: &gojira.IssueFields{
		Project:     gojira.Project{Key: issue.ProjectKey},
		Summary:     issue.Summary,
		Description: issue.Description,
		Type:        gojira.IssueType{Name: issue.IssueType},
		Labels:      issue.Labels,
	}})
	if err != nil {
		if resp != nil && resp.Response != nil && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
			return "", apiError(resp.Response)
		}
		return "", fmt.Errorf("jira: %w", err)
	}
	if created == nil || created.Key == "" {
		return "", ErrMissingKey
	}
	return created.Key, nil
}

// apiError captures the status and the start of the body of a rejected
// request.
func apiError(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
}

// DryRun is a tracker that creates no remote issue. It logs the payload and
// returns a locally generated key so the rest of the pipeline runs unchanged.
type DryRun struct {
	prefix string
	logger logger.Logger
}

// NewDryRun creates a dry-run tracker issuing keys of the form PREFIX-xxxxxxxx.
func NewDryRun(prefix string, l logger.Logger) *DryRun {
	if prefix == "" {
		prefix = "LOCAL"
	}
	if l == nil {
		l = logger.Nop()
	}
	return &DryRun{prefix: prefix, logger: l}
}

// CreateIssue returns a fresh local key.
func (d *DryRun) CreateIssue(ctx context.Context, issue escalation.Issue) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := d.prefix + "-" + uuid.NewString()[:8]
	d.logger.Info(ctx, "dry-run issue",
		logger.String("key", key),
		logger.String("summary", issue.Summary),
		logger.Any("labels", issue.Labels),
	)
	return key, nil
}
