// Package slack posts escalation alerts to a Slack incoming webhook.
package slack

import (
	"context"
	"errors"
	"net/http"
	"time"

	slackapi "github.com/slack-go/slack"

	"github.com/okian/triage/pkg/logger"
)

const defaultTimeout = 10 * time.Second

// Webhook posts messages to an incoming webhook URL.
type Webhook struct {
	url     string
	headers map[string]string
	client  *http.Client
	logger  logger.Logger
}

// Option configures a Webhook.
type Option func(*Webhook)

// WithTimeout sets the HTTP client timeout. Default: 10s. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(w *Webhook) { w.client.Timeout = d }
}

// WithHeaders sets custom HTTP headers sent with every POST.
func WithHeaders(h map[string]string) Option {
	return func(w *Webhook) { w.headers = h }
}

// WithLogger sets the logger used to report delivery failures.
func WithLogger(l logger.Logger) Option {
	return func(w *Webhook) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a webhook notifier targeting url.
func New(url string, opts ...Option) *Webhook {
	w := &Webhook{
		url:    url,
		client: &http.Client{Timeout: defaultTimeout},
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if len(w.headers) > 0 {
		w.client.Transport = &headerTransport{base: http.DefaultTransport, headers: w.headers}
	}
	return w
}

// Timeout returns the HTTP timeout applied to every post.
func (w *Webhook) Timeout() time.Duration { return w.client.Timeout }

// Post sends message as {"text": message}. It reports whether the webhook
// answered with a 2xx status; failures are logged, never returned.
func (w *Webhook) Post(ctx context.Context, message string) bool {
	err := slackapi.PostWebhookCustomHTTPContext(ctx, w.url, w.client, &slackapi.WebhookMessage{Text: message})
	if err == nil {
		return true
	}

	var status slackapi.StatusCodeError
	if errors.As(err, &status) {
		if status.Code >= 200 && status.Code < 300 {
			return true
		}
		w.logger.Warn(ctx, "slack: webhook rejected message", logger.Int("status", status.Code))
		return false
	}
	var limited *slackapi.RateLimitedError
	if errors.As(err, &limited) {
		w.logger.Warn(ctx, "slack: rate limited", logger.Duration("retry_after", limited.RetryAfter))
		return false
	}
	w.logger.Warn(ctx, "slack: post failed", logger.Error(err))
	return false
}

// headerTransport adds fixed headers to every request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	for k, v := range t.headers {
		r.Header.Set(k, v)
	}
	return t.base.RoundTrip(r)
}

// LogOnly is a notifier that writes messages to the log instead of a channel.
type LogOnly struct {
	logger logger.Logger
}

// NewLogOnly creates a log-only notifier.
func NewLogOnly(l logger.Logger) *LogOnly {
	if l == nil {
		l = logger.Nop()
	}
	return &LogOnly{logger: l}
}

// Post logs message and reports success.
func (n *LogOnly) Post(ctx context.Context, message string) bool {
	n.logger.Info(ctx, "notification", logger.String("text", message))
	return true
}
