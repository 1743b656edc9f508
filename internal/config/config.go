// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Nested sections map to nested YAML keys and to "__" in env var names.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Classifier providers.
const (
	ProviderHuggingFace = "huggingface"
	ProviderLexicon     = "lexicon"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// LogPath is the feedback log CSV file.
	LogPath string `koanf:"log_path"`

	// Sentinel ends an interactive intake session.
	Sentinel string `koanf:"sentinel"`

	// Categories is the candidate set for topic classification.
	Categories []string `koanf:"categories"`

	// ShutdownTimeoutMS bounds graceful HTTP shutdown.
	ShutdownTimeoutMS int `koanf:"shutdown_timeout_ms"`

	Classifier ClassifierConfig `koanf:"classifier"`
	Jira       JiraConfig       `koanf:"jira"`
	Slack      SlackConfig      `koanf:"slack"`
}

// ClassifierConfig selects and configures the sentiment and topic models.
type ClassifierConfig struct {
	Provider       string `koanf:"provider"`
	BaseURL        string `koanf:"base_url"`
	Token          string `koanf:"token"`
	SentimentModel string `koanf:"sentiment_model"`
	TopicModel     string `koanf:"topic_model"`
	TimeoutMS      int    `koanf:"timeout_ms"`
}

// JiraConfig holds tracker credentials. An empty ServerURL selects the
// dry-run tracker.
type JiraConfig struct {
	ServerURL  string `koanf:"server_url"`
	Email      string `koanf:"email"`
	APIToken   string `koanf:"api_token"`
	ProjectKey string `koanf:"project_key"`
	IssueType  string `koanf:"issue_type"`
	TimeoutMS  int    `koanf:"timeout_ms"`
}

// SlackConfig holds the notifier webhook. An empty WebhookURL selects the
// log-only notifier.
type SlackConfig struct {
	WebhookURL string `koanf:"webhook_url"`
	TimeoutMS  int    `koanf:"timeout_ms"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		LogPath:           "feedback_log.csv",
		Sentinel:          "exit",
		Categories:        []string{"Application", "Database", "Infrastructure"},
		ShutdownTimeoutMS: 10_000,
		Classifier: ClassifierConfig{
			Provider:  ProviderLexicon,
			TimeoutMS: 30_000,
		},
		Jira: JiraConfig{
			ProjectKey: "SCRUM",
			IssueType:  "Task",
			TimeoutMS:  30_000,
		},
		Slack: SlackConfig{
			TimeoutMS: 10_000,
		},
	}
}

// Validate checks the configuration and normalizes list values. Categories
// given as one comma separated string are split.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.LogPath) == "" {
		return fmt.Errorf("%w: log_path must not be empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Sentinel) == "" {
		return fmt.Errorf("%w: sentinel must not be empty", ErrInvalidConfig)
	}

	var cats []string
	for _, v := range c.Categories {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				cats = append(cats, p)
			}
		}
	}
	if len(cats) == 0 {
		return fmt.Errorf("%w: categories must not be empty", ErrInvalidConfig)
	}
	c.Categories = cats

	switch strings.ToLower(c.Classifier.Provider) {
	case ProviderHuggingFace, ProviderLexicon:
		c.Classifier.Provider = strings.ToLower(c.Classifier.Provider)
	default:
		return fmt.Errorf("%w: unknown classifier provider %q", ErrInvalidConfig, c.Classifier.Provider)
	}

	for name, ms := range map[string]int{
		"classifier.timeout_ms": c.Classifier.TimeoutMS,
		"jira.timeout_ms":       c.Jira.TimeoutMS,
		"slack.timeout_ms":      c.Slack.TimeoutMS,
		"shutdown_timeout_ms":   c.ShutdownTimeoutMS,
	} {
		if ms < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, name)
		}
	}
	if c.Jira.ServerURL != "" && (c.Jira.Email == "" || c.Jira.APIToken == "") {
		return fmt.Errorf("%w: jira.email and jira.api_token are required with jira.server_url", ErrInvalidConfig)
	}
	return nil
}

// Millis converts a millisecond setting to a duration.
func Millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
