// Package loadgen generates synthetic feedback submissions and posts them to
// a running triage server.
package loadgen

import (
	"time"

	"github.com/okian/triage/pkg/logger"
)

// Default run settings.
const (
	DefaultBaseURL = "http://localhost:9080"
	DefaultCount   = 100
	DefaultWorkers = 4
	DefaultTimeout = 30 * time.Second
)

// Config holds configuration for a seeding run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Count      int           // Number of submissions to generate
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Optional JSON file receiving the generated submissions
	Verbose    bool          // Log every submission
	Logger     logger.Logger // Defaults to a no-op logger
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Count <= 0 {
		c.Count = DefaultCount
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}
}

// Stats holds run statistics.
type Stats struct {
	Generated  int
	Submitted  int
	Accepted   int
	Rejected   int
	Failed     int
	Escalated  int
	Tickets    int
	LogTotal   int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	Sentiments map[string]int
}
