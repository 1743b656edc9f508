package jira

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the tracker clients.
var (
	ErrMissingKey = errors.New("jira: response carried no issue key")
	ErrNoServer   = errors.New("jira: server URL is not configured")
)

// APIError represents a non-2xx response from the Jira REST API.
type APIError struct {
	StatusCode int
	Body       string // first 512 bytes
}

func (e *APIError) Error() string {
	return fmt.Sprintf("jira: HTTP %d: %s", e.StatusCode, e.Body)
}
