package huggingface

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the inference clients.
var (
	ErrEmptyResponse  = errors.New("huggingface: empty classification response")
	ErrUnexpectedBody = errors.New("huggingface: unexpected response body")
	ErrLabelMismatch  = errors.New("huggingface: labels and scores differ in length")
)

// APIError represents a non-2xx response from the inference API.
type APIError struct {
	StatusCode int
	Body       string // first 512 bytes
}

func (e *APIError) Error() string {
	return fmt.Sprintf("huggingface: HTTP %d: %s", e.StatusCode, e.Body)
}
