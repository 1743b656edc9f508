package analytics

import "errors"

// Sentinel errors for the analytics package.
var (
	ErrInvalidFilter = errors.New("invalid filter")
)
