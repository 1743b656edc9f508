package repository

import "errors"

// Sentinel kinds for feedback log errors.
var (
	ErrLogNotFound     = errors.New("feedback log not found")
	ErrMalformedHeader = errors.New("malformed feedback log header")
	ErrMalformedRecord = errors.New("malformed feedback log record")
	ErrAppend          = errors.New("feedback log append failed")
)
