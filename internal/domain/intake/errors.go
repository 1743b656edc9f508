package intake

import "errors"

// Sentinel errors for the intake session.
var (
	ErrSessionClosed = errors.New("intake session is closed")
)
