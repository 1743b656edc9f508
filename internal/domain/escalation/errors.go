package escalation

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrTopicClassifier = errors.New("topic classifier failed")
	ErrNoCategory      = errors.New("topic classifier returned no category")
	ErrTicketCreation  = errors.New("ticket creation failed")
	ErrNotNegative     = errors.New("event is not negative")
)
