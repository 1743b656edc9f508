package loadgen

import "errors"

// Error constants.
var (
	ErrUnhealthy    = errors.New("service health check failed")
	ErrSubmit       = errors.New("submission failed")
	ErrVerification = errors.New("result verification failed")
)
