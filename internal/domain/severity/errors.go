package severity

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidRating = errors.New("invalid rating: must be an integer between 1 and 5")
	ErrClassifier    = errors.New("sentiment classifier failed")
)
