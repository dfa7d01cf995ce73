package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	ErrInvalidTable = errors.New("invalid adjustment table")
)
