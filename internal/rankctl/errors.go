package rankctl

import "errors"

// Sentinel kinds for rankctl errors.
var (
	ErrInvalidFlags  = errors.New("invalid flags")
	ErrInvalidResult = errors.New("invalid ranking result")
	ErrUnhealthy     = errors.New("service unhealthy")
)
