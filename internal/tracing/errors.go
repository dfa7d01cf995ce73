package tracing

import "errors"

// Sentinel kinds for tracing errors.
var (
	ErrInvalidConfig = errors.New("invalid tracing config")
)
