package service

import "errors"

// Sentinel kinds for engine errors.
var (
	// ErrConfiguration marks a brief that references unknown reference data.
	ErrConfiguration = errors.New("configuration error")
	// ErrUnknownSegment is wrapped by ErrConfiguration for unknown segments.
	ErrUnknownSegment = errors.New("unknown segment")
	// ErrRepository marks a data source failure.
	ErrRepository = errors.New("repository error")
)
