package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrUnknownBudgetBand = errors.New("unknown budget band")
	ErrUnknownIndustry   = errors.New("unknown industry")
	ErrInvalidFixture    = errors.New("invalid fixture")
	ErrNoSource          = errors.New("no data source configured")
)
