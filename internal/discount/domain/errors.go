package domain

import "errors"

var (
	ErrInvalidID            = errors.New("invalid_id")
	ErrInvalidAudience      = errors.New("invalid_audience")
	ErrInvalidRate          = errors.New("invalid_rate")
	ErrInvalidThreshold     = errors.New("invalid_threshold")
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrDuplicateThreshold   = errors.New("duplicate_threshold")
	ErrFloorTierRequired    = errors.New("floor_tier_required")
	ErrMissingFloorTier     = errors.New("missing_floor_tier")
	ErrInvalidTierReference = errors.New("invalid_tier_reference")
	ErrNotFound             = errors.New("not_found")
)
