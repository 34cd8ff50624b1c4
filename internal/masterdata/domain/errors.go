package domain

import "errors"

var (
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidPrice        = errors.New("invalid_price")
	ErrInvalidDisplayOrder = errors.New("invalid_display_order")
	ErrNotFound            = errors.New("not_found")
)
