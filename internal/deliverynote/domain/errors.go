package domain

import "errors"

var (
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidDate         = errors.New("invalid_date")
	ErrInvalidQuantity     = errors.New("invalid_quantity")
	ErrInvalidUnitPrice    = errors.New("invalid_unit_price")
	ErrInvalidRecognition  = errors.New("invalid_image_recognition_data")
	ErrEmptyLines          = errors.New("empty_lines")
	ErrDuplicateNoteNumber = errors.New("duplicate_delivery_note_number")
	ErrUnknownSalesPerson  = errors.New("unknown_sales_person")
	ErrUnknownProduct      = errors.New("unknown_product")
	ErrUnknownTaxRate      = errors.New("unknown_tax_rate")
	ErrNotFound            = errors.New("not_found")
)
