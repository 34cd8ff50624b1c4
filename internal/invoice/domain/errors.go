package domain

import "errors"

var (
	ErrInvalidID            = errors.New("invalid_id")
	ErrInvalidDate          = errors.New("invalid_date")
	ErrInvalidPeriod        = errors.New("invalid_period")
	ErrInvalidNote          = errors.New("invalid_note")
	ErrNegativeAmount       = errors.New("negative_amount")
	ErrInvalidDiscountRate  = errors.New("invalid_discount_rate")
	ErrInvalidTaxRate       = errors.New("invalid_tax_rate")
	ErrUnknownTaxBasis      = errors.New("unknown_tax_basis")
	ErrNonUniformUnitPrice  = errors.New("non_uniform_unit_price")
	ErrNoDeliveryNotes      = errors.New("no_delivery_notes")
	ErrNoSalesPersons       = errors.New("no_sales_persons")
	ErrSalesPersonNotFound  = errors.New("sales_person_not_found")
	ErrGenerationInProgress = errors.New("generation_in_progress")
	ErrEmptyPatch           = errors.New("empty_patch")
	ErrInvoiceNotFound      = errors.New("invoice_not_found")
)
