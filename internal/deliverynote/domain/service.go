package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/smallbiznis/salesinvoice/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	Delete(ctx context.Context, id string) error
}

type LineInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"gte=0"`
	// UnitPrice defaults to the product list price when omitted.
	UnitPrice *int64  `json:"unit_price,omitempty" validate:"omitempty,gte=0"`
	Remarks   *string `json:"remarks,omitempty" validate:"omitempty,max=200"`
}

type CreateRequest struct {
	SalesPersonID        string          `json:"sales_person_id" validate:"required"`
	TaxRateID            string          `json:"tax_rate_id,omitempty"`
	DeliveryNoteNumber   string          `json:"delivery_note_number" validate:"required,max=50"`
	DeliveryDate         string          `json:"delivery_date" validate:"required,datetime=2006-01-02"`
	BillingDate          string          `json:"billing_date" validate:"required,datetime=2006-01-02"`
	Remarks              *string         `json:"remarks,omitempty"`
	FilePath             *string         `json:"file_path,omitempty" validate:"omitempty,max=500"`
	ImageRecognitionData json.RawMessage `json:"image_recognition_data,omitempty"`
	Lines                []LineInput     `json:"lines" validate:"required,min=1,dive"`
}

// UpdateRequest changes only the fields that are set. Lines, when present,
// replace every existing line.
type UpdateRequest struct {
	ID                   string          `json:"-" validate:"required"`
	SalesPersonID        *string         `json:"sales_person_id,omitempty"`
	TaxRateID            *string         `json:"tax_rate_id,omitempty"`
	DeliveryNoteNumber   *string         `json:"delivery_note_number,omitempty" validate:"omitempty,min=1,max=50"`
	DeliveryDate         *string         `json:"delivery_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	BillingDate          *string         `json:"billing_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Remarks              *string         `json:"remarks,omitempty"`
	FilePath             *string         `json:"file_path,omitempty" validate:"omitempty,max=500"`
	ImageRecognitionData json.RawMessage `json:"image_recognition_data,omitempty"`
	Lines                []LineInput     `json:"lines,omitempty" validate:"omitempty,min=1,dive"`
}

type ListRequest struct {
	SalesPersonID string `form:"sales_person_id"`
	From          string `form:"from"`
	To            string `form:"to"`
	pagination.Pagination
}

type LineResponse struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Quantity  int64   `json:"quantity"`
	UnitPrice int64   `json:"unit_price"`
	Amount    int64   `json:"amount"`
	Remarks   *string `json:"remarks,omitempty"`
}

type Response struct {
	ID                   string          `json:"id"`
	SalesPersonID        string          `json:"sales_person_id"`
	TaxRateID            string          `json:"tax_rate_id"`
	DeliveryNoteNumber   string          `json:"delivery_note_number"`
	DeliveryDate         string          `json:"delivery_date"`
	BillingDate          string          `json:"billing_date"`
	QuotaAmount          int64           `json:"quota_amount"`
	NonQuotaAmount       int64           `json:"non_quota_amount"`
	TotalAmountExTax     int64           `json:"total_amount_ex_tax"`
	TaxAmount            int64           `json:"tax_amount"`
	TotalAmountIncTax    int64           `json:"total_amount_inc_tax"`
	Remarks              *string         `json:"remarks,omitempty"`
	FilePath             *string         `json:"file_path,omitempty"`
	ImageRecognitionData json.RawMessage `json:"image_recognition_data,omitempty"`
	Lines                []LineResponse  `json:"lines"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

type ListResponse struct {
	Items    []Response          `json:"items"`
	PageInfo pagination.PageInfo `json:"page_info"`
}
