package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	discountdomain "github.com/smallbiznis/salesinvoice/internal/discount/domain"
	"github.com/smallbiznis/salesinvoice/pkg/db/pagination"
)

const NoteMaxLength = 500

type Service interface {
	Generate(ctx context.Context, req GenerateRequest) (*InvoiceView, error)
	GenerateBulk(ctx context.Context, req BulkGenerateRequest) (*BulkResult, error)
	OverrideDiscount(ctx context.Context, req OverrideDiscountRequest) (*InvoiceView, error)
	Patch(ctx context.Context, req PatchRequest) (*InvoiceView, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	Get(ctx context.Context, id string) (*InvoiceView, error)
	Delete(ctx context.Context, id string) error
	Document(ctx context.Context, id string) (*Document, error)
	RenderHTML(ctx context.Context, id string) (string, error)
}

type GenerateRequest struct {
	SalesPersonID string `json:"sales_person_id" binding:"required"`
	StartDate     string `json:"start_date" binding:"required"`
	EndDate       string `json:"end_date" binding:"required"`
}

type BulkGenerateRequest struct {
	ClosingDate    string   `json:"closing_date" binding:"required"`
	SalesPersonIDs []string `json:"sales_person_ids,omitempty"`
}

type OverrideDiscountRequest struct {
	InvoiceID      string `json:"-"`
	DiscountRateID string `json:"discount_rate_id" binding:"required"`
}

// PatchRequest updates only the fields that are set.
type PatchRequest struct {
	ID                    string  `json:"-"`
	DiscountRateID        *string `json:"discount_rate_id,omitempty"`
	Note                  *string `json:"note,omitempty"`
	NonDiscountableAmount *int64  `json:"non_discountable_amount,omitempty"`
}

type ListRequest struct {
	SalesPersonID string `form:"sales_person_id"`
	pagination.Pagination
}

type DetailView struct {
	ID                string `json:"id"`
	ProductID         string `json:"product_id"`
	ProductName       string `json:"product_name"`
	TotalQuantity     int64  `json:"total_quantity"`
	UnitPrice         int64  `json:"unit_price"`
	Amount            int64  `json:"amount"`
	QuotaTarget       bool   `json:"quota_target"`
	DiscountExclusion bool   `json:"discount_exclusion"`
}

type InvoiceView struct {
	ID                string                  `json:"id"`
	SalesPersonID     string                  `json:"sales_person_id"`
	SalesPersonName   string                  `json:"sales_person_name"`
	Audience          discountdomain.Audience `json:"audience"`
	InvoiceNumber     string                  `json:"invoice_number"`
	StartDate         string                  `json:"start_date"`
	EndDate           string                  `json:"end_date"`
	InvoiceDate       string                  `json:"invoice_date"`
	ReceiptDate       string                  `json:"receipt_date"`
	DiscountRateID    string                  `json:"discount_rate_id"`
	DiscountRate      decimal.Decimal         `json:"discount_rate"`
	DiscountThreshold int64                   `json:"discount_threshold_amount"`
	Note              *string                 `json:"note,omitempty"`
	Totals
	Details   []DetailView `json:"details"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type ListResponse struct {
	Items    []InvoiceView       `json:"items"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

type PersonOutcome struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type PeriodView struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type BulkResult struct {
	RunID          string          `json:"run_id"`
	GeneratedCount int             `json:"generated_count"`
	SkippedCount   int             `json:"skipped_count"`
	FailedCount    int             `json:"failed_count"`
	SkippedPersons []PersonOutcome `json:"skipped_persons"`
	FailedPersons  []PersonOutcome `json:"failed_persons"`
	Invoices       []InvoiceView   `json:"invoices"`
	Period         PeriodView      `json:"period"`
}

// Document is everything the external renderer needs to lay out an invoice.
type Document struct {
	FileName string      `json:"file_name"`
	Issuer   string      `json:"issuer_number"`
	Invoice  InvoiceView `json:"invoice"`
	Labels   Labels      `json:"labels"`
}

// Labels are pre-formatted amounts for the renderer.
type Labels struct {
	DiscountRate     string            `json:"discount_rate"`
	QuotaSubtotal    string            `json:"quota_subtotal"`
	QuotaDiscount    string            `json:"quota_discount_amount"`
	QuotaTotal       string            `json:"quota_total"`
	NonQuotaSubtotal string            `json:"non_quota_subtotal"`
	NonQuotaDiscount string            `json:"non_quota_discount_amount"`
	NonQuotaTotal    string            `json:"non_quota_total"`
	NonDiscountable  string            `json:"non_discountable_amount"`
	TotalExTax       string            `json:"total_amount_ex_tax"`
	Tax              string            `json:"tax_amount"`
	TotalIncTax      string            `json:"total_amount_inc_tax"`
	DetailAmounts    map[string]string `json:"detail_amounts"`
	DetailUnitPrices map[string]string `json:"detail_unit_prices"`
}
