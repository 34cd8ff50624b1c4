package domain

import (
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// TaxBasis names the amount tax is levied on.
type TaxBasis string

const (
	TaxBasisTotalExTax TaxBasis = "total_ex_tax"
	// TaxBasisQuotaTotal levies tax on the discounted quota bucket only. It
	// under-taxes non-quota goods and exists for regression comparison.
	TaxBasisQuotaTotal TaxBasis = "quota_total"
)

// AggregateRow is the per product sum of a sales person's delivery lines.
type AggregateRow struct {
	ProductID         snowflake.ID
	TotalQuantity     int64
	UnitPrice         int64
	Amount            int64
	QuotaTarget       bool
	DiscountExclusion bool
}

type Aggregation struct {
	QuotaSubtotal    int64
	NonQuotaSubtotal int64
	Rows             []AggregateRow
}

// Subtotal is the pre-discount amount used to pick a discount tier.
func (a Aggregation) Subtotal() int64 {
	return a.QuotaSubtotal + a.NonQuotaSubtotal
}

type CalculationInput struct {
	QuotaSubtotal         int64
	NonQuotaSubtotal      int64
	NonDiscountableAmount int64
	DiscountRate          decimal.Decimal // fraction, 0.20 = 20%
	TaxRate               decimal.Decimal // fraction, 0.10 = 10%
	TaxBasis              TaxBasis
}

type Totals struct {
	QuotaSubtotal    int64 `json:"quota_subtotal"`
	QuotaDiscount    int64 `json:"quota_discount_amount"`
	QuotaTotal       int64 `json:"quota_total"`
	NonQuotaSubtotal int64 `json:"non_quota_subtotal"`
	NonQuotaDiscount int64 `json:"non_quota_discount_amount"`
	NonQuotaTotal    int64 `json:"non_quota_total"`
	NonDiscountable  int64 `json:"non_discountable_amount"`
	TotalExTax       int64 `json:"total_amount_ex_tax"`
	Tax              int64 `json:"tax_amount"`
	TotalIncTax      int64 `json:"total_amount_inc_tax"`
}
