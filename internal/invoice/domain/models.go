// Package domain contains persistence models for sales invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	discountdomain "github.com/smallbiznis/salesinvoice/internal/discount/domain"
)

// Invoice is the billed total of one sales person over one period.
// (sales_person_id, start_date, end_date) is unique.
type Invoice struct {
	ID                     snowflake.ID            `gorm:"primaryKey"`
	SalesPersonID          snowflake.ID            `gorm:"column:sales_person_id;not null;uniqueIndex:ux_sales_invoices_period,priority:1"`
	StartDate              time.Time               `gorm:"column:start_date;type:date;not null;uniqueIndex:ux_sales_invoices_period,priority:2"`
	EndDate                time.Time               `gorm:"column:end_date;type:date;not null;uniqueIndex:ux_sales_invoices_period,priority:3"`
	Audience               discountdomain.Audience `gorm:"type:text;not null"`
	InvoiceNumber          string                  `gorm:"column:invoice_number;type:text;not null"`
	DiscountTierID         snowflake.ID            `gorm:"column:discount_tier_id;not null"`
	InvoiceDate            time.Time               `gorm:"column:invoice_date;type:date;not null"`
	ReceiptDate            time.Time               `gorm:"column:receipt_date;type:date;not null"`
	NonDiscountableAmount  int64                   `gorm:"column:non_discountable_amount;not null"`
	Note                   *string                 `gorm:"type:varchar(500)"`
	QuotaSubtotal          int64                   `gorm:"column:quota_subtotal;not null"`
	QuotaDiscountAmount    int64                   `gorm:"column:quota_discount_amount;not null"`
	QuotaTotal             int64                   `gorm:"column:quota_total;not null"`
	NonQuotaSubtotal       int64                   `gorm:"column:non_quota_subtotal;not null"`
	NonQuotaDiscountAmount int64                   `gorm:"column:non_quota_discount_amount;not null"`
	NonQuotaTotal          int64                   `gorm:"column:non_quota_total;not null"`
	TotalAmountExTax       int64                   `gorm:"column:total_amount_ex_tax;not null"`
	TaxAmount              int64                   `gorm:"column:tax_amount;not null"`
	TotalAmountIncTax      int64                   `gorm:"column:total_amount_inc_tax;not null"`
	CreatedAt              time.Time               `gorm:"not null"`
	UpdatedAt              time.Time               `gorm:"not null"`
}

func (Invoice) TableName() string { return "sales_invoices" }

// ApplyTotals copies calculator output onto the invoice.
func (i *Invoice) ApplyTotals(t Totals) {
	i.QuotaSubtotal = t.QuotaSubtotal
	i.QuotaDiscountAmount = t.QuotaDiscount
	i.QuotaTotal = t.QuotaTotal
	i.NonQuotaSubtotal = t.NonQuotaSubtotal
	i.NonQuotaDiscountAmount = t.NonQuotaDiscount
	i.NonQuotaTotal = t.NonQuotaTotal
	i.NonDiscountableAmount = t.NonDiscountable
	i.TotalAmountExTax = t.TotalExTax
	i.TaxAmount = t.Tax
	i.TotalAmountIncTax = t.TotalIncTax
}

// InvoiceDetail is one product row of an invoice. Details are deleted and
// re-created on every regeneration.
type InvoiceDetail struct {
	ID                snowflake.ID `gorm:"primaryKey"`
	InvoiceID         snowflake.ID `gorm:"column:invoice_id;not null;index"`
	ProductID         snowflake.ID `gorm:"column:product_id;not null"`
	TotalQuantity     int64        `gorm:"column:total_quantity;not null"`
	UnitPrice         int64        `gorm:"column:unit_price;not null"`
	Amount            int64        `gorm:"not null"`
	QuotaTarget       bool         `gorm:"column:quota_target;not null"`
	DiscountExclusion bool         `gorm:"column:discount_exclusion;not null"`
	CreatedAt         time.Time    `gorm:"not null"`
}

func (InvoiceDetail) TableName() string { return "sales_invoice_details" }
