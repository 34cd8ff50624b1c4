package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const DateLayout = "2006-01-02"

// Note is a delivery note header. Amount columns are derived from its lines
// and recomputed whenever lines are replaced.
type Note struct {
	ID                   snowflake.ID   `gorm:"primaryKey"`
	SalesPersonID        snowflake.ID   `gorm:"column:sales_person_id;not null;index:ix_delivery_notes_sales_person_date,priority:1"`
	TaxRateID            snowflake.ID   `gorm:"column:tax_rate_id;not null"`
	DeliveryNoteNumber   string         `gorm:"column:delivery_note_number;type:text;not null;uniqueIndex"`
	DeliveryDate         time.Time      `gorm:"column:delivery_date;type:date;not null;index:ix_delivery_notes_sales_person_date,priority:2"`
	BillingDate          time.Time      `gorm:"column:billing_date;type:date;not null"`
	QuotaAmount          int64          `gorm:"column:quota_amount;not null"`
	NonQuotaAmount       int64          `gorm:"column:non_quota_amount;not null"`
	TotalAmountExTax     int64          `gorm:"column:total_amount_ex_tax;not null"`
	TaxAmount            int64          `gorm:"column:tax_amount;not null"`
	TotalAmountIncTax    int64          `gorm:"column:total_amount_inc_tax;not null"`
	Remarks              *string        `gorm:"type:text"`
	FilePath             *string        `gorm:"column:file_path;type:text"`
	ImageRecognitionData datatypes.JSON `gorm:"column:image_recognition_data"`
	CreatedAt            time.Time      `gorm:"not null"`
	UpdatedAt            time.Time      `gorm:"not null"`
}

func (Note) TableName() string { return "delivery_notes" }

// Line is one product row of a delivery note. Lines are replaced, never edited.
type Line struct {
	ID             snowflake.ID `gorm:"primaryKey"`
	DeliveryNoteID snowflake.ID `gorm:"column:delivery_note_id;not null;index"`
	ProductID      snowflake.ID `gorm:"column:product_id;not null"`
	Quantity       int64        `gorm:"not null"`
	UnitPrice      int64        `gorm:"column:unit_price;not null"`
	Amount         int64        `gorm:"not null"`
	Remarks        *string      `gorm:"type:text"`
	CreatedAt      time.Time    `gorm:"not null"`
	UpdatedAt      time.Time    `gorm:"not null"`
}

func (Line) TableName() string { return "delivery_note_lines" }

// LineItem is a line joined with the classification of its product.
type LineItem struct {
	DeliveryNoteID    snowflake.ID
	ProductID         snowflake.ID
	Quantity          int64
	UnitPrice         int64
	Amount            int64
	QuotaTarget       bool
	DiscountExclusion bool
}
