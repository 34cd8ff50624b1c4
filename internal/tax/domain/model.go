package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

var maxPercent = decimal.NewFromInt(100)

// TaxRate is a consumption tax rate expressed in percent (10.00 means 10%).
// The active rate is the lowest-id active row.
type TaxRate struct {
	ID          snowflake.ID    `gorm:"primaryKey"`
	DisplayName string          `gorm:"column:display_name;type:text;not null"`
	Rate        decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	IsActive    bool            `gorm:"column:is_active;not null"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

func (TaxRate) TableName() string { return "tax_rates" }

// Fraction converts the stored percentage to a multiplier.
func (t TaxRate) Fraction() decimal.Decimal {
	return t.Rate.Shift(-2)
}

func (t *TaxRate) Validate() error {
	if t.DisplayName == "" {
		return ErrInvalidName
	}
	if t.Rate.IsNegative() || t.Rate.GreaterThan(maxPercent) {
		return ErrInvalidTaxRate
	}
	if !t.Rate.Equal(t.Rate.Truncate(2)) {
		return ErrInvalidTaxRate
	}
	return nil
}
