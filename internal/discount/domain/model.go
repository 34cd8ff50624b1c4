package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Audience selects one of the disjoint discount schedules.
type Audience string

const (
	AudienceSalesPerson Audience = "sales_person"
	AudienceContractor  Audience = "contractor"
)

func (a Audience) Valid() bool {
	return a == AudienceSalesPerson || a == AudienceContractor
}

var maxRate = decimal.NewFromInt(1)

// Tier is one row of a volume discount schedule. Rate is a fraction with two
// decimals (0.20 means 20%).
type Tier struct {
	ID        snowflake.ID    `gorm:"primaryKey"`
	Audience  Audience        `gorm:"type:text;not null;index:ix_discount_tiers_audience_threshold,priority:1"`
	Rate      decimal.Decimal `gorm:"type:numeric(4,2);not null"`
	Threshold int64           `gorm:"not null;index:ix_discount_tiers_audience_threshold,priority:2"`
	IsActive  bool            `gorm:"column:is_active;not null"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

func (Tier) TableName() string { return "discount_tiers" }

// IsFloor reports whether t is the zero-rate, zero-threshold tier every schedule must keep.
func (t Tier) IsFloor() bool {
	return t.Rate.IsZero() && t.Threshold == 0
}

func (t *Tier) Validate() error {
	if !t.Audience.Valid() {
		return ErrInvalidAudience
	}
	if t.Rate.IsNegative() || t.Rate.GreaterThan(maxRate) {
		return ErrInvalidRate
	}
	if !t.Rate.Equal(t.Rate.Truncate(2)) {
		return ErrInvalidRate
	}
	if t.Threshold < 0 {
		return ErrInvalidThreshold
	}
	if t.Threshold == 0 && !t.Rate.IsZero() {
		return ErrInvalidThreshold
	}
	return nil
}
