package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// SalesPerson is the billing subject of generated invoices.
type SalesPerson struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Name      string       `gorm:"type:text;not null"`
	IsActive  bool         `gorm:"column:is_active;not null;index"`
	CreatedAt time.Time    `gorm:"not null"`
	UpdatedAt time.Time    `gorm:"not null"`
}

func (SalesPerson) TableName() string { return "sales_persons" }

// Contractor receives goods on consignment and is billed with the contractor tier schedule.
type Contractor struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Name      string       `gorm:"type:text;not null"`
	IsActive  bool         `gorm:"column:is_active;not null;index"`
	CreatedAt time.Time    `gorm:"not null"`
	UpdatedAt time.Time    `gorm:"not null"`
}

func (Contractor) TableName() string { return "contractors" }

// Product carries the classification flags the invoice aggregation reads.
// QuotaTarget selects the quota bucket; QuotaExclusion is reserved.
type Product struct {
	ID                snowflake.ID `gorm:"primaryKey"`
	Name              string       `gorm:"type:text;not null"`
	Price             int64        `gorm:"not null"`
	DiscountExclusion bool         `gorm:"column:discount_exclusion;not null"`
	QuotaExclusion    bool         `gorm:"column:quota_exclusion;not null"`
	QuotaTarget       bool         `gorm:"column:quota_target;not null"`
	DisplayOrder      int          `gorm:"column:display_order;not null"`
	IsActive          bool         `gorm:"column:is_active;not null;index"`
	CreatedAt         time.Time    `gorm:"not null"`
	UpdatedAt         time.Time    `gorm:"not null"`
}

func (Product) TableName() string { return "products" }

func (p *Product) Validate() error {
	if p.Name == "" {
		return ErrInvalidName
	}
	if p.Price < 0 {
		return ErrInvalidPrice
	}
	if p.DisplayOrder < 0 {
		return ErrInvalidDisplayOrder
	}
	return nil
}
