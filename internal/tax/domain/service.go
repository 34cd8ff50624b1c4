package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TaxResolver returns the tax rate applied to new documents.
type TaxResolver interface {
	ActiveRate(ctx context.Context, db *gorm.DB) (*TaxRate, error)
	// RateByID resolves an explicit reference; inactive rates are rejected.
	RateByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*TaxRate, error)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context) ([]Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	DisplayName string          `json:"display_name"`
	Rate        decimal.Decimal `json:"rate"`
}

type UpdateRequest struct {
	ID          string           `json:"-"`
	DisplayName *string          `json:"display_name,omitempty"`
	Rate        *decimal.Decimal `json:"rate,omitempty"`
}

type Response struct {
	ID          string          `json:"id"`
	DisplayName string          `json:"display_name"`
	Rate        decimal.Decimal `json:"rate"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
