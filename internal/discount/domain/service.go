package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Resolver picks tiers for invoice runs. The db argument lets callers resolve
// inside their own transaction.
type Resolver interface {
	// Resolve returns the tier that applies to amount for audience.
	Resolve(ctx context.Context, db *gorm.DB, audience Audience, amount int64) (*Tier, error)
	// ActiveTier validates a caller supplied tier reference against audience.
	ActiveTier(ctx context.Context, db *gorm.DB, audience Audience, id snowflake.ID) (*Tier, error)
	// Tier loads a tier for display, including deactivated ones.
	Tier(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Tier, error)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, audience Audience) ([]Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	Audience  Audience        `json:"audience"`
	Rate      decimal.Decimal `json:"rate"`
	Threshold int64           `json:"threshold_amount"`
}

type UpdateRequest struct {
	ID        string           `json:"-"`
	Rate      *decimal.Decimal `json:"rate,omitempty"`
	Threshold *int64           `json:"threshold_amount,omitempty"`
}

type Response struct {
	ID        string          `json:"id"`
	Audience  Audience        `json:"audience"`
	Rate      decimal.Decimal `json:"rate"`
	Threshold int64           `json:"threshold_amount"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
