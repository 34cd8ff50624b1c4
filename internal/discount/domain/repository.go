package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, tier *Tier) error
	Update(ctx context.Context, db *gorm.DB, tier *Tier) error
	FindActive(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Tier, error)
	// FindIncludingInactive serves the applied-rate footer of issued invoices.
	FindIncludingInactive(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Tier, error)
	// ListActive returns the audience schedule ordered by threshold descending, id ascending.
	ListActive(ctx context.Context, db *gorm.DB, audience Audience) ([]Tier, error)
	CountActiveWithThreshold(ctx context.Context, db *gorm.DB, audience Audience, threshold int64, excludeID snowflake.ID) (int64, error)
}
