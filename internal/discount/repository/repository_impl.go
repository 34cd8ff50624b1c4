package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	discountdomain "github.com/smallbiznis/salesinvoice/internal/discount/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() discountdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, tier *discountdomain.Tier) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO discount_tiers (id, audience, rate, threshold, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tier.ID, tier.Audience, tier.Rate, tier.Threshold, tier.IsActive, tier.CreatedAt, tier.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, tier *discountdomain.Tier) error {
	return db.WithContext(ctx).Exec(
		`UPDATE discount_tiers SET rate = ?, threshold = ?, is_active = ?, updated_at = ? WHERE id = ?`,
		tier.Rate, tier.Threshold, tier.IsActive, tier.UpdatedAt, tier.ID,
	).Error
}

func (r *repo) FindActive(ctx context.Context, db *gorm.DB, id snowflake.ID) (*discountdomain.Tier, error) {
	var tier discountdomain.Tier
	err := db.WithContext(ctx).Raw(
		`SELECT id, audience, rate, threshold, is_active, created_at, updated_at
		 FROM discount_tiers WHERE id = ? AND is_active = ?`,
		id, true,
	).Scan(&tier).Error
	if err != nil {
		return nil, err
	}
	if tier.ID == 0 {
		return nil, nil
	}
	return &tier, nil
}

func (r *repo) FindIncludingInactive(ctx context.Context, db *gorm.DB, id snowflake.ID) (*discountdomain.Tier, error) {
	var tier discountdomain.Tier
	err := db.WithContext(ctx).Raw(
		`SELECT id, audience, rate, threshold, is_active, created_at, updated_at
		 FROM discount_tiers WHERE id = ?`,
		id,
	).Scan(&tier).Error
	if err != nil {
		return nil, err
	}
	if tier.ID == 0 {
		return nil, nil
	}
	return &tier, nil
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB, audience discountdomain.Audience) ([]discountdomain.Tier, error) {
	var items []discountdomain.Tier
	err := db.WithContext(ctx).Raw(
		`SELECT id, audience, rate, threshold, is_active, created_at, updated_at
		 FROM discount_tiers
		 WHERE audience = ? AND is_active = ?
		 ORDER BY threshold DESC, id ASC`,
		audience, true,
	).Scan(&items).Error
	return items, err
}

func (r *repo) CountActiveWithThreshold(ctx context.Context, db *gorm.DB, audience discountdomain.Audience, threshold int64, excludeID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM discount_tiers
		 WHERE audience = ? AND threshold = ? AND is_active = ? AND id <> ?`,
		audience, threshold, true, excludeID,
	).Scan(&count).Error
	return count, err
}
