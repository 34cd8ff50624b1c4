package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	taxdomain "github.com/smallbiznis/salesinvoice/internal/tax/domain"
	"gorm.io/gorm"
)

type repository struct{}

func NewRepository() taxdomain.Repository {
	return &repository{}
}

func (r *repository) GetActive(ctx context.Context, db *gorm.DB) (*taxdomain.TaxRate, error) {
	var rate taxdomain.TaxRate
	err := db.WithContext(ctx).Raw(
		`SELECT id, display_name, rate, is_active, created_at, updated_at
		 FROM tax_rates
		 WHERE is_active = ?
		 ORDER BY id ASC
		 LIMIT 1`,
		true,
	).Scan(&rate).Error
	if err != nil {
		return nil, err
	}
	if rate.ID == 0 {
		return nil, nil
	}
	return &rate, nil
}

func (r *repository) Insert(ctx context.Context, db *gorm.DB, rate *taxdomain.TaxRate) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO tax_rates (id, display_name, rate, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rate.ID,
		rate.DisplayName,
		rate.Rate,
		rate.IsActive,
		rate.CreatedAt,
		rate.UpdatedAt,
	).Error
}

// FindByID returns the row regardless of is_active; callers decide.
func (r *repository) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*taxdomain.TaxRate, error) {
	var rate taxdomain.TaxRate
	err := db.WithContext(ctx).Raw(
		`SELECT id, display_name, rate, is_active, created_at, updated_at
		 FROM tax_rates
		 WHERE id = ?`,
		id,
	).Scan(&rate).Error
	if err != nil {
		return nil, err
	}
	if rate.ID == 0 {
		return nil, nil
	}
	return &rate, nil
}

func (r *repository) List(ctx context.Context, db *gorm.DB) ([]taxdomain.TaxRate, error) {
	var items []taxdomain.TaxRate
	err := db.WithContext(ctx).Raw(
		`SELECT id, display_name, rate, is_active, created_at, updated_at
		 FROM tax_rates
		 WHERE is_active = ?
		 ORDER BY id ASC`,
		true,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Update(ctx context.Context, db *gorm.DB, rate *taxdomain.TaxRate) error {
	return db.WithContext(ctx).Exec(
		`UPDATE tax_rates
		 SET display_name = ?, rate = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		rate.DisplayName,
		rate.Rate,
		rate.IsActive,
		rate.UpdatedAt,
		rate.ID,
	).Error
}
