package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	taxdomain "github.com/smallbiznis/salesinvoice/internal/tax/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type ResolverParams struct {
	fx.In

	Repository taxdomain.Repository
}

type resolver struct {
	repo taxdomain.Repository
}

func NewResolver(p ResolverParams) taxdomain.TaxResolver {
	return &resolver{repo: p.Repository}
}

func (r *resolver) ActiveRate(ctx context.Context, db *gorm.DB) (*taxdomain.TaxRate, error) {
	rate, err := r.repo.GetActive(ctx, db)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, taxdomain.ErrMissingTaxRate
	}
	return rate, nil
}

func (r *resolver) RateByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*taxdomain.TaxRate, error) {
	rate, err := r.repo.FindByID(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if rate == nil || !rate.IsActive {
		return nil, taxdomain.ErrNotFound
	}
	return rate, nil
}

// ComputeTaxExclusive calculates tax added on top of basis, truncating
// toward zero. fraction is the multiplier (0.10 for 10%).
func ComputeTaxExclusive(basis int64, fraction decimal.Decimal) int64 {
	if basis <= 0 || !fraction.IsPositive() {
		return 0
	}
	return decimal.NewFromInt(basis).Mul(fraction).Floor().IntPart()
}
