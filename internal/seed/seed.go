// Package seed installs the reference data a fresh database needs before
// the first invoice can be generated.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	discountdomain "github.com/smallbiznis/salesinvoice/internal/discount/domain"
	taxdomain "github.com/smallbiznis/salesinvoice/internal/tax/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultTaxName = "Consumption tax 10%"

type tierSeed struct {
	rate      string
	threshold int64
}

// Both schedules start with the zero floor tier. The contractor 20% tier
// starts at 1 because only the floor may sit at threshold 0.
var defaultSchedules = map[discountdomain.Audience][]tierSeed{
	discountdomain.AudienceSalesPerson: {
		{rate: "0", threshold: 0},
		{rate: "0.10", threshold: 21000},
		{rate: "0.20", threshold: 42000},
		{rate: "0.30", threshold: 200000},
		{rate: "0.40", threshold: 400000},
	},
	discountdomain.AudienceContractor: {
		{rate: "0", threshold: 0},
		{rate: "0.20", threshold: 1},
		{rate: "0.30", threshold: 200000},
		{rate: "0.40", threshold: 400000},
	},
}

// EnsureDefaults seeds each discount schedule and the tax rate table when
// they hold no rows at all. Existing data, active or not, is never touched.
func EnsureDefaults(ctx context.Context, db *gorm.DB, node *snowflake.Node, log *zap.Logger) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	log = log.Named("seed")

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		for _, audience := range []discountdomain.Audience{discountdomain.AudienceSalesPerson, discountdomain.AudienceContractor} {
			seeded, err := ensureSchedule(ctx, tx, node, audience, now)
			if err != nil {
				return err
			}
			if seeded {
				log.Info("default discount schedule seeded", zap.String("audience", string(audience)))
			}
		}

		seeded, err := ensureTaxRate(ctx, tx, node, now)
		if err != nil {
			return err
		}
		if seeded {
			log.Info("default tax rate seeded")
		}
		return nil
	})
}

func ensureSchedule(ctx context.Context, tx *gorm.DB, node *snowflake.Node, audience discountdomain.Audience, now time.Time) (bool, error) {
	var count int64
	if err := tx.WithContext(ctx).Model(&discountdomain.Tier{}).Where("audience = ?", audience).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	seeds := defaultSchedules[audience]
	tiers := make([]discountdomain.Tier, 0, len(seeds))
	for _, s := range seeds {
		tier := discountdomain.Tier{
			ID:        node.Generate(),
			Audience:  audience,
			Rate:      decimal.RequireFromString(s.rate),
			Threshold: s.threshold,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tier.Validate(); err != nil {
			return false, err
		}
		tiers = append(tiers, tier)
	}
	return true, tx.WithContext(ctx).Create(&tiers).Error
}

func ensureTaxRate(ctx context.Context, tx *gorm.DB, node *snowflake.Node, now time.Time) (bool, error) {
	var count int64
	if err := tx.WithContext(ctx).Model(&taxdomain.TaxRate{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	rate := taxdomain.TaxRate{
		ID:          node.Generate(),
		DisplayName: defaultTaxName,
		Rate:        decimal.NewFromInt(10),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return true, tx.WithContext(ctx).Create(&rate).Error
}
