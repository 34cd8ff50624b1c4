package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/bwmarrin/snowflake"
	discountdomain "github.com/smallbiznis/salesinvoice/internal/discount/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ResolverParams struct {
	fx.In

	Log  *zap.Logger
	Repo discountdomain.Repository
}

type Resolver struct {
	log  *zap.Logger
	repo discountdomain.Repository
}

func NewResolver(p ResolverParams) discountdomain.Resolver {
	return &Resolver{
		log:  p.Log.Named("discount.resolver"),
		repo: p.Repo,
	}
}

func (r *Resolver) Resolve(ctx context.Context, db *gorm.DB, audience discountdomain.Audience, amount int64) (*discountdomain.Tier, error) {
	if !audience.Valid() {
		return nil, discountdomain.ErrInvalidAudience
	}
	if amount < 0 {
		return nil, discountdomain.ErrInvalidAmount
	}

	tiers, err := r.repo.ListActive(ctx, db, audience)
	if err != nil {
		return nil, err
	}
	tier, err := selectTier(tiers, amount)
	if err != nil {
		return nil, fmt.Errorf("%w: audience %s", err, audience)
	}
	return tier, nil
}

func (r *Resolver) ActiveTier(ctx context.Context, db *gorm.DB, audience discountdomain.Audience, id snowflake.ID) (*discountdomain.Tier, error) {
	tier, err := r.repo.FindActive(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if tier == nil || tier.Audience != audience {
		r.log.Debug("rejected tier reference",
			zap.String("discount_tier_id", id.String()),
			zap.String("audience", string(audience)),
		)
		return nil, discountdomain.ErrInvalidTierReference
	}
	return tier, nil
}

func (r *Resolver) Tier(ctx context.Context, db *gorm.DB, id snowflake.ID) (*discountdomain.Tier, error) {
	tier, err := r.repo.FindIncludingInactive(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if tier == nil {
		return nil, discountdomain.ErrNotFound
	}
	return tier, nil
}

// selectTier walks the schedule from the highest threshold down and returns
// the first positive-rate tier the amount reaches, or the floor tier.
// Equal thresholds fall back to the lowest id.
func selectTier(tiers []discountdomain.Tier, amount int64) (*discountdomain.Tier, error) {
	ordered := make([]discountdomain.Tier, len(tiers))
	copy(ordered, tiers)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Threshold != ordered[j].Threshold {
			return ordered[i].Threshold > ordered[j].Threshold
		}
		return ordered[i].ID < ordered[j].ID
	})

	var floor *discountdomain.Tier
	for i := range ordered {
		tier := &ordered[i]
		if tier.IsFloor() {
			if floor == nil {
				floor = tier
			}
			continue
		}
		if tier.Rate.IsPositive() && tier.Threshold <= amount {
			return tier, nil
		}
	}
	if floor == nil {
		return nil, discountdomain.ErrMissingFloorTier
	}
	return floor, nil
}
