package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	discountdomain "github.com/smallbiznis/salesinvoice/internal/discount/domain"
	"github.com/smallbiznis/salesinvoice/internal/discount/repository"
	"github.com/smallbiznis/salesinvoice/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func tier(id int64, rate string, threshold int64) discountdomain.Tier {
	return discountdomain.Tier{
		ID:        snowflake.ID(id),
		Audience:  discountdomain.AudienceSalesPerson,
		Rate:      decimal.RequireFromString(rate),
		Threshold: threshold,
		IsActive:  true,
	}
}

func customerSchedule() []discountdomain.Tier {
	return []discountdomain.Tier{
		tier(1, "0", 0),
		tier(2, "0.10", 21000),
		tier(3, "0.20", 42000),
		tier(4, "0.30", 200000),
		tier(5, "0.40", 400000),
	}
}

func TestSelectTier(t *testing.T) {
	tests := []struct {
		name     string
		amount   int64
		wantID   int64
		wantRate string
	}{
		{name: "zero amount gets floor", amount: 0, wantID: 1, wantRate: "0"},
		{name: "just below first threshold", amount: 20999, wantID: 1, wantRate: "0"},
		{name: "exactly first threshold", amount: 21000, wantID: 2, wantRate: "0.10"},
		{name: "one below 42000", amount: 41999, wantID: 2, wantRate: "0.10"},
		{name: "exactly 42000", amount: 42000, wantID: 3, wantRate: "0.20"},
		{name: "top tier", amount: 1_000_000, wantID: 5, wantRate: "0.40"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectTier(customerSchedule(), tt.amount)
			require.NoError(t, err)
			assert.Equal(t, snowflake.ID(tt.wantID), got.ID)
			assert.True(t, got.Rate.Equal(decimal.RequireFromString(tt.wantRate)))
		})
	}
}

func TestSelectTier_MissingFloor(t *testing.T) {
	tiers := []discountdomain.Tier{tier(2, "0.10", 21000)}

	_, err := selectTier(tiers, 100)
	assert.ErrorIs(t, err, discountdomain.ErrMissingFloorTier)

	got, err := selectTier(tiers, 21000)
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(2), got.ID)
}

func TestSelectTier_PositiveRateAtZeroIsNotFloor(t *testing.T) {
	tiers := []discountdomain.Tier{
		tier(10, "0.20", 0),
		tier(11, "0.30", 200000),
	}
	for i := range tiers {
		tiers[i].Audience = discountdomain.AudienceContractor
	}

	_, err := selectTier(tiers, 5000)
	assert.ErrorIs(t, err, discountdomain.ErrMissingFloorTier)
}

func TestSelectTier_TieBreaksOnLowestID(t *testing.T) {
	tiers := []discountdomain.Tier{
		tier(1, "0", 0),
		tier(9, "0.15", 21000),
		tier(7, "0.10", 21000),
	}

	got, err := selectTier(tiers, 30000)
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(7), got.ID)
}

func TestSelectTier_IgnoresInputOrder(t *testing.T) {
	tiers := customerSchedule()
	reversed := make([]discountdomain.Tier, 0, len(tiers))
	for i := len(tiers) - 1; i >= 0; i-- {
		reversed = append(reversed, tiers[i])
	}

	a, err := selectTier(tiers, 250000)
	require.NoError(t, err)
	b, err := selectTier(reversed, 250000)
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)
}

func newResolverFixture(t *testing.T) (*gorm.DB, discountdomain.Resolver) {
	t.Helper()
	db := testutil.OpenDB(t, &discountdomain.Tier{})
	resolver := NewResolver(ResolverParams{Log: zap.NewNop(), Repo: repository.Provide()})
	return db, resolver
}

func seedTiers(t *testing.T, db *gorm.DB, tiers ...discountdomain.Tier) {
	t.Helper()
	repo := repository.Provide()
	for i := range tiers {
		require.NoError(t, repo.Insert(context.Background(), db, &tiers[i]))
	}
}

func TestResolver_Resolve(t *testing.T) {
	db, resolver := newResolverFixture(t)
	seedTiers(t, db, customerSchedule()...)

	inactive := tier(6, "0.50", 30000)
	inactive.IsActive = false
	seedTiers(t, db, inactive)

	got, err := resolver.Resolve(context.Background(), db, discountdomain.AudienceSalesPerson, 35000)
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(2), got.ID)

	_, err = resolver.Resolve(context.Background(), db, discountdomain.AudienceContractor, 35000)
	assert.ErrorIs(t, err, discountdomain.ErrMissingFloorTier)

	_, err = resolver.Resolve(context.Background(), db, discountdomain.AudienceSalesPerson, -1)
	assert.ErrorIs(t, err, discountdomain.ErrInvalidAmount)
}

func TestResolver_ActiveTier(t *testing.T) {
	db, resolver := newResolverFixture(t)
	seedTiers(t, db, customerSchedule()...)

	contractor := tier(20, "0.20", 0)
	contractor.Audience = discountdomain.AudienceContractor
	retired := tier(21, "0.25", 50000)
	retired.IsActive = false
	seedTiers(t, db, contractor, retired)

	got, err := resolver.ActiveTier(context.Background(), db, discountdomain.AudienceSalesPerson, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(42000), got.Threshold)

	_, err = resolver.ActiveTier(context.Background(), db, discountdomain.AudienceSalesPerson, 20)
	assert.ErrorIs(t, err, discountdomain.ErrInvalidTierReference)

	_, err = resolver.ActiveTier(context.Background(), db, discountdomain.AudienceSalesPerson, 21)
	assert.ErrorIs(t, err, discountdomain.ErrInvalidTierReference)

	_, err = resolver.ActiveTier(context.Background(), db, discountdomain.AudienceSalesPerson, 999)
	assert.ErrorIs(t, err, discountdomain.ErrInvalidTierReference)

	historical, err := resolver.Tier(context.Background(), db, 21)
	require.NoError(t, err)
	assert.False(t, historical.IsActive)
}
