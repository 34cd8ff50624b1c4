package seed

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	discountdomain "github.com/smallbiznis/salesinvoice/internal/discount/domain"
	taxdomain "github.com/smallbiznis/salesinvoice/internal/tax/domain"
	"github.com/smallbiznis/salesinvoice/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEnsureDefaults(t *testing.T) {
	db := testutil.OpenDB(t, &discountdomain.Tier{}, &taxdomain.TaxRate{})
	node := testutil.NewNode(t)
	ctx := context.Background()

	require.NoError(t, EnsureDefaults(ctx, db, node, zap.NewNop()))
	require.NoError(t, EnsureDefaults(ctx, db, node, zap.NewNop()))

	var sales, contractor []discountdomain.Tier
	require.NoError(t, db.Where("audience = ?", discountdomain.AudienceSalesPerson).Order("threshold ASC").Find(&sales).Error)
	require.NoError(t, db.Where("audience = ?", discountdomain.AudienceContractor).Order("threshold ASC").Find(&contractor).Error)
	require.Len(t, sales, 5)
	require.Len(t, contractor, 4)
	assert.True(t, sales[0].IsFloor())
	assert.True(t, contractor[0].IsFloor())
	assert.Equal(t, int64(1), contractor[1].Threshold)
	assert.True(t, decimal.RequireFromString("0.20").Equal(contractor[1].Rate))

	var rates []taxdomain.TaxRate
	require.NoError(t, db.Find(&rates).Error)
	require.Len(t, rates, 1)
	assert.True(t, decimal.NewFromInt(10).Equal(rates[0].Rate))
}

func TestEnsureDefaults_LeavesExistingSchedule(t *testing.T) {
	db := testutil.OpenDB(t, &discountdomain.Tier{}, &taxdomain.TaxRate{})
	node := testutil.NewNode(t)

	require.NoError(t, db.Create(&discountdomain.Tier{
		ID: node.Generate(), Audience: discountdomain.AudienceSalesPerson, Rate: decimal.Zero, IsActive: false,
	}).Error)
	require.NoError(t, EnsureDefaults(context.Background(), db, node, zap.NewNop()))

	var count int64
	require.NoError(t, db.Model(&discountdomain.Tier{}).Where("audience = ?", discountdomain.AudienceSalesPerson).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
