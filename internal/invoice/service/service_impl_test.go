package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/salesinvoice/internal/config"
	notedomain "github.com/smallbiznis/salesinvoice/internal/deliverynote/domain"
	noterepository "github.com/smallbiznis/salesinvoice/internal/deliverynote/repository"
	discountdomain "github.com/smallbiznis/salesinvoice/internal/discount/domain"
	discountrepository "github.com/smallbiznis/salesinvoice/internal/discount/repository"
	discountservice "github.com/smallbiznis/salesinvoice/internal/discount/service"
	invoicedomain "github.com/smallbiznis/salesinvoice/internal/invoice/domain"
	"github.com/smallbiznis/salesinvoice/internal/invoice/repository"
	"github.com/smallbiznis/salesinvoice/internal/lock"
	masterdomain "github.com/smallbiznis/salesinvoice/internal/masterdata/domain"
	masterrepository "github.com/smallbiznis/salesinvoice/internal/masterdata/repository"
	taxdomain "github.com/smallbiznis/salesinvoice/internal/tax/domain"
	taxrepository "github.com/smallbiznis/salesinvoice/internal/tax/repository"
	taxservice "github.com/smallbiznis/salesinvoice/internal/tax/service"
	"github.com/smallbiznis/salesinvoice/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errInjected = errors.New("injected failure")

// failingRepo fails detail inserts or detail reads on demand.
type failingRepo struct {
	invoicedomain.Repository
	failDetails     bool
	failListDetails bool
}

func (r *failingRepo) ListDetails(ctx context.Context, db *gorm.DB, invoiceIDs []snowflake.ID) ([]invoicedomain.InvoiceDetail, error) {
	if r.failListDetails {
		return nil, errInjected
	}
	return r.Repository.ListDetails(ctx, db, invoiceIDs)
}

func (r *failingRepo) InsertDetails(ctx context.Context, db *gorm.DB, details []invoicedomain.InvoiceDetail) error {
	if r.failDetails {
		return errInjected
	}
	return r.Repository.InsertDetails(ctx, db, details)
}

type busyLocker struct{}

func (busyLocker) TryLock(context.Context, string, time.Duration) (string, bool, error) {
	return "", false, nil
}

func (busyLocker) Release(context.Context, string, string) error { return nil }

type fixture struct {
	db       *gorm.DB
	node     *snowflake.Node
	repo     *failingRepo
	settings config.InvoiceSettings
	svc      *Service

	sato, suzuki snowflake.ID
	quotaProd    snowflake.ID
	otherProd    snowflake.ID
	taxRate      snowflake.ID
	tiers        map[string]snowflake.ID
}

type line struct {
	product snowflake.ID
	qty     int64
	price   int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, config.DefaultInvoiceSettings())
}

func newFixtureWith(t *testing.T, settings config.InvoiceSettings) *fixture {
	t.Helper()
	db := testutil.OpenDB(t,
		&masterdomain.SalesPerson{},
		&masterdomain.Product{},
		&taxdomain.TaxRate{},
		&discountdomain.Tier{},
		&notedomain.Note{},
		&notedomain.Line{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceDetail{},
	)
	node := testutil.NewNode(t)
	now := time.Now().UTC()

	f := &fixture{db: db, node: node, settings: settings, tiers: map[string]snowflake.ID{}}
	f.sato = node.Generate()
	f.suzuki = node.Generate()
	require.NoError(t, db.Create(&[]masterdomain.SalesPerson{
		{ID: f.sato, Name: "Sato Hanako", IsActive: true, CreatedAt: now, UpdatedAt: now},
		{ID: f.suzuki, Name: "Suzuki Ichiro", IsActive: true, CreatedAt: now, UpdatedAt: now},
	}).Error)

	f.quotaProd = node.Generate()
	f.otherProd = node.Generate()
	require.NoError(t, db.Create(&[]masterdomain.Product{
		{ID: f.quotaProd, Name: "Shampoo", Price: 1000, QuotaTarget: true, IsActive: true, CreatedAt: now, UpdatedAt: now},
		{ID: f.otherProd, Name: "Comb", Price: 500, IsActive: true, CreatedAt: now, UpdatedAt: now},
	}).Error)

	f.taxRate = node.Generate()
	require.NoError(t, db.Create(&taxdomain.TaxRate{ID: f.taxRate, DisplayName: "10%", Rate: decimal.NewFromInt(10), IsActive: true, CreatedAt: now, UpdatedAt: now}).Error)

	schedule := []struct {
		key       string
		audience  discountdomain.Audience
		rate      string
		threshold int64
	}{
		{"sp0", discountdomain.AudienceSalesPerson, "0", 0},
		{"sp10", discountdomain.AudienceSalesPerson, "0.10", 21000},
		{"sp20", discountdomain.AudienceSalesPerson, "0.20", 42000},
		{"sp30", discountdomain.AudienceSalesPerson, "0.30", 200000},
		{"sp40", discountdomain.AudienceSalesPerson, "0.40", 400000},
		{"c0", discountdomain.AudienceContractor, "0", 0},
		{"c20", discountdomain.AudienceContractor, "0.20", 1},
	}
	for _, s := range schedule {
		id := node.Generate()
		f.tiers[s.key] = id
		require.NoError(t, db.Create(&discountdomain.Tier{
			ID: id, Audience: s.audience, Rate: decimal.RequireFromString(s.rate), Threshold: s.threshold,
			IsActive: true, CreatedAt: now, UpdatedAt: now,
		}).Error)
	}

	f.repo = &failingRepo{Repository: repository.Provide()}
	f.svc = f.newService(t, nil)
	return f
}

func (f *fixture) newService(t *testing.T, locker lock.Locker) *Service {
	t.Helper()
	return New(Params{
		DB:        f.db,
		Log:       zap.NewNop(),
		GenID:     f.node,
		Repo:      f.repo,
		Notes:     noterepository.Provide(),
		Master:    masterrepository.Provide(),
		Discounts: discountservice.NewResolver(discountservice.ResolverParams{Log: zap.NewNop(), Repo: discountrepository.Provide()}),
		Tax:       taxservice.NewResolver(taxservice.ResolverParams{Repository: taxrepository.NewRepository()}),
		Settings:  config.NewStaticInvoiceSettings(f.settings),
		Locker:    locker,
	}).(*Service)
}

// newServiceWithTaxBasis swaps the levy basis so the quota_total regression
// stays measurable.
func (f *fixture) newServiceWithTaxBasis(t *testing.T, basis invoicedomain.TaxBasis) *Service {
	t.Helper()
	svc := f.newService(t, nil)
	svc.taxBasis = basis
	return svc
}

func (f *fixture) addNote(t *testing.T, salesPerson snowflake.ID, day string, lines ...line) {
	t.Helper()
	deliveryDate, err := invoicedomain.ParseDate(day)
	require.NoError(t, err)
	now := time.Now().UTC()
	note := notedomain.Note{
		ID:            f.node.Generate(),
		SalesPersonID: salesPerson,
		TaxRateID:     f.taxRate,
		DeliveryDate:  deliveryDate,
		BillingDate:   deliveryDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	note.DeliveryNoteNumber = "DN-" + note.ID.String()
	require.NoError(t, f.db.Create(&note).Error)
	for _, l := range lines {
		require.NoError(t, f.db.Create(&notedomain.Line{
			ID: f.node.Generate(), DeliveryNoteID: note.ID, ProductID: l.product,
			Quantity: l.qty, UnitPrice: l.price, Amount: l.qty * l.price,
			CreatedAt: now, UpdatedAt: now,
		}).Error)
	}
}

func (f *fixture) generate(t *testing.T, salesPerson snowflake.ID) (*invoicedomain.InvoiceView, error) {
	t.Helper()
	return f.svc.Generate(context.Background(), invoicedomain.GenerateRequest{
		SalesPersonID: salesPerson.String(),
		StartDate:     "2025-12-21",
		EndDate:       "2026-01-20",
	})
}

func detailContents(details []invoicedomain.DetailView) []invoicedomain.DetailView {
	out := make([]invoicedomain.DetailView, 0, len(details))
	for _, d := range details {
		d.ID = ""
		out = append(out, d)
	}
	return out
}

func TestGenerate_Scenario(t *testing.T) {
	f := newFixture(t)
	f.addNote(t, f.sato, "2026-01-05", line{f.quotaProd, 2, 1000}, line{f.otherProd, 1, 500})
	f.addNote(t, f.sato, "2026-01-20", line{f.quotaProd, 1, 1000}, line{f.otherProd, 1, 500})
	// Outside the period.
	f.addNote(t, f.sato, "2026-01-21", line{f.quotaProd, 50, 1000})

	inv, err := f.generate(t, f.sato)
	require.NoError(t, err)

	assert.Equal(t, int64(3000), inv.QuotaSubtotal)
	assert.Equal(t, int64(1000), inv.NonQuotaSubtotal)
	assert.Equal(t, int64(4000), inv.TotalExTax)
	assert.Equal(t, int64(400), inv.Tax)
	assert.Equal(t, int64(4400), inv.TotalIncTax)
	assert.Equal(t, f.tiers["sp0"].String(), inv.DiscountRateID)
	assert.True(t, inv.DiscountRate.IsZero())

	assert.Equal(t, "Sato Hanako", inv.SalesPersonName)
	assert.Equal(t, discountdomain.AudienceSalesPerson, inv.Audience)
	assert.Equal(t, config.DefaultIssuerNumber, inv.InvoiceNumber)
	assert.Equal(t, "2026-01-20", inv.InvoiceDate)
	assert.Equal(t, "2026-01-25", inv.ReceiptDate)

	require.Len(t, inv.Details, 2)
	byProduct := map[string]invoicedomain.DetailView{}
	for _, d := range inv.Details {
		byProduct[d.ProductID] = d
	}
	assert.Equal(t, int64(3), byProduct[f.quotaProd.String()].TotalQuantity)
	assert.Equal(t, "Shampoo", byProduct[f.quotaProd.String()].ProductName)
	assert.True(t, byProduct[f.quotaProd.String()].QuotaTarget)
	assert.Equal(t, int64(1000), byProduct[f.otherProd.String()].Amount)
}

func TestGenerate_PicksTierOnCombinedSubtotal(t *testing.T) {
	f := newFixture(t)
	// 41000 quota + 1000 non-quota reaches the 42000 threshold.
	f.addNote(t, f.sato, "2026-01-05", line{f.quotaProd, 41, 1000}, line{f.otherProd, 2, 500})

	inv, err := f.generate(t, f.sato)
	require.NoError(t, err)
	assert.Equal(t, f.tiers["sp20"].String(), inv.DiscountRateID)
	assert.True(t, decimal.RequireFromString("0.20").Equal(inv.DiscountRate))
	assert.Equal(t, int64(42000), inv.DiscountThreshold)
	assert.Equal(t, int64(8200), inv.QuotaDiscount)
	assert.Equal(t, int64(200), inv.NonQuotaDiscount)
	assert.Equal(t, int64(33600), inv.TotalExTax)
	assert.Equal(t, int64(3360), inv.Tax)
}

func TestGenerate_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.addNote(t, f.sato, "2026-01-05", line{f.quotaProd, 30, 1000}, line{f.otherProd, 3, 500})

	first, err := f.generate(t, f.sato)
	require.NoError(t, err)
	second, err := f.generate(t, f.sato)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Totals, second.Totals)
	assert.Equal(t, first.DiscountRateID, second.DiscountRateID)
	assert.Equal(t, detailContents(first.Details), detailContents(second.Details))

	var invoices, details int64
	require.NoError(t, f.db.Model(&invoicedomain.Invoice{}).Count(&invoices).Error)
	require.NoError(t, f.db.Model(&invoicedomain.InvoiceDetail{}).Count(&details).Error)
	assert.Equal(t, int64(1), invoices)
	assert.Equal(t, int64(2), details)
}

func TestGenerate_RegenerationKeepsUserFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addNote(t, f.sato, "2026-01-05", line{f.quotaProd, 3, 1000})

	inv, err := f.generate(t, f.sato)
	require.NoError(t, err)

	note := "paid in cash"
	carveOut := int64(600)
	_, err = f.svc.Patch(ctx, invoicedomain.PatchRequest{ID: inv.ID, Note: &note, NonDiscountableAmount: &carveOut})
	require.NoError(t, err)

	f.addNote(t, f.sato, "2026-01-06", line{f.otherProd, 2, 500})
	regen, err := f.generate(t, f.sato)
	require.NoError(t, err)

	require.NotNil(t, regen.Note)
	assert.Equal(t, note, *regen.Note)
	assert.Equal(t, carveOut, regen.NonDiscountable)
	assert.Equal(t, int64(1000), regen.NonQuotaSubtotal)
	assert.Equal(t, int64(4600), regen.TotalExTax)
	assert.Equal(t, int64(460), regen.Tax)
}

func TestGenerate_AtomicOnDetailFailure(t *testing.T) {
	f := newFixture(t)
	f.addNote(t, f.sato, "2026-01-05", line{f.quotaProd, 3, 1000})

	before, err := f.generate(t, f.sato)
	require.NoError(t, err)

	f.addNote(t, f.sato, "2026-01-06", line{f.quotaProd, 40, 1000})
	f.repo.failDetails = true
	_, err = f.generate(t, f.sato)
	require.ErrorIs(t, err, errInjected)
	f.repo.failDetails = false

	after, err := f.svc.Get(context.Background(), before.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Totals, after.Totals)
	assert.Equal(t, before.DiscountRateID, after.DiscountRateID)
	assert.Equal(t, detailContents(before.Details), detailContents(after.Details))
}

func TestGenerate_FirstInsertRollsBack(t *testing.T) {
	f := newFixture(t)
	f.addNote(t, f.sato, "2026-01-05", line{f.quotaProd, 3, 1000})

	f.repo.failDetails = true
	_, err := f.generate(t, f.sato)
	require.ErrorIs(t, err, errInjected)

	var count int64
	require.NoError(t, f.db.Model(&invoicedomain.Invoice{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGenerate_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.generate(t, f.suzuki)
	assert.ErrorIs(t, err, invoicedomain.ErrNoDeliveryNotes)

	_, err = f.generate(t, f.node.Generate())
	assert.ErrorIs(t, err, invoicedomain.ErrSalesPersonNotFound)

	_, err = f.svc.Generate(ctx, invoicedomain.GenerateRequest{SalesPersonID: "x", StartDate: "2025-12-21", EndDate: "2026-01-20"})
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidID)

	_, err = f.svc.Generate(ctx, invoicedomain.GenerateRequest{SalesPersonID: f.sato.String(), StartDate: "2026-01-20", EndDate: "2025-12-21"})
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidPeriod)

	f.addNote(t, f.sato, "2026-01-05", line{f.quotaProd, 1, 1000}, line{f.quotaProd, 1, 900})
	_, err = f.generate(t, f.sato)
	assert.ErrorIs(t, err, invoicedomain.ErrNonUniformUnitPrice)
}

func TestGenerate_MissingFloorTier(t *testing.T) {
	f := newFixture(t)
	f.addNote(t, f.sato, "2026-01-05", line{f.quotaProd, 3, 1000})
	require.NoError(t, f.db.Model(&discountdomain.Tier{}).Where("id = ?", f.tiers["sp0"]).Update("is_active", false).Error)

	_, err := f.generate(t, f.sato)
	assert.ErrorIs(t, err, discountdomain.ErrMissingFloorTier)
	assert.Contains(t, err.Error(), string(discountdomain.AudienceSalesPerson))
}

func TestGenerate_LockBusy(t *testing.T) {
	f := newFixture(t)
	f.addNote(t, f.sato, "2026-01-05", line{f.quotaProd, 3, 1000})
	f.svc = f.newService(t, busyLocker{})

	_, err := f.generate(t, f.sato)
	assert.ErrorIs(t, err, invoicedomain.ErrGenerationInProgress)
}

func TestGenerate_TaxesTotalExTax(t *testing.T) {
	f := newFixture(t)
	f.addNote(t, f.sato, "2026-01-05", line{f.quotaProd, 3, 1000}, line{f.otherProd, 2, 500})

	inv, err := f.generate(t, f.sato)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), inv.TotalExTax)
	assert.Equal(t, int64(400), inv.Tax)
	assert.Equal(t, int64(4400), inv.TotalIncTax)
}

func TestGenerate_QuotaTotalTaxBasis(t *testing.T) {
	f := newFixture(t)
	f.svc = f.newServiceWithTaxBasis(t, invoicedomain.TaxBasisQuotaTotal)
	f.addNote(t, f.sato, "2026-01-05", line{f.quotaProd, 3, 1000}, line{f.otherProd, 2, 500})

	inv, err := f.generate(t, f.sato)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), inv.TotalExTax)
	assert.Equal(t, int64(300), inv.Tax)
	assert.Equal(t, int64(4300), inv.TotalIncTax)
}

func TestOverrideDiscount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addNote(t, f.sato, "2026-01-05", line{f.quotaProd, 3, 1000}, line{f.otherProd, 2, 500})
	inv, err := f.generate(t, f.sato)
	require.NoError(t, err)

	_, err = f.svc.OverrideDiscount(ctx, invoicedomain.OverrideDiscountRequest{InvoiceID: inv.ID, DiscountRateID: f.tiers["c20"].String()})
	assert.ErrorIs(t, err, discountdomain.ErrInvalidTierReference)

	_, err = f.svc.OverrideDiscount(ctx, invoicedomain.OverrideDiscountRequest{InvoiceID: inv.ID, DiscountRateID: "nope"})
	assert.ErrorIs(t, err, discountdomain.ErrInvalidTierReference)

	_, err = f.svc.OverrideDiscount(ctx, invoicedomain.OverrideDiscountRequest{InvoiceID: f.node.Generate().String(), DiscountRateID: f.tiers["sp10"].String()})
	assert.ErrorIs(t, err, invoicedomain.ErrInvoiceNotFound)

	got, err := f.svc.OverrideDiscount(ctx, invoicedomain.OverrideDiscountRequest{InvoiceID: inv.ID, DiscountRateID: f.tiers["sp10"].String()})
	require.NoError(t, err)
	assert.Equal(t, f.tiers["sp10"].String(), got.DiscountRateID)
	assert.Equal(t, int64(300), got.QuotaDiscount)
	assert.Equal(t, int64(100), got.NonQuotaDiscount)
	assert.Equal(t, int64(3600), got.TotalExTax)
	assert.Equal(t, int64(360), got.Tax)
	assert.Equal(t, int64(3960), got.TotalIncTax)
	assert.Equal(t, detailContents(inv.Details), detailContents(got.Details))

	require.NoError(t, f.db.Model(&discountdomain.Tier{}).Where("id = ?", f.tiers["sp30"]).Update("is_active", false).Error)
	_, err = f.svc.OverrideDiscount(ctx, invoicedomain.OverrideDiscountRequest{InvoiceID: inv.ID, DiscountRateID: f.tiers["sp30"].String()})
	assert.ErrorIs(t, err, discountdomain.ErrInvalidTierReference)
}

func TestPatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addNote(t, f.sato, "2026-01-05", line{f.quotaProd, 3, 1000}, line{f.otherProd, 2, 500})
	inv, err := f.generate(t, f.sato)
	require.NoError(t, err)

	_, err = f.svc.Patch(ctx, invoicedomain.PatchRequest{ID: inv.ID})
	assert.ErrorIs(t, err, invoicedomain.ErrEmptyPatch)

	long := strings.Repeat("あ", invoicedomain.NoteMaxLength+1)
	_, err = f.svc.Patch(ctx, invoicedomain.PatchRequest{ID: inv.ID, Note: &long})
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidNote)

	negative := int64(-1)
	_, err = f.svc.Patch(ctx, invoicedomain.PatchRequest{ID: inv.ID, NonDiscountableAmount: &negative})
	assert.ErrorIs(t, err, invoicedomain.ErrNegativeAmount)

	contractorTier := f.tiers["c20"].String()
	_, err = f.svc.Patch(ctx, invoicedomain.PatchRequest{ID: inv.ID, DiscountRateID: &contractorTier})
	assert.ErrorIs(t, err, discountdomain.ErrInvalidTierReference)

	t.Run("note only keeps amounts", func(t *testing.T) {
		// A tax change after generation must not leak into a note-only patch.
		require.NoError(t, f.db.Model(&taxdomain.TaxRate{}).Where("id = ?", f.taxRate).Update("rate", decimal.NewFromInt(8)).Error)
		t.Cleanup(func() {
			require.NoError(t, f.db.Model(&taxdomain.TaxRate{}).Where("id = ?", f.taxRate).Update("rate", decimal.NewFromInt(10)).Error)
		})

		note := strings.Repeat("あ", invoicedomain.NoteMaxLength)
		got, err := f.svc.Patch(ctx, invoicedomain.PatchRequest{ID: inv.ID, Note: &note})
		require.NoError(t, err)
		require.NotNil(t, got.Note)
		assert.Equal(t, note, *got.Note)
		assert.Equal(t, inv.Totals, got.Totals)
	})

	t.Run("carve-out recomputes", func(t *testing.T) {
		carveOut := int64(1000)
		got, err := f.svc.Patch(ctx, invoicedomain.PatchRequest{ID: inv.ID, NonDiscountableAmount: &carveOut})
		require.NoError(t, err)
		assert.Equal(t, int64(5000), got.TotalExTax)
		assert.Equal(t, int64(500), got.Tax)
		assert.Equal(t, inv.DiscountRateID, got.DiscountRateID)
	})

	t.Run("discount and blank note", func(t *testing.T) {
		tier := f.tiers["sp20"].String()
		blank := "  "
		got, err := f.svc.Patch(ctx, invoicedomain.PatchRequest{ID: inv.ID, DiscountRateID: &tier, Note: &blank})
		require.NoError(t, err)
		assert.Nil(t, got.Note)
		assert.Equal(t, int64(600), got.QuotaDiscount)
		assert.Equal(t, int64(200), got.NonQuotaDiscount)
		assert.Equal(t, int64(4200), got.TotalExTax)
	})
}

func TestGenerateBulk(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addNote(t, f.sato, "2025-12-21", line{f.quotaProd, 3, 1000}, line{f.otherProd, 2, 500})
	f.addNote(t, f.sato, "2025-12-20", line{f.quotaProd, 99, 1000})

	res, err := f.svc.GenerateBulk(ctx, invoicedomain.BulkGenerateRequest{ClosingDate: "2026-01-15"})
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, "2025-12-21", res.Period.StartDate)
	assert.Equal(t, "2026-01-15", res.Period.EndDate)
	assert.Equal(t, 1, res.GeneratedCount)
	assert.Equal(t, 1, res.SkippedCount)
	assert.Equal(t, 0, res.FailedCount)
	require.Len(t, res.Invoices, 1)
	assert.Equal(t, int64(4400), res.Invoices[0].TotalIncTax)
	require.Len(t, res.SkippedPersons, 1)
	assert.Equal(t, f.suzuki.String(), res.SkippedPersons[0].ID)
	assert.Equal(t, "Suzuki Ichiro", res.SkippedPersons[0].Name)
	assert.Equal(t, invoicedomain.ErrNoDeliveryNotes.Error(), res.SkippedPersons[0].Reason)
	assert.Empty(t, res.FailedPersons)
}

func TestGenerateBulk_CollectsFailures(t *testing.T) {
	f := newFixture(t)
	f.addNote(t, f.sato, "2026-01-22", line{f.quotaProd, 1, 1000}, line{f.quotaProd, 1, 900})
	f.addNote(t, f.suzuki, "2026-01-22", line{f.otherProd, 1, 500})

	res, err := f.svc.GenerateBulk(context.Background(), invoicedomain.BulkGenerateRequest{ClosingDate: "2026-01-25"})
	require.NoError(t, err)
	assert.Equal(t, "2026-01-21", res.Period.StartDate)
	assert.Equal(t, 1, res.GeneratedCount)
	assert.Equal(t, 1, res.FailedCount)
	require.Len(t, res.FailedPersons, 1)
	assert.Equal(t, f.sato.String(), res.FailedPersons[0].ID)
	assert.Contains(t, res.FailedPersons[0].Reason, invoicedomain.ErrNonUniformUnitPrice.Error())
}

func TestGenerateBulk_Filters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addNote(t, f.sato, "2026-01-05", line{f.quotaProd, 1, 1000})
	f.addNote(t, f.suzuki, "2026-01-05", line{f.quotaProd, 1, 1000})

	res, err := f.svc.GenerateBulk(ctx, invoicedomain.BulkGenerateRequest{ClosingDate: "2026-01-20", SalesPersonIDs: []string{f.suzuki.String()}})
	require.NoError(t, err)
	require.Len(t, res.Invoices, 1)
	assert.Equal(t, f.suzuki.String(), res.Invoices[0].SalesPersonID)

	_, err = f.svc.GenerateBulk(ctx, invoicedomain.BulkGenerateRequest{ClosingDate: "2026-01-20", SalesPersonIDs: []string{f.node.Generate().String()}})
	assert.ErrorIs(t, err, invoicedomain.ErrNoSalesPersons)

	_, err = f.svc.GenerateBulk(ctx, invoicedomain.BulkGenerateRequest{ClosingDate: "20260120"})
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidDate)
}

func TestGenerateBulk_ReportsUnknownSalesPersons(t *testing.T) {
	f := newFixture(t)
	f.addNote(t, f.sato, "2026-01-05", line{f.quotaProd, 1, 1000})
	ghost := f.node.Generate()
	require.NoError(t, f.db.Model(&masterdomain.SalesPerson{}).Where("id = ?", f.suzuki).Update("is_active", false).Error)

	res, err := f.svc.GenerateBulk(context.Background(), invoicedomain.BulkGenerateRequest{
		ClosingDate:    "2026-01-20",
		SalesPersonIDs: []string{f.sato.String(), ghost.String(), f.suzuki.String(), ghost.String()},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.GeneratedCount)
	assert.Equal(t, 0, res.SkippedCount)
	assert.Equal(t, 2, res.FailedCount)
	require.Len(t, res.FailedPersons, 2)
	failed := map[string]string{}
	for _, p := range res.FailedPersons {
		failed[p.ID] = p.Reason
	}
	assert.Equal(t, invoicedomain.ErrSalesPersonNotFound.Error(), failed[ghost.String()])
	assert.Equal(t, invoicedomain.ErrSalesPersonNotFound.Error(), failed[f.suzuki.String()])
}

func TestGenerateBulk_KeepsCountsWhenViewsFail(t *testing.T) {
	f := newFixture(t)
	f.addNote(t, f.sato, "2026-01-05", line{f.quotaProd, 1, 1000})
	f.repo.failListDetails = true

	res, err := f.svc.GenerateBulk(context.Background(), invoicedomain.BulkGenerateRequest{ClosingDate: "2026-01-20"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 1, res.GeneratedCount)
	assert.Equal(t, 1, res.SkippedCount)
	assert.Empty(t, res.Invoices)

	var count int64
	require.NoError(t, f.db.Model(&invoicedomain.Invoice{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGenerateBulk_AbortsWithoutTaxRate(t *testing.T) {
	f := newFixture(t)
	f.addNote(t, f.sato, "2026-01-05", line{f.quotaProd, 1, 1000})
	require.NoError(t, f.db.Model(&taxdomain.TaxRate{}).Where("id = ?", f.taxRate).Update("is_active", false).Error)

	_, err := f.svc.GenerateBulk(context.Background(), invoicedomain.BulkGenerateRequest{ClosingDate: "2026-01-20"})
	assert.ErrorIs(t, err, taxdomain.ErrMissingTaxRate)

	var count int64
	require.NoError(t, f.db.Model(&invoicedomain.Invoice{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListGetDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addNote(t, f.sato, "2026-01-05", line{f.quotaProd, 1, 1000})
	f.addNote(t, f.suzuki, "2026-01-05", line{f.otherProd, 1, 500})

	first, err := f.generate(t, f.sato)
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	second, err := f.generate(t, f.suzuki)
	require.NoError(t, err)

	req := invoicedomain.ListRequest{}
	req.PageSize = 1
	page, err := f.svc.List(ctx, req)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, second.ID, page.Items[0].ID)
	require.NotEmpty(t, page.PageInfo.NextPageToken)

	req.PageToken = page.PageInfo.NextPageToken
	page, err = f.svc.List(ctx, req)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, first.ID, page.Items[0].ID)

	filtered, err := f.svc.List(ctx, invoicedomain.ListRequest{SalesPersonID: f.suzuki.String()})
	require.NoError(t, err)
	require.Len(t, filtered.Items, 1)
	assert.Equal(t, second.ID, filtered.Items[0].ID)

	require.NoError(t, f.svc.Delete(ctx, first.ID))
	_, err = f.svc.Get(ctx, first.ID)
	assert.ErrorIs(t, err, invoicedomain.ErrInvoiceNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, first.ID), invoicedomain.ErrInvoiceNotFound)

	var details int64
	require.NoError(t, f.db.Model(&invoicedomain.InvoiceDetail{}).Where("invoice_id = ?", first.ID).Count(&details).Error)
	assert.Zero(t, details)
}

func TestDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addNote(t, f.sato, "2026-01-05", line{f.quotaProd, 41, 1000}, line{f.otherProd, 2, 500})
	inv, err := f.generate(t, f.sato)
	require.NoError(t, err)

	// Retiring a product must not change issued documents.
	require.NoError(t, f.db.Model(&masterdomain.Product{}).Where("id = ?", f.quotaProd).Update("is_active", false).Error)

	doc, err := f.svc.Document(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "invoice-sato-hanako-2025-12-21-2026-01-20.pdf", doc.FileName)
	assert.Equal(t, config.DefaultIssuerNumber, doc.Issuer)
	assert.Equal(t, "20%", doc.Labels.DiscountRate)
	assert.Equal(t, "41,000", doc.Labels.QuotaSubtotal)
	assert.Equal(t, "36,960", doc.Labels.TotalIncTax)
	for _, d := range doc.Invoice.Details {
		assert.NotEmpty(t, d.ProductName)
		assert.NotEmpty(t, doc.Labels.DetailAmounts[d.ID])
	}

	html, err := f.svc.RenderHTML(ctx, inv.ID)
	require.NoError(t, err)
	assert.Contains(t, html, "Sato Hanako")
	assert.Contains(t, html, "36,960")
}
