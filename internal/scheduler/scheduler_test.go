package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/salesinvoice/internal/clock"
	"github.com/smallbiznis/salesinvoice/internal/config"
	invoicedomain "github.com/smallbiznis/salesinvoice/internal/invoice/domain"
	taxdomain "github.com/smallbiznis/salesinvoice/internal/tax/domain"
	"github.com/smallbiznis/salesinvoice/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeInvoiceService struct {
	invoicedomain.Service
	calls []string
	err   error
	// clock and took simulate a run that takes time.
	clock *clock.FakeClock
	took  time.Duration
}

func (f *fakeInvoiceService) GenerateBulk(ctx context.Context, req invoicedomain.BulkGenerateRequest) (*invoicedomain.BulkResult, error) {
	f.calls = append(f.calls, req.ClosingDate)
	if f.clock != nil {
		f.clock.Advance(f.took)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &invoicedomain.BulkResult{RunID: "run-" + req.ClosingDate, GeneratedCount: 2, SkippedCount: 1}, nil
}

type busyLocker struct{}

func (busyLocker) TryLock(context.Context, string, time.Duration) (string, bool, error) {
	return "", false, nil
}

func (busyLocker) Release(context.Context, string, string) error { return nil }

type fixture struct {
	db    *gorm.DB
	clock *clock.FakeClock
	svc   *fakeInvoiceService
	sched *Scheduler
}

func newFixture(t *testing.T, now time.Time, opts ...func(*Params)) *fixture {
	t.Helper()
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	db := testutil.OpenDB(t, &ClosingRun{})
	fake := clock.NewFakeClock(now)
	svc := &fakeInvoiceService{clock: fake}
	p := Params{
		DB:         db,
		Log:        zap.NewNop(),
		InvoiceSvc: svc,
		Settings:   config.NewStaticInvoiceSettings(config.DefaultInvoiceSettings()),
		Clock:      fake,
		Config:     Config{Location: tokyo},
	}
	for _, opt := range opts {
		opt(&p)
	}
	sched, err := New(p)
	require.NoError(t, err)
	return &fixture{db: db, clock: fake, svc: svc, sched: sched}
}

func TestRunOnce_ClosesEachPeriodOnce(t *testing.T) {
	f := newFixture(t, time.Date(2026, 1, 20, 1, 0, 0, 0, time.UTC))
	ctx := context.Background()

	require.NoError(t, f.sched.RunOnce(ctx))
	require.NoError(t, f.sched.RunOnce(ctx))
	assert.Equal(t, []string{"2025-12-20"}, f.svc.calls)

	run, err := findRun(ctx, f.db, "2025-12-20")
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, "run-2025-12-20", run.RunID)
	assert.Equal(t, 2, run.GeneratedCount)
	assert.Equal(t, 1, run.SkippedCount)

	// 2026-01-20 16:00 UTC is already the 21st in Tokyo.
	f.clock.Set(time.Date(2026, 1, 20, 16, 0, 0, 0, time.UTC))
	require.NoError(t, f.sched.RunOnce(ctx))
	assert.Equal(t, []string{"2025-12-20", "2026-01-20"}, f.svc.calls)
}

func TestRunOnce_RecordsStartAndFinish(t *testing.T) {
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	f := newFixture(t, start)
	f.svc.took = 3 * time.Minute
	ctx := context.Background()

	require.NoError(t, f.sched.RunOnce(ctx))

	run, err := findRun(ctx, f.db, "2026-01-20")
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.True(t, run.StartedAt.Equal(start))
	assert.True(t, run.FinishedAt.Equal(start.Add(3*time.Minute)))
}

func TestRunOnce_RetriesAfterFailure(t *testing.T) {
	f := newFixture(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	f.svc.err = taxdomain.ErrMissingTaxRate
	err := f.sched.RunOnce(ctx)
	assert.ErrorIs(t, err, taxdomain.ErrMissingTaxRate)

	run, err := findRun(ctx, f.db, "2026-01-20")
	require.NoError(t, err)
	assert.Nil(t, run)

	f.svc.err = nil
	require.NoError(t, f.sched.RunOnce(ctx))
	assert.Equal(t, []string{"2026-01-20", "2026-01-20"}, f.svc.calls)
}

func TestRunOnce_RecordsEmptyRoster(t *testing.T) {
	f := newFixture(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	f.svc.err = invoicedomain.ErrNoSalesPersons
	require.NoError(t, f.sched.RunOnce(ctx))
	require.NoError(t, f.sched.RunOnce(ctx))
	assert.Len(t, f.svc.calls, 1)
}

func TestRunOnce_SkipsWhenLockHeld(t *testing.T) {
	f := newFixture(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), func(p *Params) {
		p.Locker = busyLocker{}
	})

	require.NoError(t, f.sched.RunOnce(context.Background()))
	assert.Empty(t, f.svc.calls)
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(Params{Log: zap.NewNop()})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
