package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smallbiznis/salesinvoice/internal/clock"
	"github.com/smallbiznis/salesinvoice/internal/config"
	invoicedomain "github.com/smallbiznis/salesinvoice/internal/invoice/domain"
	"github.com/smallbiznis/salesinvoice/internal/lock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("scheduler: missing dependency")

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	InvoiceSvc invoicedomain.Service
	Settings   *config.InvoiceSettingsHolder
	Clock      clock.Clock
	Locker     lock.Locker
	Config     Config `optional:"true"`
}

// Scheduler bills each closed period once. A closing date is done when its
// run is recorded; regenerating later would undo manual discount overrides.
type Scheduler struct {
	db         *gorm.DB
	log        *zap.Logger
	cfg        Config
	clock      clock.Clock
	locker     lock.Locker
	invoiceSvc invoicedomain.Service
	settings   *config.InvoiceSettingsHolder
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.InvoiceSvc == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	locker := p.Locker
	if locker == nil {
		locker = lock.NoopLocker{}
	}
	return &Scheduler{
		db:         p.DB,
		log:        p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:        p.Config.withDefaults(),
		clock:      p.Clock,
		locker:     locker,
		invoiceSvc: p.InvoiceSvc,
		settings:   p.Settings,
	}, nil
}

// today is the business calendar date as a UTC midnight.
func (s *Scheduler) today() time.Time {
	year, month, day := s.clock.Now().In(s.cfg.Location).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// RunOnce closes the most recent period if nobody has yet.
func (s *Scheduler) RunOnce(parent context.Context) error {
	closing := invoicedomain.LastClosingDate(s.today(), s.settings.Get().PeriodStartDay)
	closingDate := closing.Format(invoicedomain.DateLayout)
	log := s.log.With(zap.String("closing_date", closingDate))

	done, err := findRun(parent, s.db, closingDate)
	if err != nil {
		return fmt.Errorf("close_period: %w", err)
	}
	if done != nil {
		return nil
	}

	key := "invoice:closing:" + closingDate
	token, ok, err := s.locker.TryLock(parent, key, s.cfg.JobTimeout)
	if err != nil {
		return fmt.Errorf("close_period: %w", err)
	}
	if !ok {
		log.Debug("closing already running elsewhere")
		return nil
	}
	defer func() {
		if err := s.locker.Release(context.WithoutCancel(parent), key, token); err != nil {
			log.Warn("closing lock release failed", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	// Another replica may have finished between the check and the lock.
	if done, err := findRun(ctx, s.db, closingDate); err != nil || done != nil {
		return err
	}

	start := s.clock.Now()
	log.Info("closing job started")

	run := &ClosingRun{ClosingDate: closingDate, StartedAt: start}
	result, err := s.invoiceSvc.GenerateBulk(ctx, invoicedomain.BulkGenerateRequest{ClosingDate: closingDate})
	switch {
	case errors.Is(err, invoicedomain.ErrNoSalesPersons):
		log.Info("no active sales persons to bill")
	case err != nil:
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warn("closing job timed out", zap.Duration("timeout", s.cfg.JobTimeout))
			return nil
		}
		return fmt.Errorf("close_period: %w", err)
	default:
		run.RunID = result.RunID
		run.GeneratedCount = result.GeneratedCount
		run.SkippedCount = result.SkippedCount
		run.FailedCount = result.FailedCount
	}

	run.FinishedAt = s.clock.Now()
	if err := insertRun(ctx, s.db, run); err != nil {
		return fmt.Errorf("close_period: record run: %w", err)
	}

	log.Info("closing job finished",
		zap.String("run_id", run.RunID),
		zap.Int("generated_count", run.GeneratedCount),
		zap.Int("skipped_count", run.SkippedCount),
		zap.Int("failed_count", run.FailedCount),
		zap.Duration("duration", run.FinishedAt.Sub(start)),
	)
	return nil
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
