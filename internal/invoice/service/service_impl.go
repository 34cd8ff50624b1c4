package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/salesinvoice/internal/config"
	notedomain "github.com/smallbiznis/salesinvoice/internal/deliverynote/domain"
	discountdomain "github.com/smallbiznis/salesinvoice/internal/discount/domain"
	invoicedomain "github.com/smallbiznis/salesinvoice/internal/invoice/domain"
	"github.com/smallbiznis/salesinvoice/internal/invoice/render"
	"github.com/smallbiznis/salesinvoice/internal/lock"
	masterdomain "github.com/smallbiznis/salesinvoice/internal/masterdata/domain"
	"github.com/smallbiznis/salesinvoice/internal/observability/metrics"
	taxdomain "github.com/smallbiznis/salesinvoice/internal/tax/domain"
	dbpkg "github.com/smallbiznis/salesinvoice/pkg/db"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultLockTTL = 30 * time.Second

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Cfg        config.Config
	Repo       invoicedomain.Repository
	Notes      notedomain.Repository
	Master     masterdomain.Repository
	Discounts  discountdomain.Resolver
	Tax        taxdomain.TaxResolver
	Settings   *config.InvoiceSettingsHolder
	Locker     lock.Locker
	Renderer   render.Renderer
	GenMetrics *metrics.GenerationMetrics `optional:"true"`
	Metrics    *metrics.Metrics           `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       invoicedomain.Repository
	aggregator *Aggregator
	master     masterdomain.Repository
	discounts  discountdomain.Resolver
	tax        taxdomain.TaxResolver
	settings   *config.InvoiceSettingsHolder
	locker     lock.Locker
	lockTTL    time.Duration
	taxBasis   invoicedomain.TaxBasis
	renderer   render.Renderer
	genMetrics *metrics.GenerationMetrics
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

func New(p Params) invoicedomain.Service {
	ttl := p.Cfg.GenerationLockTTL
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	locker := p.Locker
	if locker == nil {
		locker = lock.NoopLocker{}
	}
	renderer := p.Renderer
	if renderer == nil {
		renderer = render.NewRenderer()
	}
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("invoice.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		aggregator: NewAggregator(p.Notes),
		master:     p.Master,
		discounts:  p.Discounts,
		tax:        p.Tax,
		settings:   p.Settings,
		locker:     locker,
		lockTTL:    ttl,
		taxBasis:   invoicedomain.TaxBasisTotalExTax,
		renderer:   renderer,
		genMetrics: p.GenMetrics,
		metrics:    p.Metrics,
		tracer:     otel.Tracer("salesinvoice/invoice"),
	}
}

func (s *Service) Generate(ctx context.Context, req invoicedomain.GenerateRequest) (*invoicedomain.InvoiceView, error) {
	salesPersonID, err := parseID(req.SalesPersonID)
	if err != nil {
		return nil, err
	}
	period, err := invoicedomain.ParsePeriod(strings.TrimSpace(req.StartDate), strings.TrimSpace(req.EndDate))
	if err != nil {
		return nil, err
	}

	invoice, err := s.generate(ctx, salesPersonID, period)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, s.db.WithContext(ctx), invoice)
}

// generate builds or rebuilds the invoice of one sales person for period.
func (s *Service) generate(ctx context.Context, salesPersonID snowflake.ID, period invoicedomain.Period) (invoice *invoicedomain.Invoice, err error) {
	ctx, span := s.tracer.Start(ctx, "invoice.generate", trace.WithAttributes(
		attribute.String("sales_person_id", salesPersonID.String()),
		attribute.String("period", period.String()),
	))
	started := time.Now()
	defer func() {
		outcome, reason := classify(err)
		s.genMetrics.ObserveGeneration(outcome, reason, time.Since(started))
		if outcome == metrics.OutcomeFailed {
			span.RecordError(err)
			span.SetStatus(codes.Error, reason)
		}
		span.End()
	}()

	key := lockKey(salesPersonID, period)
	token, ok, err := s.locker.TryLock(ctx, key, s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire generation lock: %w", err)
	}
	if !ok {
		return nil, invoicedomain.ErrGenerationInProgress
	}
	defer func() {
		if relErr := s.locker.Release(context.WithoutCancel(ctx), key, token); relErr != nil {
			s.log.Warn("release generation lock", zap.String("key", key), zap.Error(relErr))
		}
	}()

	invoice, err = s.upsert(ctx, salesPersonID, period)
	if dbpkg.IsDuplicateKeyErr(err) {
		// A concurrent writer inserted the same key first; the retry finds it and updates.
		s.log.Info("invoice key taken concurrently, retrying as update",
			zap.String("sales_person_id", salesPersonID.String()),
			zap.String("period", period.String()),
		)
		invoice, err = s.upsert(ctx, salesPersonID, period)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("invoice generated",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("sales_person_id", salesPersonID.String()),
		zap.String("period", period.String()),
		zap.Int64("total_amount_inc_tax", invoice.TotalAmountIncTax),
	)
	return invoice, nil
}

func (s *Service) upsert(ctx context.Context, salesPersonID snowflake.ID, period invoicedomain.Period) (*invoicedomain.Invoice, error) {
	settings := s.settings.Get()
	var invoice *invoicedomain.Invoice

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sp, err := s.master.LockSalesPerson(ctx, tx, salesPersonID)
		if err != nil {
			return err
		}
		if sp == nil {
			return invoicedomain.ErrSalesPersonNotFound
		}

		agg, err := s.aggregator.Aggregate(ctx, tx, salesPersonID, period)
		if err != nil {
			return err
		}

		existing, err := s.repo.FindByKey(ctx, tx, salesPersonID, period.Start, period.End)
		if err != nil {
			return err
		}

		tier, err := s.discounts.Resolve(ctx, tx, discountdomain.AudienceSalesPerson, agg.Subtotal())
		if err != nil {
			return err
		}
		rate, err := s.tax.ActiveRate(ctx, tx)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		invoice = existing
		if invoice == nil {
			invoice = &invoicedomain.Invoice{
				ID:            s.genID.Generate(),
				SalesPersonID: salesPersonID,
				StartDate:     period.Start,
				EndDate:       period.End,
				Audience:      discountdomain.AudienceSalesPerson,
				InvoiceNumber: settings.IssuerNumber,
				CreatedAt:     now,
			}
		}

		totals, err := Calculate(invoicedomain.CalculationInput{
			QuotaSubtotal:         agg.QuotaSubtotal,
			NonQuotaSubtotal:      agg.NonQuotaSubtotal,
			NonDiscountableAmount: invoice.NonDiscountableAmount,
			DiscountRate:          tier.Rate,
			TaxRate:               rate.Fraction(),
			TaxBasis:              s.taxBasis,
		})
		if err != nil {
			return err
		}

		invoice.DiscountTierID = tier.ID
		invoice.InvoiceDate = period.End
		invoice.ReceiptDate = period.ReceiptDate(settings.ReceiptDay)
		invoice.ApplyTotals(totals)
		invoice.UpdatedAt = now

		if existing == nil {
			if err := s.repo.Insert(ctx, tx, invoice); err != nil {
				return err
			}
		} else {
			if err := s.repo.Update(ctx, tx, invoice); err != nil {
				return err
			}
			if err := s.repo.DeleteDetails(ctx, tx, invoice.ID); err != nil {
				return err
			}
		}
		return s.repo.InsertDetails(ctx, tx, s.buildDetails(invoice.ID, agg.Rows, now))
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *Service) buildDetails(invoiceID snowflake.ID, rows []invoicedomain.AggregateRow, now time.Time) []invoicedomain.InvoiceDetail {
	details := make([]invoicedomain.InvoiceDetail, 0, len(rows))
	for _, row := range rows {
		details = append(details, invoicedomain.InvoiceDetail{
			ID:                s.genID.Generate(),
			InvoiceID:         invoiceID,
			ProductID:         row.ProductID,
			TotalQuantity:     row.TotalQuantity,
			UnitPrice:         row.UnitPrice,
			Amount:            row.Amount,
			QuotaTarget:       row.QuotaTarget,
			DiscountExclusion: row.DiscountExclusion,
			CreatedAt:         now,
		})
	}
	return details
}

func lockKey(salesPersonID snowflake.ID, period invoicedomain.Period) string {
	return fmt.Sprintf("invoice:generate:%s:%s:%s",
		salesPersonID, period.Start.Format(invoicedomain.DateLayout), period.End.Format(invoicedomain.DateLayout))
}

// domainReasons are reported by their own name instead of a store reason.
var domainReasons = []error{
	invoicedomain.ErrSalesPersonNotFound,
	invoicedomain.ErrNonUniformUnitPrice,
	invoicedomain.ErrNegativeAmount,
	invoicedomain.ErrGenerationInProgress,
	discountdomain.ErrMissingFloorTier,
	taxdomain.ErrMissingTaxRate,
}

func classify(err error) (outcome, reason string) {
	if err == nil {
		return metrics.OutcomeGenerated, ""
	}
	if errors.Is(err, invoicedomain.ErrNoDeliveryNotes) {
		return metrics.OutcomeSkipped, invoicedomain.ErrNoDeliveryNotes.Error()
	}
	for _, known := range domainReasons {
		if errors.Is(err, known) {
			return metrics.OutcomeFailed, known.Error()
		}
	}
	return metrics.OutcomeFailed, metrics.ClassifyStoreReason(err)
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, invoicedomain.ErrInvalidID
	}
	return id, nil
}
