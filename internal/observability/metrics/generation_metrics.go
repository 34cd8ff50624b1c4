package metrics

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// Generation outcomes.
const (
	OutcomeGenerated = "generated"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

// Failure reasons for store level errors. Domain reasons are supplied by callers.
const (
	ReasonDeadlineExceeded     = "deadline_exceeded"
	ReasonDBLockTimeout        = "db_lock_timeout"
	ReasonSerializationFailure = "serialization_failure"
	ReasonUniqueViolation      = "unique_violation"
	ReasonUnknown              = "unknown"
)

// GenerationMetrics tracks invoice generation runs per sales person and per batch.
type GenerationMetrics struct {
	runs        *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	batchSize   prometheus.Histogram
	adjustments *prometheus.CounterVec
}

// NewGenerationMetrics registers the collectors on registerer. A nil registerer
// falls back to the default registry.
func NewGenerationMetrics(registerer prometheus.Registerer, cfg Config) (*GenerationMetrics, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	constLabels := prometheus.Labels{
		"service": nonEmpty(cfg.ServiceName, "salesinvoice"),
		"env":     nonEmpty(cfg.Environment, "unknown"),
	}

	m := &GenerationMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "salesinvoice_generation_total",
			Help:        "Invoice generation attempts per sales person by outcome.",
			ConstLabels: constLabels,
		}, []string{"outcome", "reason"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "salesinvoice_generation_duration_seconds",
			Help:        "Duration of one sales person's invoice generation.",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"outcome"}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "salesinvoice_bulk_batch_size",
			Help:        "Number of sales persons considered by one bulk generation.",
			ConstLabels: constLabels,
			Buckets:     []float64{1, 5, 10, 25, 50, 100, 250},
		}),
		adjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "salesinvoice_adjustments_total",
			Help:        "Manual invoice adjustments by kind.",
			ConstLabels: constLabels,
		}, []string{"kind"}),
	}

	var err error
	if m.runs, err = register(registerer, m.runs); err != nil {
		return nil, err
	}
	if m.duration, err = register(registerer, m.duration); err != nil {
		return nil, err
	}
	if m.batchSize, err = register(registerer, m.batchSize); err != nil {
		return nil, err
	}
	if m.adjustments, err = register(registerer, m.adjustments); err != nil {
		return nil, err
	}
	return m, nil
}

// register reuses an identical collector that is already registered, so
// several fx apps in one process (tests) share the series.
func register[T prometheus.Collector](registerer prometheus.Registerer, c T) (T, error) {
	if err := registerer.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *GenerationMetrics) ObserveGeneration(outcome, reason string, elapsed time.Duration) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "none"
	}
	m.runs.WithLabelValues(outcome, reason).Inc()
	m.duration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (m *GenerationMetrics) ObserveBatch(size int) {
	if m == nil {
		return
	}
	m.batchSize.Observe(float64(size))
}

func (m *GenerationMetrics) IncAdjustment(kind string) {
	if m == nil {
		return
	}
	m.adjustments.WithLabelValues(strings.TrimSpace(kind)).Inc()
}

// ClassifyStoreReason maps storage and context errors to a low-cardinality reason.
func ClassifyStoreReason(err error) string {
	switch {
	case err == nil:
		return ReasonUnknown
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ReasonDeadlineExceeded
	case hasPGCode(err, "55P03"):
		return ReasonDBLockTimeout
	case hasPGCode(err, "40001"):
		return ReasonSerializationFailure
	case errors.Is(err, gorm.ErrDuplicatedKey), hasPGCode(err, "23505"):
		return ReasonUniqueViolation
	default:
		return ReasonUnknown
	}
}

func hasPGCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}

func nonEmpty(value, def string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return def
}
