package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes OTLP instruments for document writes and request throttling.
type Metrics struct {
	deliveryNotes metric.Int64Counter
	documents     metric.Int64Counter
	rateLimited   metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(15*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return provider.Shutdown(ctx)
			},
		})
	}

	log.Info("metrics initialized",
		zap.String("endpoint", cfg.ExporterEndpoint),
		zap.String("protocol", cfg.ExporterProtocol),
	)
	return provider, nil
}

func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	meter := provider.Meter(nonEmpty(cfg.ServiceName, "salesinvoice"))

	deliveryNotes, err := meter.Int64Counter("salesinvoice_delivery_notes_total")
	if err != nil {
		return nil, err
	}
	documents, err := meter.Int64Counter("salesinvoice_documents_total")
	if err != nil {
		return nil, err
	}

	rateLimited, err := meter.Int64Counter("salesinvoice_rate_limit_decisions_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		deliveryNotes: deliveryNotes,
		documents:     documents,
		rateLimited:   rateLimited,
	}, nil
}

// RecordDeliveryNote counts delivery note writes by operation (create, update, delete).
func (m *Metrics) RecordDeliveryNote(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("operation", strings.TrimSpace(operation)))
	m.deliveryNotes.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordDocument(ctx context.Context) {
	if m == nil {
		return
	}
	m.documents.Add(ctx, 1)
}

func (m *Metrics) RecordRateLimitAllowed(ctx context.Context, endpoint string) {
	m.recordRateLimit(ctx, endpoint, "allowed")
}

func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint string) {
	m.recordRateLimit(ctx, endpoint, "denied")
}

func (m *Metrics) recordRateLimit(ctx context.Context, endpoint, decision string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("decision", decision),
	)
	m.rateLimited.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"operation": {},
	"outcome":   {},
	"reason":    {},
	"endpoint":  {},
	"decision":  {},
}

// FilterAttributes strips labels outside the allow list to keep cardinality low.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
