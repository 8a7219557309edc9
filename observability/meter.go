package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/chatgate/logger"
)

const meterName = "github.com/kbukum/chatgate"

// Dispatch outcomes recorded on dispatch.total.
const (
	OutcomeOK        = "ok"
	OutcomeFallback  = "fallback"
	OutcomeRejected  = "rejected"
	OutcomeUpstream  = "upstream_error"
	OutcomeTruncated = "truncated"
	OutcomeCanceled  = "canceled"
)

// MeterConfig configures OTLP metric export.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string
	Insecure       bool
	Interval       time.Duration
}

// InitMeter installs a global meter provider exporting over OTLP HTTP.
func InitMeter(ctx context.Context, cfg MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))
	return mp, nil
}

// DispatchMetrics holds the gateway's instruments.
type DispatchMetrics struct {
	total    metric.Int64Counter
	duration metric.Float64Histogram
	chunks   metric.Int64Histogram
	active   metric.Int64UpDownCounter
}

// NewDispatchMetrics creates the instruments on meter. A nil meter uses the
// global provider.
func NewDispatchMetrics(meter metric.Meter) (*DispatchMetrics, error) {
	if meter == nil {
		meter = otel.Meter(meterName)
	}

	total, err := meter.Int64Counter("chatgate.dispatch.total",
		metric.WithDescription("Chat dispatches by provider, model and outcome"))
	if err != nil {
		return nil, fmt.Errorf("creating dispatch.total counter: %w", err)
	}
	duration, err := meter.Float64Histogram("chatgate.dispatch.duration",
		metric.WithDescription("Time from request to end of stream"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("creating dispatch.duration histogram: %w", err)
	}
	chunks, err := meter.Int64Histogram("chatgate.dispatch.chunks",
		metric.WithDescription("Deltas relayed per stream"))
	if err != nil {
		return nil, fmt.Errorf("creating dispatch.chunks histogram: %w", err)
	}
	active, err := meter.Int64UpDownCounter("chatgate.dispatch.active",
		metric.WithDescription("Streams currently relaying"))
	if err != nil {
		return nil, fmt.Errorf("creating dispatch.active counter: %w", err)
	}

	return &DispatchMetrics{total: total, duration: duration, chunks: chunks, active: active}, nil
}

// StreamStarted marks a stream as active.
func (m *DispatchMetrics) StreamStarted(ctx context.Context) {
	if m == nil {
		return
	}
	m.active.Add(ctx, 1)
}

// StreamEnded undoes StreamStarted and records the stream's size.
func (m *DispatchMetrics) StreamEnded(ctx context.Context, provider string, chunks int) {
	if m == nil {
		return
	}
	m.active.Add(ctx, -1)
	m.chunks.Record(ctx, int64(chunks), metric.WithAttributes(attribute.String("provider", provider)))
}

// RecordDispatch counts one dispatch and its duration.
func (m *DispatchMetrics) RecordDispatch(ctx context.Context, provider, model, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.total.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("model", model),
		attribute.String("outcome", outcome),
	))
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("outcome", outcome),
	))
}
