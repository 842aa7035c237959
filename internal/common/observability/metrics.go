package observability

import (
	"context"
	"fmt"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records batch-level measurements through an OpenTelemetry
// meter exported to Prometheus. A zero value is usable and records nothing.
type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	batchCounter  otelmetric.Int64Counter
	recordCounter otelmetric.Int64Counter
	batchDuration otelmetric.Float64Histogram
}

// New builds the meter. reg may be nil to use the default Prometheus registry.
func New(serviceName string, reg promclient.Registerer) (*Observability, error) {
	var opts []prometheus.Option
	if reg != nil {
		opts = append(opts, prometheus.WithRegisterer(reg))
	}
	exporter, err := prometheus.New(opts...)
	if err != nil {
		return &Observability{}, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	batchCounter, err := meter.Int64Counter(
		"forge.batches",
		otelmetric.WithDescription("Number of generation batches"),
	)
	if err != nil {
		return &Observability{}, err
	}
	recordCounter, err := meter.Int64Counter(
		"forge.records",
		otelmetric.WithDescription("Number of generated records"),
	)
	if err != nil {
		return &Observability{}, err
	}
	batchDuration, err := meter.Float64Histogram(
		"forge.batch.duration",
		otelmetric.WithDescription("Batch generation duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return &Observability{}, err
	}

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		batchCounter:  batchCounter,
		recordCounter: recordCounter,
		batchDuration: batchDuration,
	}, nil
}

// RecordBatch records one batch from source with its outcome.
func (o *Observability) RecordBatch(ctx context.Context, source, status string, records int, duration time.Duration) {
	if o == nil || o.batchCounter == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("source", source),
		attribute.String("status", status),
	)
	o.batchCounter.Add(ctx, 1, attrs)
	o.recordCounter.Add(ctx, int64(records), attrs)
	o.batchDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.meterProvider == nil {
		return nil
	}
	return o.meterProvider.Shutdown(ctx)
}
