package observability

import (
	"context"
	"log"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records pipeline runs through an OpenTelemetry meter exported
// to Prometheus. The zero value is a no-op.
type Observability struct {
	meterProvider    *metric.MeterProvider
	meter            otelmetric.Meter
	pipelineCounter  otelmetric.Int64Counter
	pipelineDuration otelmetric.Float64Histogram
	broadcastCounter otelmetric.Int64Counter
}

// New registers the exporter with the default Prometheus registerer and
// installs the provider globally.
func New(serviceName string) *Observability {
	o := NewWithRegisterer(serviceName, promclient.DefaultRegisterer)
	if o.meterProvider != nil {
		otel.SetMeterProvider(o.meterProvider)
	}
	return o
}

// NewWithRegisterer builds an Observability exporting into reg.
func NewWithRegisterer(serviceName string, reg promclient.Registerer) *Observability {
	exporter, err := prometheus.New(prometheus.WithRegisterer(reg))
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	meter := provider.Meter(serviceName)

	pipelineCounter, _ := meter.Int64Counter(
		"pipeline_runs",
		otelmetric.WithDescription("Utterances run through the extract-bid pipeline"),
	)

	pipelineDuration, _ := meter.Float64Histogram(
		"pipeline_duration",
		otelmetric.WithDescription("Extract-bid pipeline duration"),
		otelmetric.WithUnit("ms"),
	)

	broadcastCounter, _ := meter.Int64Counter(
		"relay_broadcasts",
		otelmetric.WithDescription("Messages broadcast to browser clients"),
	)

	return &Observability{
		meterProvider:    provider,
		meter:            meter,
		pipelineCounter:  pipelineCounter,
		pipelineDuration: pipelineDuration,
		broadcastCounter: broadcastCounter,
	}
}

// RecordPipelineRun counts one pipeline run; outcome is the interpretation
// outcome or "error".
func (o *Observability) RecordPipelineRun(ctx context.Context, outcome string) {
	if o == nil || o.pipelineCounter == nil {
		return
	}
	o.pipelineCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

func (o *Observability) RecordPipelineDuration(ctx context.Context, duration time.Duration, status string) {
	if o == nil || o.pipelineDuration == nil {
		return
	}
	o.pipelineDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("status", status),
	))
}

func (o *Observability) RecordBroadcast(ctx context.Context, kind string) {
	if o == nil || o.broadcastCounter == nil {
		return
	}
	o.broadcastCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("kind", kind),
	))
}

func (o *Observability) Shutdown() {
	if o == nil || o.meterProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.meterProvider.Shutdown(ctx)
}
