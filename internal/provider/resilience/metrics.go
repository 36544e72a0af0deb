package resilience

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// callMetrics holds the instruments recorded for every provider call.
type callMetrics struct {
	duration metric.Float64Histogram
	total    metric.Int64Counter
}

// newCallMetrics creates the provider call instruments. If the meter refuses an
// instrument the client falls back to no-op instruments rather than failing.
func newCallMetrics(meter metric.Meter) *callMetrics {
	m, err := buildCallMetrics(meter)
	if err != nil {
		m, _ = buildCallMetrics(noop.NewMeterProvider().Meter(instrumentationName))
	}
	return m
}

func buildCallMetrics(meter metric.Meter) (*callMetrics, error) {
	duration, err := meter.Float64Histogram(
		"provider.request.duration",
		metric.WithDescription("Duration of outbound provider requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	total, err := meter.Int64Counter(
		"provider.request.total",
		metric.WithDescription("Total number of outbound provider requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &callMetrics{duration: duration, total: total}, nil
}

func (m *callMetrics) record(ctx context.Context, provider string, status int, err error, elapsed time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("provider.name", provider),
		attribute.String("http.status_code", strconv.Itoa(status)),
	}
	if err != nil || status >= 400 {
		attrs = append(attrs, attribute.Bool("error", true))
	}

	m.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs...))
	m.total.Add(ctx, 1, metric.WithAttributes(attrs...))
}
