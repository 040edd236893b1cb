package telemetry

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	attrOperation  = attribute.Key("api.operation")
	attrStatus     = attribute.Key("api.status")
	attrCallErr    = attribute.Key("api.error")
	attrCartOp     = attribute.Key("cart.operation")
	attrCartSize   = attribute.Key("cart.size")
	attrCartErrKey = attribute.Key("cart.error")
)

type metrics struct {
	calls    metric.Int64Counter
	latency  metric.Float64Histogram
	errors   metric.Float64Histogram
	cartMuts metric.Int64Counter
}

// CallData captures the metadata recorded for each REST API call.
type CallData struct {
	Operation string
	Status    int
	Duration  time.Duration
	Error     error
}

// CartData captures metrics for one cart mutation.
type CartData struct {
	Operation string
	Size      int
	Error     error
}

func newMetrics(m meterProvider) (*metrics, error) {
	if m == nil {
		return &metrics{}, nil
	}
	calls, err := m.Int64Counter("storefront.api.calls.total", metric.WithDescription("Total number of storefront API calls."))
	if err != nil {
		return nil, err
	}
	latency, err := m.Float64Histogram("storefront.api.latency.ms", metric.WithDescription("API call round-trip latency in milliseconds."), metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	errorRate, err := m.Float64Histogram("storefront.api.errors.rate", metric.WithDescription("Per-call error indicator (0 or 1)."), metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}
	cartMuts, err := m.Int64Counter("storefront.cart.mutations.total", metric.WithDescription("Total number of cart mutations."))
	if err != nil {
		return nil, err
	}
	return &metrics{
		calls:    calls,
		latency:  latency,
		errors:   errorRate,
		cartMuts: cartMuts,
	}, nil
}

func (m *metrics) RecordCall(ctx context.Context, data CallData) {
	if m == nil || m.calls == nil {
		return
	}
	attrs := make([]attribute.KeyValue, 0, 3)
	if op := strings.TrimSpace(data.Operation); op != "" {
		attrs = append(attrs, attrOperation.String(op))
	}
	if data.Status != 0 {
		attrs = append(attrs, attrStatus.Int(data.Status))
	}
	errFlag := data.Error != nil
	attrs = append(attrs, attrCallErr.Bool(errFlag))

	m.calls.Add(ctx, 1, metric.WithAttributes(attrs...))
	if data.Duration > 0 && m.latency != nil {
		m.latency.Record(ctx, float64(data.Duration.Milliseconds()), metric.WithAttributes(attrs...))
	}
	if m.errors != nil {
		if errFlag {
			m.errors.Record(ctx, 1, metric.WithAttributes(attrs...))
		} else {
			m.errors.Record(ctx, 0, metric.WithAttributes(attrs...))
		}
	}
}

func (m *metrics) RecordCartMutation(ctx context.Context, data CartData) {
	if m == nil || m.cartMuts == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attrCartOp.String(strings.TrimSpace(data.Operation)),
		attrCartSize.Int(data.Size),
		attrCartErrKey.Bool(data.Error != nil),
	}
	m.cartMuts.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// meterProvider is the subset of metric.Meter we rely on, which makes
// dependency injection straightforward in tests.
type meterProvider interface {
	Int64Counter(name string, opts ...metric.Int64CounterOption) (metric.Int64Counter, error)
	Float64Histogram(name string, opts ...metric.Float64HistogramOption) (metric.Float64Histogram, error)
}
