package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/RogerJin0910/xredis/pkg/kv"
	"github.com/RogerJin0910/xredis/pkg/structure"
)

type Metrics struct {
	Commands        metric.Int64Counter
	CommandDuration metric.Float64Histogram
	CommandErrors   metric.Int64Counter
	PoolHits        metric.Int64Counter
	PoolMisses      metric.Int64Counter
	Refreshes       metric.Int64Counter
	HTTPRequests    metric.Int64Counter
	HTTPDuration    metric.Float64Histogram
}

var (
	_ kv.CommandRecorder = (*Metrics)(nil)
	_ structure.Recorder = (*Metrics)(nil)
)

// Setup creates the instruments on a fresh Prometheus registry and returns
// the handler that serves it.
func Setup(serviceName string) (*Metrics, http.Handler, error) {
	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	m := &Metrics{}

	m.Commands, err = meter.Int64Counter(
		"xredis_commands_total",
		metric.WithDescription("Total number of store commands"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.CommandDuration, err = meter.Float64Histogram(
		"xredis_command_duration_seconds",
		metric.WithDescription("Store command latency in seconds"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.CommandErrors, err = meter.Int64Counter(
		"xredis_command_errors_total",
		metric.WithDescription("Total number of failed store commands"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.PoolHits, err = meter.Int64Counter(
		"xredis_pool_hits_total",
		metric.WithDescription("Structure handles served from the pool"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.PoolMisses, err = meter.Int64Counter(
		"xredis_pool_misses_total",
		metric.WithDescription("Structure handles built on first request"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.Refreshes, err = meter.Int64Counter(
		"xredis_ttl_refreshes_total",
		metric.WithDescription("TTL refreshes issued after writes"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.HTTPRequests, err = meter.Int64Counter(
		"xredis_http_requests_total",
		metric.WithDescription("Total number of probe HTTP requests"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.HTTPDuration, err = meter.Float64Histogram(
		"xredis_http_duration_seconds",
		metric.WithDescription("Probe HTTP request duration in seconds"),
	)
	if err != nil {
		return nil, nil, err
	}

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m, handler, nil
}

// RecordCommand is called by the store hook once per command.
func (m *Metrics) RecordCommand(ctx context.Context, role, command string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	labels := metric.WithAttributes(
		attribute.String("role", role),
		attribute.String("command", command),
		attribute.String("status", status),
	)

	m.Commands.Add(ctx, 1, labels)
	m.CommandDuration.Record(ctx, duration.Seconds(), labels)

	if err != nil {
		m.CommandErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("role", role),
			attribute.String("command", command),
			attribute.String("class", errorClass(err)),
		))
	}
}

func errorClass(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case kv.IsConnectionError(err):
		return "unavailable"
	default:
		return "reply"
	}
}

func (m *Metrics) RecordPoolHit(ctx context.Context, kind string) {
	m.PoolHits.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *Metrics) RecordPoolMiss(ctx context.Context, kind string) {
	m.PoolMisses.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *Metrics) RecordRefresh(ctx context.Context, kind string) {
	m.Refreshes.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	labels := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.Int("status", status),
	)

	m.HTTPRequests.Add(ctx, 1, labels)
	m.HTTPDuration.Record(ctx, duration.Seconds(), labels)
}
