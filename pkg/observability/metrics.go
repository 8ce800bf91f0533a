// Package observability provides Prometheus metrics for the gateway via
// the OpenTelemetry metric API. Metrics are optional: when disabled, a
// no-op recorder stands in and the handler reports 503.
package observability

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type Config struct {
	Enabled bool `yaml:"enabled"`
}

// Metrics records gateway-level measurements.
type Metrics interface {
	// RecordQuery records one tool invocation with its outcome
	// (ok, validation_error, upstream_error, no_results).
	RecordQuery(ctx context.Context, outcome string, duration time.Duration)

	// RecordUpstreamError records one upstream failure by kind.
	RecordUpstreamError(ctx context.Context, kind string)

	// RecordImageFetch records one image download attempt by outcome
	// (ok, http_error, timeout, transport_error).
	RecordImageFetch(ctx context.Context, outcome string)

	// Handler serves the Prometheus scrape endpoint.
	Handler() http.Handler
}

type PrometheusMetrics struct {
	queryDuration       metric.Float64Histogram
	queriesTotal        metric.Int64Counter
	upstreamErrorsTotal metric.Int64Counter
	imageFetchesTotal   metric.Int64Counter
}

// InitMetrics builds the Prometheus-backed recorder, or the no-op one
// when disabled.
func InitMetrics(cfg Config) (Metrics, error) {
	if !cfg.Enabled {
		return NoopMetrics{}, nil
	}

	promExporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(promExporter),
	)

	meter := meterProvider.Meter("wolfram-mcp")

	queryDuration, err := meter.Float64Histogram(
		"wolfram_mcp_query_duration_seconds",
		metric.WithDescription("Tool call duration in seconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create query duration histogram: %w", err)
	}

	queriesTotal, err := meter.Int64Counter(
		"wolfram_mcp_queries_total",
		metric.WithDescription("Total tool calls by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create queries counter: %w", err)
	}

	upstreamErrorsTotal, err := meter.Int64Counter(
		"wolfram_mcp_upstream_errors_total",
		metric.WithDescription("Total upstream failures by kind"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream errors counter: %w", err)
	}

	imageFetchesTotal, err := meter.Int64Counter(
		"wolfram_mcp_image_fetches_total",
		metric.WithDescription("Total image download attempts by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create image fetches counter: %w", err)
	}

	return &PrometheusMetrics{
		queryDuration:       queryDuration,
		queriesTotal:        queriesTotal,
		upstreamErrorsTotal: upstreamErrorsTotal,
		imageFetchesTotal:   imageFetchesTotal,
	}, nil
}

func (m *PrometheusMetrics) RecordQuery(ctx context.Context, outcome string, duration time.Duration) {
	if m == nil || m.queryDuration == nil || m.queriesTotal == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.queryDuration.Record(ctx, duration.Seconds(), attrs)
	m.queriesTotal.Add(ctx, 1, attrs)
}

func (m *PrometheusMetrics) RecordUpstreamError(ctx context.Context, kind string) {
	if m == nil || m.upstreamErrorsTotal == nil {
		return
	}
	m.upstreamErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *PrometheusMetrics) RecordImageFetch(ctx context.Context, outcome string) {
	if m == nil || m.imageFetchesTotal == nil {
		return
	}
	m.imageFetchesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// Handler serves the default Prometheus registry, which the exporter
// registers into.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.Handler()
}

var (
	metricsMu     sync.RWMutex
	globalMetrics Metrics = NoopMetrics{}
)

func SetGlobalMetrics(m Metrics) {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	globalMetrics = m
}

func GetGlobalMetrics() Metrics {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return globalMetrics
}
