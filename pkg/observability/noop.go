package observability

import (
	"context"
	"net/http"
	"time"
)

// NoopMetrics discards all measurements.
type NoopMetrics struct{}

func (NoopMetrics) RecordQuery(_ context.Context, _ string, _ time.Duration) {}
func (NoopMetrics) RecordUpstreamError(_ context.Context, _ string)          {}
func (NoopMetrics) RecordImageFetch(_ context.Context, _ string)             {}

// Handler returns a handler that reports 503 Service Unavailable.
func (NoopMetrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("metrics not enabled"))
	})
}
