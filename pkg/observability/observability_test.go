package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitMetrics_Disabled(t *testing.T) {
	m, err := InitMetrics(Config{Enabled: false})
	require.NoError(t, err)

	// No-op recorder must be safe to use.
	m.RecordQuery(context.Background(), "ok", time.Second)
	m.RecordUpstreamError(context.Background(), "timeout")
	m.RecordImageFetch(context.Background(), "ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestInitMetrics_Enabled(t *testing.T) {
	m, err := InitMetrics(Config{Enabled: true})
	require.NoError(t, err)

	m.RecordQuery(context.Background(), "ok", 250*time.Millisecond)
	m.RecordUpstreamError(context.Background(), "rate_limited")
	m.RecordImageFetch(context.Background(), "http_error")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "wolfram_mcp_queries_total")
}

func TestGlobalMetrics(t *testing.T) {
	defer SetGlobalMetrics(NoopMetrics{})

	assert.NotNil(t, GetGlobalMetrics())

	m, err := InitMetrics(Config{Enabled: false})
	require.NoError(t, err)
	SetGlobalMetrics(m)
	assert.Equal(t, m, GetGlobalMetrics())
}
