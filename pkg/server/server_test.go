package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/wolfram-mcp/pkg/config"
	"github.com/kadirpekel/wolfram-mcp/pkg/normalize"
	"github.com/kadirpekel/wolfram-mcp/pkg/observability"
	"github.com/kadirpekel/wolfram-mcp/pkg/wolfram"
)

// mockUpstream counts calls so tests can assert that invalid input
// never reaches the network.
type mockUpstream struct {
	tree     *wolfram.ResultTree
	err      error
	calls    int
	gotQuery string
}

func (m *mockUpstream) Fetch(_ context.Context, query string) (*wolfram.ResultTree, error) {
	m.calls++
	m.gotQuery = query
	if m.err != nil {
		return nil, m.err
	}
	return m.tree, nil
}

// stubFetcher serves canned image bytes keyed by URL.
type stubFetcher struct {
	data  map[string][]byte
	ctype map[string]string
}

func (f *stubFetcher) FetchImage(_ context.Context, url string) ([]byte, string, error) {
	return f.data[url], f.ctype[url], nil
}

func testConfig() *config.Config {
	cfg := &config.Config{AppID: "DEMO-APPID-12345"}
	cfg.SetDefaults()
	return cfg
}

func newTestServer(t *testing.T, up Upstream, opts ...Option) *Server {
	t.Helper()
	opts = append([]Option{
		WithUpstream(up),
		WithMetrics(observability.NoopMetrics{}),
	}, opts...)
	s, err := New(testConfig(), opts...)
	require.NoError(t, err)
	return s
}

func callTool(t *testing.T, s *Server, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = ToolName
	req.Params.Arguments = args
	result, err := s.handleQueryTool(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func textOf(t *testing.T, c mcp.Content) string {
	t.Helper()
	tc, ok := c.(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", c)
	return tc.Text
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestQueryTool_SimpleComputation(t *testing.T) {
	up := &mockUpstream{tree: &wolfram.ResultTree{
		Success: true,
		Pods: []wolfram.Pod{
			{Subpods: []wolfram.Subpod{{Plaintext: "4"}}},
		},
	}}
	s := newTestServer(t, up)

	result := callTool(t, s, map[string]any{"query": "2+2"})

	assert.False(t, result.IsError)
	require.Len(t, result.Content, 3)
	assert.Contains(t, textOf(t, result.Content[0]), "🧮 **Wolfram Alpha Results for:** 2+2")
	assert.Equal(t, "• 4", textOf(t, result.Content[1]))
	assert.Contains(t, textOf(t, result.Content[2]), "✅ **Analysis complete**")
	assert.Equal(t, "2+2", up.gotQuery)
	assert.Equal(t, 1, up.calls)
}

func TestQueryTool_InvalidInputNeverReachesUpstream(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing argument", map[string]any{}},
		{"not a string", map[string]any{"query": 42}},
		{"empty", map[string]any{"query": ""}},
		{"whitespace only", map[string]any{"query": "   "}},
		{"too short", map[string]any{"query": "x"}},
		{"too long", map[string]any{"query": strings.Repeat("a", 1001)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := &mockUpstream{}
			s := newTestServer(t, up)

			result := callTool(t, s, tt.args)

			assert.True(t, result.IsError)
			require.Len(t, result.Content, 1)
			assert.Contains(t, textOf(t, result.Content[0]), "❌ **Invalid query:**")
			assert.Equal(t, 0, up.calls, "validation failure must not trigger a network call")
		})
	}
}

func TestQueryTool_UpstreamFailureBecomesGuidanceText(t *testing.T) {
	up := &mockUpstream{err: &wolfram.UpstreamError{
		Kind:    wolfram.ErrUnauthorized,
		Message: "authentication rejected (HTTP 403)",
	}}
	s := newTestServer(t, up)

	result := callTool(t, s, map[string]any{"query": "population of France"})

	assert.False(t, result.IsError)
	require.Len(t, result.Content, 1)
	text := textOf(t, result.Content[0])
	assert.Contains(t, text, "❌ **Error:** Failed to query Wolfram Alpha: authentication rejected (HTTP 403)")
	assert.Contains(t, text, "💡 This may indicate an API key issue. Verify WOLFRAM_API_KEY is valid.")
	assert.Contains(t, text, "🔧 **Troubleshooting:**")
	assert.Contains(t, text, "• Verify API key is valid")
}

func TestQueryTool_ZeroPodsSingleDiagnostic(t *testing.T) {
	up := &mockUpstream{tree: &wolfram.ResultTree{}}
	s := newTestServer(t, up)

	result := callTool(t, s, map[string]any{"query": "gibberish asdkjh"})

	assert.False(t, result.IsError)
	require.Len(t, result.Content, 1)
	assert.Contains(t, textOf(t, result.Content[0]), "🤔 No results found for 'gibberish asdkjh'")
}

func TestQueryTool_ImageContentIsBase64(t *testing.T) {
	raw := []byte{0x47, 0x49, 0x46, 0x38, 0x39, 0x61}
	fetcher := &stubFetcher{
		data:  map[string][]byte{"http://img.example/plot.gif": raw},
		ctype: map[string]string{"http://img.example/plot.gif": "image/gif"},
	}
	up := &mockUpstream{tree: &wolfram.ResultTree{
		Success: true,
		Pods: []wolfram.Pod{
			{Title: "Plot", Subpods: []wolfram.Subpod{
				{Image: &wolfram.ImageRef{Src: "http://img.example/plot.gif"}},
			}},
		},
	}}
	s := newTestServer(t, up, WithNormalizer(normalize.New(fetcher)))

	result := callTool(t, s, map[string]any{"query": "plot sin(x)"})

	// header, pod title, image, summary
	require.Len(t, result.Content, 4)
	img, ok := result.Content[2].(mcp.ImageContent)
	require.True(t, ok, "expected image content, got %T", result.Content[2])
	assert.Equal(t, base64.StdEncoding.EncodeToString(raw), img.Data)
	assert.Equal(t, "image/gif", img.MIMEType)
}

func TestPrompt_BuildsQueryMessage(t *testing.T) {
	s := newTestServer(t, &mockUpstream{})

	req := mcp.GetPromptRequest{}
	req.Params.Name = PromptName
	req.Params.Arguments = map[string]string{"query": "  integrate x^2  "}

	result, err := s.handlePrompt(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Messages, 1)
	assert.Equal(t, mcp.RoleUser, result.Messages[0].Role)

	text, ok := result.Messages[0].Content.(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "**Query:** integrate x^2")
	assert.Contains(t, text.Text, "Use the query-wolfram-alpha tool")
}

func TestPrompt_RejectsMissingOrEmptyQuery(t *testing.T) {
	s := newTestServer(t, &mockUpstream{})

	for _, args := range []map[string]string{nil, {"query": "  "}} {
		req := mcp.GetPromptRequest{}
		req.Params.Name = PromptName
		req.Params.Arguments = args
		_, err := s.handlePrompt(context.Background(), req)
		assert.Error(t, err)
	}
}

func TestStatusResource_ReportsProbeOutcome(t *testing.T) {
	tests := []struct {
		name     string
		upstream *mockUpstream
		want     string
	}{
		{"reachable", &mockUpstream{tree: &wolfram.ResultTree{Success: true}}, "ok"},
		{"unreachable", &mockUpstream{err: &wolfram.UpstreamError{Kind: wolfram.ErrNetwork, Message: "connection refused"}}, "failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.upstream)

			req := mcp.ReadResourceRequest{}
			req.Params.URI = statusResourceURI
			contents, err := s.handleStatusResource(context.Background(), req)
			require.NoError(t, err)
			require.Len(t, contents, 1)

			text, ok := contents[0].(mcp.TextResourceContents)
			require.True(t, ok)
			assert.Equal(t, statusResourceURI, text.URI)

			var report statusReport
			require.NoError(t, json.Unmarshal([]byte(text.Text), &report))
			assert.True(t, report.CredentialPresent)
			assert.Equal(t, tt.want, report.Connectivity)
			assert.Equal(t, 1, tt.upstream.calls)
			assert.Equal(t, "2+2", tt.upstream.gotQuery)
		})
	}
}

func TestConfigResource_NeverExposesCredential(t *testing.T) {
	s := newTestServer(t, &mockUpstream{})

	req := mcp.ReadResourceRequest{}
	req.Params.URI = configResourceURI
	contents, err := s.handleConfigResource(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.NotContains(t, text.Text, "DEMO-APPID-12345")

	var report configReport
	require.NoError(t, json.Unmarshal([]byte(text.Text), &report))
	assert.True(t, report.CredentialPresent)
	assert.Equal(t, len("DEMO-APPID-12345"), report.CredentialLength)
	assert.Equal(t, config.DefaultBaseURL, report.Endpoint)
	assert.Equal(t, "30s", report.QueryTimeout)
	assert.Equal(t, 2, report.MinQueryLength)
	assert.Equal(t, 1000, report.MaxQueryLength)
}

func TestRouter_HealthAndMetricsEndpoints(t *testing.T) {
	s := newTestServer(t, &mockUpstream{})

	ts := httptest.NewServer(s.router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, ServerName, health["server"])

	// NoopMetrics answers 503 until metrics are initialized.
	mresp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = mresp.Body.Close() }()
	assert.Equal(t, http.StatusServiceUnavailable, mresp.StatusCode)
}
