package wolfram

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kadirpekel/wolfram-mcp/pkg/httpclient"
)

// expectedMediaType is matched tolerantly: upstream emits trivially
// varying content-type strings ("text/xml;charset=utf-8",
// "text/xml; charset=utf-8", "TEXT/XML"), so the check only requires
// the normalized value to contain the token.
const expectedMediaType = "text/xml"

const DefaultTimeout = 30 * time.Second

// Config configures the upstream client.
type Config struct {
	// AppID is the API credential. Required.
	AppID string

	// BaseURL is the query endpoint. Required.
	BaseURL string

	// Timeout for one query. Default: 30s.
	Timeout time.Duration

	// UserAgent for outbound requests.
	UserAgent string
}

// Client talks to the Wolfram Alpha full results API.
type Client struct {
	http    *httpclient.Client
	appID   string
	baseURL string
}

// New creates an upstream client. The credential dependency is explicit:
// construction fails without one rather than failing per request later.
func New(cfg Config) (*Client, error) {
	if cfg.AppID == "" {
		return nil, fmt.Errorf("wolfram: app id is required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("wolfram: base url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		http: httpclient.New(
			httpclient.WithTimeout(cfg.Timeout),
			httpclient.WithUserAgent(cfg.UserAgent),
		),
		appID:   cfg.AppID,
		baseURL: cfg.BaseURL,
	}, nil
}

// Fetch sends the query to the knowledge engine and parses the response
// into a ResultTree. All failures come back as *UpstreamError.
func (c *Client) Fetch(ctx context.Context, query string) (*ResultTree, error) {
	resp, err := c.http.Get(ctx, c.baseURL, url.Values{
		"appid": {c.appID},
		"input": {query},
	})
	if err != nil {
		return nil, classifyTransportError(err)
	}

	if err := checkContentType(resp.Header.Get("Content-Type")); err != nil {
		c.http.ReadBody(resp) // drain
		return nil, err
	}

	body, err := c.http.ReadBody(resp)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	if len(body) == 0 {
		return nil, newError(ErrBadResponseShape, "empty response from Wolfram Alpha API", nil)
	}

	tree := &ResultTree{}
	if err := xml.Unmarshal(body, tree); err != nil {
		return nil, newError(ErrBadResponseShape, fmt.Sprintf("failed to parse XML response: %v", err), err)
	}

	if tree.ErrorFlag {
		return nil, classifyUpstreamRejection(tree.ErrorInfo)
	}

	return tree, nil
}

func checkContentType(contentType string) *UpstreamError {
	normalized := strings.ToLower(strings.TrimSpace(contentType))
	if !strings.Contains(normalized, expectedMediaType) {
		return newError(ErrBadResponseShape,
			fmt.Sprintf("expected XML response, got Content-Type: %s", normalized), nil)
	}
	return nil
}

func classifyTransportError(err error) *UpstreamError {
	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden:
			return newError(ErrUnauthorized,
				fmt.Sprintf("request rejected with HTTP %d", statusErr.StatusCode), err)
		case statusErr.StatusCode == http.StatusTooManyRequests:
			return newError(ErrRateLimited, "request was rate limited (HTTP 429)", err)
		default:
			return newError(ErrServerError,
				fmt.Sprintf("unexpected HTTP %d from Wolfram Alpha API", statusErr.StatusCode), err)
		}
	}

	if httpclient.IsTimeout(err) {
		return newError(ErrTimeout, "request to Wolfram Alpha API timed out", err)
	}

	return newError(ErrNetwork, fmt.Sprintf("network error connecting to Wolfram Alpha API: %v", err), err)
}

// classifyUpstreamRejection maps a queryresult-level error payload.
// Invalid-credential rejections arrive this way with HTTP 200.
func classifyUpstreamRejection(info *ErrorInfo) *UpstreamError {
	if info == nil {
		return newError(ErrServerError, "upstream reported an error without details", nil)
	}
	if strings.Contains(strings.ToLower(info.Message), "appid") {
		return newError(ErrUnauthorized, info.Message, nil)
	}
	return newError(ErrServerError,
		fmt.Sprintf("upstream error %d: %s", info.Code, info.Message), nil)
}
