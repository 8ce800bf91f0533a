// Package httpclient is a thin wrapper over net/http for the gateway's
// outbound calls. It performs exactly one attempt per request: upstream
// queries and image downloads are never retried, a failed call surfaces
// as a typed error the caller classifies.
package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"
)

const DefaultTimeout = 30 * time.Second

type Client struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = timeout
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMaxBodySize caps how many response bytes ReadBody will consume.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		c.maxBody = n
	}
}

func New(opts ...Option) *Client {
	client := &Client{
		client:  &http.Client{Timeout: DefaultTimeout},
		maxBody: 16 << 20, // 16MB
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Get issues a single GET request. params may be nil. Non-2xx statuses
// are returned as *StatusError with the body drained and closed.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values) (*http.Response, error) {
	if len(params) > 0 {
		parsed, err := url.Parse(rawURL)
		if err != nil {
			return nil, err
		}
		q := parsed.Query()
		for key, vals := range params {
			for _, v := range vals {
				q.Add(key, v)
			}
		}
		parsed.RawQuery = q.Encode()
		rawURL = parsed.String()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, c.maxBody))
		resp.Body.Close()
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: rawURL}
	}

	return resp, nil
}

// ReadBody drains and closes the response body, enforcing the size cap.
func (c *Client) ReadBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
}

// IsTimeout reports whether err is a deadline or timeout failure rather
// than some other transport fault.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
