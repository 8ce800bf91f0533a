package normalize

import (
	"context"
	"strings"
	"time"

	"github.com/kadirpekel/wolfram-mcp/pkg/httpclient"
)

// DefaultImageTimeout bounds one image download, independent of the
// upstream query timeout. Image fetches are best-effort; one slow image
// must not stall the whole response.
const DefaultImageTimeout = 10 * time.Second

// ImageFetcher downloads one referenced result image. Implementations
// return the raw bytes and the response's declared content type.
type ImageFetcher interface {
	FetchImage(ctx context.Context, url string) (data []byte, contentType string, err error)
}

// HTTPImageFetcher fetches images over plain HTTPS GET.
type HTTPImageFetcher struct {
	http    *httpclient.Client
	timeout time.Duration
}

// NewImageFetcher creates an HTTP image fetcher. timeout <= 0 selects
// the default.
func NewImageFetcher(timeout time.Duration, userAgent string) *HTTPImageFetcher {
	if timeout <= 0 {
		timeout = DefaultImageTimeout
	}
	return &HTTPImageFetcher{
		http: httpclient.New(
			httpclient.WithTimeout(timeout),
			httpclient.WithUserAgent(userAgent),
		),
		timeout: timeout,
	}
}

// FetchImage performs a single GET with the fetcher's own deadline.
func (f *HTTPImageFetcher) FetchImage(ctx context.Context, url string) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	resp, err := f.http.Get(ctx, url, nil)
	if err != nil {
		return nil, "", err
	}

	data, err := f.http.ReadBody(resp)
	if err != nil {
		return nil, "", err
	}

	return data, resp.Header.Get("Content-Type"), nil
}

// ClassifyImageMIME maps a declared content type onto the MIME type
// reported to the host. Precedence: gif, then jpeg/jpg, then the png
// fallback (upstream's typical format, also used when the header is
// absent or unrecognized).
func ClassifyImageMIME(contentType string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "gif"):
		return "image/gif"
	case strings.Contains(ct, "jpeg"), strings.Contains(ct, "jpg"):
		return "image/jpeg"
	default:
		return "image/png"
	}
}
