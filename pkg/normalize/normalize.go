package normalize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kadirpekel/wolfram-mcp/pkg/httpclient"
	"github.com/kadirpekel/wolfram-mcp/pkg/observability"
	"github.com/kadirpekel/wolfram-mcp/pkg/wolfram"
)

const (
	// DefaultConcurrency caps parallel image downloads per response.
	DefaultConcurrency = 4

	// maxErrorDescription truncates transport-fault descriptions in
	// inline diagnostics.
	maxErrorDescription = 100
)

var separator = strings.Repeat("=", 50)

// Normalizer converts a result tree into an ordered block sequence.
// Normalize never fails outward: every internal fault becomes a
// diagnostic block, so the caller always gets a well-formed sequence of
// at least one block.
type Normalizer struct {
	fetcher     ImageFetcher
	concurrency int
	log         *slog.Logger
	metrics     observability.Metrics
}

type Option func(*Normalizer)

// WithConcurrency caps parallel image downloads.
func WithConcurrency(n int) Option {
	return func(nm *Normalizer) {
		if n > 0 {
			nm.concurrency = n
		}
	}
}

// WithLogger overrides the default slog logger.
func WithLogger(log *slog.Logger) Option {
	return func(nm *Normalizer) {
		nm.log = log
	}
}

// WithMetrics overrides the global metrics recorder.
func WithMetrics(m observability.Metrics) Option {
	return func(nm *Normalizer) {
		nm.metrics = m
	}
}

func New(fetcher ImageFetcher, opts ...Option) *Normalizer {
	nm := &Normalizer{
		fetcher:     fetcher,
		concurrency: DefaultConcurrency,
		log:         slog.Default(),
		metrics:     observability.GetGlobalMetrics(),
	}
	for _, opt := range opts {
		opt(nm)
	}
	return nm
}

// Normalize walks the tree in pod then subpod order and emits blocks:
// a header, per-pod section markers, bulleted plaintext, fetched images
// (or inline diagnostics when a fetch fails), and a trailing summary.
// Image downloads fan out concurrently, but assembly order is strictly
// the tree order.
func (n *Normalizer) Normalize(ctx context.Context, query Query, tree *wolfram.ResultTree) []Block {
	if tree == nil || len(tree.Pods) == 0 {
		// Upstream answered and found nothing. Terminal, not an error.
		return []Block{DiagnosticBlock(fmt.Sprintf(
			"🤔 No results found for '%s'. Try rephrasing your question or being more specific.", query))}
	}

	images := n.fetchImages(ctx, tree)

	if ctx.Err() != nil {
		// The host cancelled the request: discard partial output.
		return []Block{DiagnosticBlock("⚠️ The request was cancelled before results could be rendered.")}
	}

	blocks := []Block{headerBlock(query)}
	podsWithContent := 0
	totalProcessed := 0

	for i := range tree.Pods {
		podBlocks, processed := n.renderPod(&tree.Pods[i], i, images)
		blocks = append(blocks, podBlocks...)
		totalProcessed += processed
		if processed > 0 {
			podsWithContent++
		}
	}

	if totalProcessed == 0 {
		// Upstream had content but none of it survived extraction.
		// Distinct from the zero-pods case above.
		return []Block{
			headerBlock(query),
			DiagnosticBlock("⚠️ Results were found but could not be rendered into readable content. Try rephrasing your query."),
		}
	}

	blocks = append(blocks, TextBlock(summaryText(podsWithContent)))
	return blocks
}

func headerBlock(query Query) Block {
	return TextBlock(fmt.Sprintf("🧮 **Wolfram Alpha Results for:** %s\n%s", query, separator))
}

func summaryText(sections int) string {
	noun := "result sections"
	if sections == 1 {
		noun = "result section"
	}
	return fmt.Sprintf("\n%s\n✅ **Analysis complete** - Found %d %s\n💡 **Tip:** Try more specific queries for better results",
		separator, sections, noun)
}

// renderPod emits the blocks for one pod and reports how many of its
// subpods were processed. Faults are contained at pod granularity: a
// panic skips this pod and sibling pods continue.
func (n *Normalizer) renderPod(pod *wolfram.Pod, podIndex int, images map[imageKey]*imageOutcome) (blocks []Block, processed int) {
	defer func() {
		if r := recover(); r != nil {
			n.log.Warn("skipping pod after internal fault", "pod", podIndex, "panic", r)
			blocks, processed = nil, 0
		}
	}()

	if title := strings.TrimSpace(pod.Title); title != "" {
		blocks = append(blocks, TextBlock(fmt.Sprintf("\n📊 **%s**", title)))
	}

	for j := range pod.Subpods {
		sub := &pod.Subpods[j]

		if sub.HasText() {
			blocks = append(blocks, TextBlock("• "+strings.TrimSpace(sub.Plaintext)))
			processed++
		}

		if sub.HasImage() {
			outcome := images[imageKey{pod: podIndex, sub: j}]
			block, ok := outcome.toBlock()
			blocks = append(blocks, block)
			if ok {
				processed++
			}
		}
	}

	return blocks, processed
}

type imageKey struct {
	pod, sub int
}

type imageJob struct {
	key imageKey
	url string
}

// imageOutcome is the result of one image download attempt.
type imageOutcome struct {
	data     []byte
	mimeType string
	status   int
	timedOut bool
	err      error
}

// toBlock converts the outcome into either an image block (ok=true) or
// an inline diagnostic (ok=false).
func (o *imageOutcome) toBlock() (Block, bool) {
	switch {
	case o.err == nil:
		return ImageBlock(o.data, o.mimeType), true
	case o.status != 0:
		return DiagnosticBlock(fmt.Sprintf("📷 [Image unavailable - HTTP %d]", o.status)), false
	case o.timedOut:
		return DiagnosticBlock("📷 [Image load timed out]"), false
	default:
		return DiagnosticBlock(fmt.Sprintf("📷 [Image could not be loaded: %s]",
			truncate(o.err.Error(), maxErrorDescription))), false
	}
}

// fetchImages downloads every referenced image up front, bounded by the
// configured concurrency. Results are keyed by tree position so assembly
// stays deterministic regardless of completion order.
func (n *Normalizer) fetchImages(ctx context.Context, tree *wolfram.ResultTree) map[imageKey]*imageOutcome {
	var jobs []imageJob
	for i := range tree.Pods {
		for j := range tree.Pods[i].Subpods {
			sub := &tree.Pods[i].Subpods[j]
			if sub.HasImage() {
				jobs = append(jobs, imageJob{
					key: imageKey{pod: i, sub: j},
					url: strings.TrimSpace(sub.Image.Src),
				})
			}
		}
	}
	if len(jobs) == 0 {
		return nil
	}

	outcomes := make([]imageOutcome, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n.concurrency)
	for idx := range jobs {
		g.Go(func() error {
			outcomes[idx] = n.fetchOne(gctx, jobs[idx].url)
			return nil
		})
	}
	_ = g.Wait()

	results := make(map[imageKey]*imageOutcome, len(jobs))
	for idx := range jobs {
		results[jobs[idx].key] = &outcomes[idx]
	}
	return results
}

// fetchOne performs a single download attempt. Fetcher panics are
// contained here so one faulty image cannot take down the response.
func (n *Normalizer) fetchOne(ctx context.Context, url string) (outcome imageOutcome) {
	defer func() {
		if r := recover(); r != nil {
			n.log.Warn("image fetch panicked", "url", url, "panic", r)
			outcome = imageOutcome{err: fmt.Errorf("internal fault: %v", r)}
		}
	}()

	data, contentType, err := n.fetcher.FetchImage(ctx, url)
	if err != nil {
		var statusErr *httpclient.StatusError
		switch {
		case errors.As(err, &statusErr):
			n.metrics.RecordImageFetch(ctx, "status_error")
			return imageOutcome{status: statusErr.StatusCode, err: err}
		case httpclient.IsTimeout(err):
			n.metrics.RecordImageFetch(ctx, "timeout")
			return imageOutcome{timedOut: true, err: err}
		default:
			n.metrics.RecordImageFetch(ctx, "error")
			return imageOutcome{err: err}
		}
	}

	n.metrics.RecordImageFetch(ctx, "success")
	return imageOutcome{data: data, mimeType: ClassifyImageMIME(contentType)}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
