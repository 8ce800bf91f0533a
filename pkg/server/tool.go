package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kadirpekel/wolfram-mcp/pkg/normalize"
	"github.com/kadirpekel/wolfram-mcp/pkg/wolfram"
)

// ToolName is the single callable operation of the gateway.
const ToolName = "query-wolfram-alpha"

const toolDescription = `🧮 WOLFRAM ALPHA COMPUTATIONAL INTELLIGENCE

Query Wolfram Alpha's computational knowledge engine for:
• Mathematical calculations and equations
• Scientific data and computations
• Statistical analysis and data processing
• Unit conversions and measurements
• Factual queries and knowledge lookup
• Step-by-step solutions and explanations
• Graphical plots and visualizations

Perfect for: Math homework, research, data analysis, quick facts

Examples:
- "What is the derivative of x^2 + 3x?"
- "Population of Japan in 2023"
- "Convert 100 meters to feet"
- "Plot sin(x) from 0 to 2π"
- "Solve 2x + 5 = 15"`

func (s *Server) registerTool() {
	tool := mcp.NewTool(ToolName,
		mcp.WithDescription(toolDescription),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Your question or calculation for Wolfram Alpha (e.g., 'What is 2+2?', 'derivative of x^2', 'population of France')"),
			mcp.MinLength(1),
			mcp.MaxLength(500),
		),
	)
	s.mcp.AddTool(tool, s.handleQueryTool)
}

// handleQueryTool runs one query end to end: validate, fetch,
// normalize, convert. Failures surface as tool results carrying
// human-readable guidance, never as protocol errors.
func (s *Server) handleQueryTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	log := s.log.With("request_id", uuid.NewString())

	query, err := normalize.ValidateQuery(req.GetArguments()["query"])
	if err != nil {
		var valErr *normalize.ValidationError
		if errors.As(err, &valErr) {
			log.Warn("Rejected query", "reason", valErr.Reason)
			s.metrics.RecordQuery(ctx, "rejected", time.Since(start))
			return mcp.NewToolResultError(validationFailureText(valErr)), nil
		}
		return nil, err
	}

	log.Info("Querying Wolfram Alpha", "query_length", len(query))

	tree, err := s.upstream.Fetch(ctx, string(query))
	if err != nil {
		var upErr *wolfram.UpstreamError
		if !errors.As(err, &upErr) {
			upErr = &wolfram.UpstreamError{Kind: wolfram.ErrNetwork, Message: err.Error(), Err: err}
		}
		log.Error("Upstream query failed", "kind", upErr.Kind, "error", err)
		s.metrics.RecordQuery(ctx, "upstream_error", time.Since(start))
		s.metrics.RecordUpstreamError(ctx, upErr.Kind.String())
		return mcp.NewToolResultText(upstreamFailureText(upErr)), nil
	}

	blocks := s.normalizer.Normalize(ctx, query, tree)

	outcome := "success"
	if len(tree.Pods) == 0 {
		outcome = "no_results"
	}
	log.Info("Query completed",
		"outcome", outcome,
		"pods", len(tree.Pods),
		"blocks", len(blocks),
		"duration", time.Since(start),
	)
	s.metrics.RecordQuery(ctx, outcome, time.Since(start))

	return &mcp.CallToolResult{Content: toContent(blocks)}, nil
}

func validationFailureText(err *normalize.ValidationError) string {
	return fmt.Sprintf("❌ **Invalid query:** %s\n💡 %s", err.Error(), err.Hint())
}

// upstreamFailureText renders a whole-query failure the way users see
// it: what happened, the likely cause and generic next steps.
func upstreamFailureText(err *wolfram.UpstreamError) string {
	msg := err.Message
	if msg == "" {
		msg = err.Kind.String()
	}
	return fmt.Sprintf("❌ **Error:** Failed to query Wolfram Alpha: %s\n💡 %s"+
		"\n\n🔧 **Troubleshooting:**"+
		"\n• Check your internet connection"+
		"\n• Try a simpler query"+
		"\n• Verify API key is valid"+
		"\n• Wait a moment and try again",
		msg, err.Hint())
}
