package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// PromptName identifies the query-framing prompt.
const PromptName = "wa"

const promptDescription = `🧮 **ASK WOLFRAM ALPHA**

Generate a smart query for Wolfram Alpha's computational intelligence.

This prompt helps you:
• Frame questions for mathematical computations
• Get step-by-step solutions and explanations
• Access scientific data and analysis
• Perform unit conversions and calculations
• Research factual information with citations

Perfect for: Students, researchers, analysts, anyone needing reliable computational answers

**Examples:**
- "What is the integral of sin(x) dx?"
- "Compare GDP of USA vs China in 2023"
- "How many calories in 100g of apple?"
- "Convert 25°C to Fahrenheit"`

const promptTemplate = `🧮 Please use Wolfram Alpha to answer the following question:

**Query:** %s

Use the query-wolfram-alpha tool to get computational intelligence, mathematical solutions, scientific data, or factual information. Wolfram Alpha provides step-by-step solutions, graphs, and reliable data from authoritative sources.

After getting the results, please:
1. Summarize the key findings clearly
2. Explain any mathematical steps if applicable
3. Provide context or interpretation when helpful
4. Mention if additional clarification might be needed`

func (s *Server) registerPrompt() {
	prompt := mcp.NewPrompt(PromptName,
		mcp.WithPromptDescription(promptDescription),
		mcp.WithArgument("query",
			mcp.ArgumentDescription("Your question or calculation for Wolfram Alpha (e.g., 'solve x^2 - 4 = 0', 'population of Tokyo', 'derivative of ln(x)')"),
			mcp.RequiredArgument(),
		),
	)
	s.mcp.AddPrompt(prompt, s.handlePrompt)
}

func (s *Server) handlePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	raw, ok := req.Params.Arguments["query"]
	if !ok {
		return nil, fmt.Errorf("missing required 'query' argument for Wolfram Alpha prompt")
	}
	query := strings.TrimSpace(raw)
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	return mcp.NewGetPromptResult(
		"Ask Wolfram Alpha a computational question",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser,
				mcp.NewTextContent(fmt.Sprintf(promptTemplate, query))),
		},
	), nil
}
