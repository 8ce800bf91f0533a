package server

import (
	"encoding/base64"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kadirpekel/wolfram-mcp/pkg/normalize"
)

// toContent converts normalized blocks to MCP content, preserving
// order. Diagnostic blocks share the text wire shape.
func toContent(blocks []normalize.Block) []mcp.Content {
	out := make([]mcp.Content, 0, len(blocks))
	for _, b := range blocks {
		switch b.Type {
		case normalize.BlockImage:
			out = append(out, mcp.NewImageContent(
				base64.StdEncoding.EncodeToString(b.Data), b.MIMEType))
		default:
			out = append(out, mcp.NewTextContent(b.Text))
		}
	}
	return out
}
