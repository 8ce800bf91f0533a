// Package wolframmcp is a Model Context Protocol gateway for the
// Wolfram Alpha computational knowledge engine.
//
// The server exposes a single tool, query-wolfram-alpha, that accepts a
// natural-language question, queries the Wolfram Alpha v2 API and
// returns the result pods as an ordered sequence of text and image
// content blocks. A companion prompt, wa, frames questions for the
// tool, and two resources (wolfram://status, wolfram://config) report
// runtime diagnostics.
//
// # Quick Start
//
// Install the server:
//
//	go install github.com/kadirpekel/wolfram-mcp/cmd/wolfram-mcp@latest
//
// Set the API credential and start serving over stdio:
//
//	export WOLFRAM_API_KEY=XXXXXX-XXXXXXXXXX
//	wolfram-mcp serve
//
// Or serve over streamable HTTP with health and metrics endpoints:
//
//	wolfram-mcp serve --http --addr :8080
//
// # Using as Go Library
//
// Import specific packages:
//
//	import (
//	    "github.com/kadirpekel/wolfram-mcp/pkg/config"
//	    "github.com/kadirpekel/wolfram-mcp/pkg/server"
//	    "github.com/kadirpekel/wolfram-mcp/pkg/wolfram"
//	)
//
// # Architecture
//
// One query flows through three stages:
//
//	MCP Client → Request Validator → Upstream Client → Response Normalizer → Content Blocks
//
// The validator rejects malformed input before any network activity.
// The upstream client performs a single attempt against the Wolfram
// Alpha API and classifies every failure into a typed error. The
// normalizer turns the pod tree into content blocks and never fails
// outward: per-image and per-pod faults degrade into diagnostic text
// blocks instead of errors.
package wolframmcp
