// Package server exposes the Wolfram Alpha gateway over the Model
// Context Protocol: one tool, one prompt and two diagnostic resources,
// served over stdio or streamable HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"

	mcpserver "github.com/mark3labs/mcp-go/server"

	wolframmcp "github.com/kadirpekel/wolfram-mcp"
	"github.com/kadirpekel/wolfram-mcp/pkg/config"
	"github.com/kadirpekel/wolfram-mcp/pkg/normalize"
	"github.com/kadirpekel/wolfram-mcp/pkg/observability"
	"github.com/kadirpekel/wolfram-mcp/pkg/wolfram"
)

const (
	// ServerName is the implementation name advertised during the MCP
	// initialize handshake.
	ServerName = "wolfram-mcp"
)

// Upstream answers one Wolfram Alpha query. *wolfram.Client is the
// production implementation.
type Upstream interface {
	Fetch(ctx context.Context, query string) (*wolfram.ResultTree, error)
}

// Server wires the upstream client, the normalizer and the protocol
// surface together.
type Server struct {
	cfg        *config.Config
	upstream   Upstream
	normalizer *normalize.Normalizer
	metrics    observability.Metrics
	log        *slog.Logger
	mcp        *mcpserver.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithUpstream replaces the Wolfram Alpha client.
func WithUpstream(u Upstream) Option {
	return func(s *Server) {
		s.upstream = u
	}
}

// WithNormalizer replaces the response normalizer.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(s *Server) {
		s.normalizer = n
	}
}

// WithMetrics replaces the metrics recorder.
func WithMetrics(m observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLogger replaces the default slog logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// New builds a Server from a validated config and registers the full
// protocol surface.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	s := &Server{
		cfg:     cfg,
		metrics: observability.GetGlobalMetrics(),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.upstream == nil {
		client, err := wolfram.New(wolfram.Config{
			AppID:     cfg.AppID,
			BaseURL:   cfg.BaseURL,
			Timeout:   cfg.QueryTimeout.Duration(),
			UserAgent: cfg.UserAgent,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create upstream client: %w", err)
		}
		s.upstream = client
	}

	if s.normalizer == nil {
		fetcher := normalize.NewImageFetcher(cfg.ImageTimeout.Duration(), cfg.UserAgent)
		s.normalizer = normalize.New(fetcher,
			normalize.WithConcurrency(cfg.ImageConcurrency),
			normalize.WithLogger(s.log),
			normalize.WithMetrics(s.metrics),
		)
	}

	s.mcp = mcpserver.NewMCPServer(ServerName, wolframmcp.Version,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithPromptCapabilities(false),
		mcpserver.WithResourceCapabilities(false, false),
		mcpserver.WithRecovery(),
	)

	s.registerTool()
	s.registerPrompt()
	s.registerResources()

	return s, nil
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcp
}

// ServeStdio serves the protocol over stdin/stdout until the client
// disconnects. Logging must already be routed to stderr or a file.
func (s *Server) ServeStdio() error {
	s.log.Info("Serving over stdio", "server", ServerName, "version", wolframmcp.Version)
	return mcpserver.ServeStdio(s.mcp)
}
