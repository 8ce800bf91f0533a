package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kadirpekel/wolfram-mcp/pkg/normalize"
)

const (
	statusResourceURI = "wolfram://status"
	configResourceURI = "wolfram://config"

	// probeQuery is a trivial computation used to verify upstream
	// connectivity without consuming a meaningful API call.
	probeQuery   = "2+2"
	probeTimeout = 5 * time.Second
)

func (s *Server) registerResources() {
	status := mcp.NewResource(statusResourceURI, "Upstream status",
		mcp.WithResourceDescription("Live connectivity check against the Wolfram Alpha API, including credential presence and probe outcome."),
		mcp.WithMIMEType("application/json"),
	)
	s.mcp.AddResource(status, s.handleStatusResource)

	config := mcp.NewResource(configResourceURI, "Gateway configuration",
		mcp.WithResourceDescription("Effective gateway configuration: endpoint, timeouts and validation bounds. Never exposes the credential value."),
		mcp.WithMIMEType("application/json"),
	)
	s.mcp.AddResource(config, s.handleConfigResource)
}

type statusReport struct {
	CredentialPresent bool   `json:"credential_present"`
	Endpoint          string `json:"endpoint"`
	Connectivity      string `json:"connectivity"`
	Error             string `json:"error,omitempty"`
	CheckedAt         string `json:"checked_at"`
}

func (s *Server) handleStatusResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	report := statusReport{
		CredentialPresent: s.cfg.AppID != "",
		Endpoint:          s.cfg.BaseURL,
		CheckedAt:         time.Now().UTC().Format(time.RFC3339),
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if _, err := s.upstream.Fetch(probeCtx, probeQuery); err != nil {
		report.Connectivity = "failed"
		report.Error = err.Error()
	} else {
		report.Connectivity = "ok"
	}

	return s.jsonResource(req.Params.URI, report)
}

type configReport struct {
	CredentialPresent bool   `json:"credential_present"`
	CredentialLength  int    `json:"credential_length"`
	Endpoint          string `json:"endpoint"`
	QueryTimeout      string `json:"query_timeout"`
	ImageTimeout      string `json:"image_timeout"`
	ImageConcurrency  int    `json:"image_concurrency"`
	MinQueryLength    int    `json:"min_query_length"`
	MaxQueryLength    int    `json:"max_query_length"`
}

func (s *Server) handleConfigResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	report := configReport{
		CredentialPresent: s.cfg.AppID != "",
		CredentialLength:  len(s.cfg.AppID),
		Endpoint:          s.cfg.BaseURL,
		QueryTimeout:      s.cfg.QueryTimeout.Duration().String(),
		ImageTimeout:      s.cfg.ImageTimeout.Duration().String(),
		ImageConcurrency:  s.cfg.ImageConcurrency,
		MinQueryLength:    normalize.MinQueryLength,
		MaxQueryLength:    normalize.MaxQueryLength,
	}
	return s.jsonResource(req.Params.URI, report)
}

func (s *Server) jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
