// Package config holds the process configuration for the Wolfram Alpha
// MCP gateway: the upstream credential, endpoint, timeouts and transport
// settings. Configuration is read once at startup and treated as
// read-only afterwards.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultBaseURL is the Wolfram Alpha full results API endpoint.
	DefaultBaseURL = "https://api.wolframalpha.com/v2/query"

	// DefaultQueryTimeout bounds one upstream knowledge-engine call.
	DefaultQueryTimeout = 30 * time.Second

	// DefaultImageTimeout bounds one result-image download. Image fetches
	// are best-effort and run on their own budget, independent of the
	// query timeout.
	DefaultImageTimeout = 10 * time.Second

	// DefaultImageConcurrency caps parallel image downloads per response.
	DefaultImageConcurrency = 4

	// EnvAPIKey is the environment variable carrying the credential.
	EnvAPIKey = "WOLFRAM_API_KEY"
)

// Config is the gateway configuration.
type Config struct {
	// AppID is the Wolfram Alpha API credential. Defaults to the
	// WOLFRAM_API_KEY environment variable. Required.
	AppID string `yaml:"app_id"`

	// BaseURL is the upstream query endpoint.
	BaseURL string `yaml:"base_url"`

	// QueryTimeout for one upstream query.
	QueryTimeout Duration `yaml:"query_timeout"`

	// ImageTimeout for one result-image download.
	ImageTimeout Duration `yaml:"image_timeout"`

	// ImageConcurrency caps parallel image downloads.
	ImageConcurrency int `yaml:"image_concurrency"`

	// UserAgent sent on outbound HTTP requests.
	UserAgent string `yaml:"user_agent"`

	// ListenAddr for the streamable HTTP transport (serve --transport http).
	ListenAddr string `yaml:"listen_addr"`
}

// Load reads configuration from an optional yaml file, layers environment
// values on top, applies defaults and validates the result. An empty path
// means environment-only configuration.
func Load(path string) (*Config, error) {
	if err := LoadEnvFiles(); err != nil {
		return nil, err
	}

	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		var raw map[string]interface{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}

		expanded := ExpandEnvVarsInData(raw)
		out, err := yaml.Marshal(expanded)
		if err != nil {
			return nil, fmt.Errorf("failed to process config file: %w", err)
		}
		if err := yaml.Unmarshal(out, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	return ProcessConfigPipeline(cfg)
}

// ProcessConfigPipeline applies defaults and validates the config.
func ProcessConfigPipeline(cfg *Config) (*Config, error) {
	if cfg == nil {
		return nil, fmt.Errorf("ProcessConfigPipeline: config cannot be nil")
	}

	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("ProcessConfigPipeline: validation failed: %w", err)
	}

	return cfg, nil
}

// SetDefaults fills unset fields. The credential falls back to the
// WOLFRAM_API_KEY environment variable.
func (c *Config) SetDefaults() {
	if c.AppID == "" {
		c.AppID = os.Getenv(EnvAPIKey)
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.QueryTimeout <= 0 {
		c.QueryTimeout = Duration(DefaultQueryTimeout)
	}
	if c.ImageTimeout <= 0 {
		c.ImageTimeout = Duration(DefaultImageTimeout)
	}
	if c.ImageConcurrency <= 0 {
		c.ImageConcurrency = DefaultImageConcurrency
	}
	if c.UserAgent == "" {
		c.UserAgent = "wolfram-mcp/1.0"
	}
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
}

// Validate checks the config. A missing credential is startup-fatal here,
// never a per-request error.
func (c *Config) Validate() error {
	if c.AppID == "" {
		return fmt.Errorf("%s environment variable not set: provide a Wolfram Alpha API key", EnvAPIKey)
	}

	parsed, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url %q: %w", c.BaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid base_url %q: scheme must be http or https", c.BaseURL)
	}

	if c.QueryTimeout.Duration() < time.Second {
		return fmt.Errorf("query_timeout %v is too short (minimum 1s)", c.QueryTimeout)
	}
	if c.ImageTimeout.Duration() < time.Second {
		return fmt.Errorf("image_timeout %v is too short (minimum 1s)", c.ImageTimeout)
	}

	return nil
}
