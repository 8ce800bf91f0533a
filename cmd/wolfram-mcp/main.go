// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command wolfram-mcp serves the Wolfram Alpha MCP gateway.
//
// Usage:
//
//	wolfram-mcp serve
//	wolfram-mcp serve --http --addr :8080
//	wolfram-mcp serve --config config.yaml
//	wolfram-mcp config-check --config config.yaml
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	wolframmcp "github.com/kadirpekel/wolfram-mcp"
	"github.com/kadirpekel/wolfram-mcp/pkg/config"
	"github.com/kadirpekel/wolfram-mcp/pkg/observability"
	"github.com/kadirpekel/wolfram-mcp/pkg/server"
)

// CLI defines the command-line interface.
type CLI struct {
	Version     VersionCmd     `cmd:"" help:"Show version information."`
	Serve       ServeCmd       `cmd:"" help:"Start the MCP server."`
	ConfigCheck ConfigCheckCmd `cmd:"" name:"config-check" help:"Load and validate configuration, then exit."`

	Config    string `short:"c" help:"Path to config file." type:"path"`
	LogLevel  string `help:"Log level (debug, info, warn, error)." default:"info"`
	LogFile   string `help:"Log file path (empty = stderr)."`
	LogFormat string `help:"Log format (simple or verbose)." default:"simple"`
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(wolframmcp.GetVersion().String())
	return nil
}

// ServeCmd starts the MCP server over stdio or HTTP.
type ServeCmd struct {
	HTTP    bool   `help:"Serve over streamable HTTP instead of stdio."`
	Addr    string `help:"HTTP listen address (defaults to the configured listen_addr)." placeholder:"ADDR"`
	Metrics bool   `help:"Enable Prometheus metrics (HTTP transport only)." default:"true" negatable:""`
}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("Shutting down...")
		cancel()
	}()

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	useHTTP := c.HTTP || c.Addr != ""

	metrics, err := observability.InitMetrics(observability.Config{
		Enabled: useHTTP && c.Metrics,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	observability.SetGlobalMetrics(metrics)

	srv, err := server.New(cfg, server.WithMetrics(metrics))
	if err != nil {
		return err
	}

	if useHTTP {
		addr := c.Addr
		if addr == "" {
			addr = cfg.ListenAddr
		}
		return srv.ServeHTTP(ctx, addr)
	}
	return srv.ServeStdio()
}

// ConfigCheckCmd validates the configuration and prints the effective
// values without starting a server.
type ConfigCheckCmd struct{}

func (c *ConfigCheckCmd) Run(cli *CLI) error {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	fmt.Println("Configuration OK")
	fmt.Printf("  Endpoint:          %s\n", cfg.BaseURL)
	fmt.Printf("  Credential:        present (%d characters)\n", len(cfg.AppID))
	fmt.Printf("  Query timeout:     %s\n", cfg.QueryTimeout.Duration())
	fmt.Printf("  Image timeout:     %s\n", cfg.ImageTimeout.Duration())
	fmt.Printf("  Image concurrency: %d\n", cfg.ImageConcurrency)
	return nil
}

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("wolfram-mcp"),
		kong.Description("MCP gateway for the Wolfram Alpha computational knowledge engine"),
		kong.UsageOnError(),
	)

	// Stdio transport owns stdout for the protocol stream, so logs must
	// go to stderr or a file.
	cleanup, err := initLoggerFromCLI(cli.LogLevel, cli.LogFile, cli.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	err = ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
