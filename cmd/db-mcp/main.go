// Package main runs the db-mcp server: an MCP server that exposes
// read-only query and inspection tools over configured databases
// without exposing credentials to the agent.
package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/sorenkell/mcp-adapters/internal/cli"
	"github.com/sorenkell/mcp-adapters/internal/config"
	"github.com/sorenkell/mcp-adapters/internal/db"
	"github.com/sorenkell/mcp-adapters/internal/server"
)

func main() {
	log := newLogger()

	handled, err := cli.Run(os.Args[1:], os.Stdout, os.Stderr)
	if handled {
		if err != nil {
			log.Error().Err(err).Msg("command failed")
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	mgr := db.NewManager(cfg, log)
	defer mgr.Close()

	srv := server.New(cfg, mgr)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && context.Cause(ctx) != context.Canceled {
		log.Fatal().Err(err).Msg("server")
	}
}

// newLogger writes to stderr so stdout stays clean for the MCP transport.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if s := os.Getenv("LOG_LEVEL"); s != "" {
		if parsed, err := zerolog.ParseLevel(s); err == nil {
			level = parsed
		}
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger().
		Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}
