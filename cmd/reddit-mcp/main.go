// Package main runs the reddit-mcp server: an MCP server that exposes
// Reddit browsing, search, and (when credentials allow) posting tools.
package main

import (
	"os"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/sorenkell/mcp-adapters/internal/reddit"
	"github.com/sorenkell/mcp-adapters/internal/redditserver"
)

func main() {
	log := newLogger()

	cfg, err := reddit.ConfigFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	client := reddit.NewClient(cfg, log)
	s := redditserver.New(client)

	log.Info().Bool("write_enabled", cfg.CanWrite()).Msg("starting reddit-mcp on stdio")
	if err := mcpserver.ServeStdio(s); err != nil {
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
