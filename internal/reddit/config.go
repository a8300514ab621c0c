// Package reddit implements a minimal Reddit REST API client for the MCP
// tools: OAuth token handling, listing/search reads, and the submit, comment,
// edit, delete and vote write endpoints.
package reddit

import (
	"fmt"
	"os"
)

// Env var names for Reddit API credentials.
const (
	EnvClientID     = "REDDIT_CLIENT_ID"
	EnvClientSecret = "REDDIT_CLIENT_SECRET"
	EnvUsername     = "REDDIT_USERNAME"
	EnvPassword     = "REDDIT_PASSWORD"
	EnvUserAgent    = "REDDIT_USER_AGENT"
)

const defaultUserAgent = "mcp-adapters-reddit/1.0"

// Config holds Reddit API credentials. With username and password set the
// client uses the password grant and can call write endpoints; without them
// it uses the application-only client-credentials grant (read only).
type Config struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	UserAgent    string
}

// ConfigFromEnv reads credentials from REDDIT_* environment variables.
// ClientID and ClientSecret are required.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		ClientID:     os.Getenv(EnvClientID),
		ClientSecret: os.Getenv(EnvClientSecret),
		Username:     os.Getenv(EnvUsername),
		Password:     os.Getenv(EnvPassword),
		UserAgent:    os.Getenv(EnvUserAgent),
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return cfg, fmt.Errorf("%s and %s must be set", EnvClientID, EnvClientSecret)
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	return cfg, nil
}

// CanWrite reports whether the config supports authenticated write
// endpoints (submit, comment, vote, ...).
func (c Config) CanWrite() bool {
	return c.Username != "" && c.Password != ""
}
