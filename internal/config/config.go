// Package config loads database connection configuration from environment
// variables and an optional config file. Connection URIs are never logged
// or exposed in tool responses.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/sorenkell/mcp-adapters/internal/dialect"
)

// EnvDatabaseURI defines a connection with the fixed ID "default" when set.
// It overrides a file entry with the same ID.
const EnvDatabaseURI = "MCP_DB_URI"

// Per-engine env vars define one connection each, with the engine name as
// the connection ID. Env vars override file entries with the same ID.
const (
	EnvPostgresURI  = "MCP_DB_POSTGRES_URI"
	EnvMySQLURI     = "MCP_DB_MYSQL_URI"
	EnvSQLiteURI    = "MCP_DB_SQLITE_URI"
	EnvSnowflakeURI = "MCP_DB_SNOWFLAKE_URI"
)

var engineEnvVars = map[string]string{
	"postgres":  EnvPostgresURI,
	"mysql":     EnvMySQLURI,
	"sqlite":    EnvSQLiteURI,
	"snowflake": EnvSnowflakeURI,
}

// DefaultConnectionID is the ID used for the env-var connection and by the
// CLI's init/update commands.
const DefaultConnectionID = "default"

// Config file path: ~/.mcp-adapters/config.yaml
const (
	DefaultConfigDir = ".mcp-adapters"
	ConfigFileName   = "config.yaml"
)

// Config holds loaded connection configuration. URIs are stored but never
// included in logs or tool output.
type Config struct {
	connections map[string]connectionEntry
}

type connectionEntry struct {
	typ dialect.Type
	uri string
}

// ConnectionInfo is safe to log or return from tools: no credentials.
type ConnectionInfo struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Load reads configuration from ~/.mcp-adapters/config.yaml (if present) and
// the environment. The engine type of every connection is detected from its
// URI scheme; entries with an unrecognized scheme fail Load so a bad
// connection string surfaces at startup, not on first tool call.
func Load() (*Config, error) {
	c := &Config{connections: make(map[string]connectionEntry)}

	path, err := FindPath()
	if err != nil {
		return nil, fmt.Errorf("config path: %w", err)
	}
	if path != "" {
		if err := c.loadFile(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	if uri := os.Getenv(EnvDatabaseURI); uri != "" {
		if err := c.set(DefaultConnectionID, uri); err != nil {
			return nil, fmt.Errorf("%s: %w", EnvDatabaseURI, err)
		}
	}
	for id, envVar := range engineEnvVars {
		if uri := os.Getenv(envVar); uri != "" {
			if err := c.set(id, uri); err != nil {
				return nil, fmt.Errorf("%s: %w", envVar, err)
			}
		}
	}

	return c, nil
}

// FindPath returns the config file path if the file exists, or "" if not.
func FindPath() (string, error) {
	p, err := DefaultPath()
	if err != nil {
		return "", err
	}
	_, err = os.Stat(p)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return p, nil
}

// DefaultPath returns where the config file lives whether or not it exists.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultConfigDir, ConfigFileName), nil
}

type fileFormat struct {
	Connections map[string]string `yaml:"connections"`
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return err
	}
	for id, uri := range f.Connections {
		if uri == "" {
			continue
		}
		if err := c.set(id, uri); err != nil {
			return fmt.Errorf("connection %q: %w", id, err)
		}
	}
	return nil
}

func (c *Config) set(id, uri string) error {
	typ, err := dialect.DetectType(uri)
	if err != nil {
		return err
	}
	c.connections[id] = connectionEntry{typ: typ, uri: uri}
	return nil
}

// SetConnection adds or replaces a connection. Used by the CLI's init and
// update commands; the URI is validated against the known schemes.
func (c *Config) SetConnection(id, uri string) error {
	if c.connections == nil {
		c.connections = make(map[string]connectionEntry)
	}
	return c.set(id, uri)
}

// Save writes the file-backed connections to path, creating the directory if
// needed. The file contains credentials, so it is written mode 0600.
func (c *Config) Save(path string) error {
	f := fileFormat{Connections: make(map[string]string, len(c.connections))}
	for id, e := range c.connections {
		f.Connections[id] = e.uri
	}
	data, err := yaml.Marshal(&f)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// ConnectionIDs returns all configured connection IDs, sorted. Safe to log.
func (c *Config) ConnectionIDs() []string {
	ids := make([]string, 0, len(c.connections))
	for id := range c.connections {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ConnectionInfos returns id and engine type per connection, sorted by ID.
// Safe to return from tools.
func (c *Config) ConnectionInfos() []ConnectionInfo {
	infos := make([]ConnectionInfo, 0, len(c.connections))
	for id, e := range c.connections {
		infos = append(infos, ConnectionInfo{ID: id, Type: string(e.typ)})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// URI returns the connection URI for the given ID. For use only by the db
// layer; never log the result.
func (c *Config) URI(id string) (uri string, ok bool) {
	e, ok := c.connections[id]
	if !ok {
		return "", false
	}
	return e.uri, true
}

// Type returns the detected engine type for the given connection ID.
func (c *Config) Type(id string) (dialect.Type, bool) {
	e, ok := c.connections[id]
	if !ok {
		return "", false
	}
	return e.typ, true
}
