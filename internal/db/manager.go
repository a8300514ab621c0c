package db

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sorenkell/mcp-adapters/internal/config"
	"github.com/sorenkell/mcp-adapters/internal/dialect"
)

// Manager holds configuration and caches drivers by connection ID.
type Manager struct {
	cfg     *config.Config
	log     zerolog.Logger
	mu      sync.Mutex
	drivers map[string]Driver
}

// NewManager returns a manager that will create drivers from cfg.
func NewManager(cfg *config.Config, log zerolog.Logger) *Manager {
	return &Manager{
		cfg:     cfg,
		log:     log,
		drivers: make(map[string]Driver),
	}
}

// Driver returns a Driver for the given connection ID, creating and caching
// it if needed. The engine is selected from the connection string's detected
// dialect type.
func (m *Manager) Driver(ctx context.Context, connectionID string) (Driver, error) {
	uri, ok := m.cfg.URI(connectionID)
	if !ok {
		return nil, fmt.Errorf("unknown connection: %q", connectionID)
	}
	typ, _ := m.cfg.Type(connectionID)

	m.mu.Lock()
	d, cached := m.drivers[connectionID]
	m.mu.Unlock()

	if cached {
		return d, nil
	}

	newDriver, err := openDriver(ctx, typ, uri)
	if err != nil {
		// Log the full error (may contain the URI) for debugging, but
		// return only a safe message to the caller — tool responses must
		// never expose connection strings or credentials.
		m.log.Error().Str("connection", connectionID).Str("type", string(typ)).Err(err).Msg("driver connect failed")
		return nil, fmt.Errorf("failed to connect to %q (%s); check server logs for details", connectionID, typ)
	}

	m.mu.Lock()
	if existing, ok := m.drivers[connectionID]; ok {
		m.mu.Unlock()
		newDriver.Close()
		return existing, nil
	}
	m.drivers[connectionID] = newDriver
	m.mu.Unlock()

	return newDriver, nil
}

func openDriver(ctx context.Context, typ dialect.Type, uri string) (Driver, error) {
	switch typ {
	case dialect.Postgres:
		return NewPostgresDriver(ctx, uri)
	case dialect.MySQL:
		return NewMySQLDriver(ctx, uri)
	case dialect.SQLite:
		return NewSQLiteDriver(ctx, uri)
	case dialect.Snowflake:
		return NewSnowflakeDriver(ctx, uri)
	default:
		return nil, fmt.Errorf("unsupported database type %q", typ)
	}
}

// Close closes all cached drivers. Call when shutting down.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, d := range m.drivers {
		_ = d.Close()
		delete(m.drivers, id)
	}
	return nil
}
