package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/sorenkell/mcp-adapters/internal/config"
)

func TestManagerUnknownConnection(t *testing.T) {
	cfg := &config.Config{}
	m := NewManager(cfg, zerolog.Nop())
	if _, err := m.Driver(context.Background(), "nope"); err == nil {
		t.Error("expected error for unknown connection ID")
	}
}

func TestManagerCachesDriver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	cfg := &config.Config{}
	if err := cfg.SetConnection("local", path); err != nil {
		t.Fatalf("SetConnection: %v", err)
	}

	m := NewManager(cfg, zerolog.Nop())
	defer m.Close()

	ctx := context.Background()
	d1, err := m.Driver(ctx, "local")
	if err != nil {
		t.Fatalf("Driver: %v", err)
	}
	d2, err := m.Driver(ctx, "local")
	if err != nil {
		t.Fatalf("Driver (cached): %v", err)
	}
	if d1 != d2 {
		t.Error("expected the same cached driver instance")
	}
}
