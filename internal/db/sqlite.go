package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/sorenkell/mcp-adapters/internal/dialect"
)

// SQLiteDriver implements Driver for SQLite using modernc.org/sqlite
// (pure Go, no CGO).
type SQLiteDriver struct {
	db *sql.DB
}

// NewSQLiteDriver opens a SQLite database. Accepts a bare file path, a
// "sqlite:path" URI, or a "file:path?mode=..." URI.
func NewSQLiteDriver(_ context.Context, uri string) (*SQLiteDriver, error) {
	path := strings.TrimPrefix(uri, "sqlite:")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}
	return &SQLiteDriver{db: db}, nil
}

// Type implements Driver.
func (d *SQLiteDriver) Type() dialect.Type {
	return dialect.SQLite
}

// Ping implements Driver.
func (d *SQLiteDriver) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// ListTables implements Driver. Schema is ignored for SQLite (single schema).
func (d *SQLiteDriver) ListTables(ctx context.Context, _ string) ([]string, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DescribeTable implements Driver.
func (d *SQLiteDriver) DescribeTable(ctx context.Context, _, table string) ([]ColumnInfo, error) {
	quoted, err := dialect.EscapeIdentifier(dialect.SQLite, table)
	if err != nil {
		return nil, err
	}
	// table_info returns: cid, name, type, notnull, dflt_value, pk
	rows, err := d.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoted))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []ColumnInfo
	for rows.Next() {
		var cid int
		var name, colType string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &colType, &notnull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, ColumnInfo{
			Name:     name,
			Type:     colType,
			Nullable: notnull == 0,
			IsPK:     pk > 0,
		})
	}
	return cols, rows.Err()
}

// RunQuery implements Driver. Converts $1, $2 positional params to SQLite's
// numbered ?1, ?2 syntax.
func (d *SQLiteDriver) RunQuery(ctx context.Context, query string, params []any) ([]map[string]any, error) {
	query = convertPlaceholdersNumbered(query)
	rows, err := d.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return sqlRowsToMaps(rows)
}

// Close implements Driver.
func (d *SQLiteDriver) Close() error {
	return d.db.Close()
}

var _ Driver = (*SQLiteDriver)(nil)
