// Package db provides database driver abstraction and connection management
// for PostgreSQL, MySQL, SQLite and Snowflake.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/sorenkell/mcp-adapters/internal/dialect"
)

// Driver is the interface for database operations used by MCP tools.
// Implementations are backend-specific; dialect-dependent SQL is built in
// the dialect package against Type().
type Driver interface {
	// Type returns the engine type, used for dialect dispatch.
	Type() dialect.Type
	// Ping verifies the connection is alive.
	Ping(ctx context.Context) error
	// ListTables returns table names in the given schema. Engines without
	// schemas (SQLite) ignore the argument.
	ListTables(ctx context.Context, schema string) ([]string, error)
	// DescribeTable returns column metadata for the given schema and table.
	DescribeTable(ctx context.Context, schema, table string) ([]ColumnInfo, error)
	// RunQuery runs a SQL statement (caller must validate read-only-ness).
	// Params are positional, written $1, $2, ...; implementations convert
	// to their native placeholder style. Returns rows as column-name to
	// value maps.
	RunQuery(ctx context.Context, sql string, params []any) ([]map[string]any, error)
	// Close releases the connection. Caller should call once when done.
	Close() error
}

// ColumnInfo describes one column for describe_table.
type ColumnInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
	IsPK     bool   `json:"is_pk"`
}

// dollarPlaceholder matches $1, $2, ... for conversion to ?-style binding.
var dollarPlaceholder = regexp.MustCompile(`\$(\d+)`)

// convertPlaceholdersNumbered replaces $1, $2, ... with ?1, ?2, ... (SQLite).
func convertPlaceholdersNumbered(s string) string {
	return dollarPlaceholder.ReplaceAllString(s, "?${1}")
}

// convertPlaceholdersPositional replaces $1, $2, ... with bare ?. MySQL and
// Snowflake bind by position, so argument order must match the params slice.
func convertPlaceholdersPositional(s string) string {
	return dollarPlaceholder.ReplaceAllString(s, "?")
}

// sqlRowsToMaps drains rows into column-name to value maps. []byte values
// are converted to string so results marshal as text rather than base64.
func sqlRowsToMaps(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, nil
	}
	var out []map[string]any
	scan := make([]any, len(cols))
	for i := range scan {
		scan[i] = new(any)
	}
	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return nil, err
		}
		m := make(map[string]any, len(cols))
		for i, c := range cols {
			v := *(scan[i].(*any))
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			m[c] = v
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Explain runs the engine's EXPLAIN form of query on d and normalizes the
// result rows into a flat list of plan objects.
func Explain(ctx context.Context, d Driver, query string, analyze bool) ([]map[string]any, error) {
	explainSQL, err := dialect.BuildExplainQuery(d.Type(), query, analyze)
	if err != nil {
		return nil, err
	}
	rows, err := d.RunQuery(ctx, explainSQL, nil)
	if err != nil {
		return nil, fmt.Errorf("explain: %w", err)
	}
	return dialect.ParseExplainResult(d.Type(), rows)
}

// TableExists checks the engine's catalog for a table with the given name.
func TableExists(ctx context.Context, d Driver, table string) (bool, error) {
	filter, params, err := dialect.BuildTableFilter(d.Type(), table, 1)
	if err != nil {
		return false, err
	}
	var query string
	if d.Type() == dialect.SQLite {
		query = "SELECT 1 FROM sqlite_master WHERE type = 'table' AND " + filter
	} else {
		query = "SELECT 1 FROM information_schema.tables WHERE " + filter
	}
	rows, err := d.RunQuery(ctx, query, params)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}
