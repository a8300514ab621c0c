package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/snowflakedb/gosnowflake"

	"github.com/sorenkell/mcp-adapters/internal/dialect"
)

// SnowflakeDriver implements Driver for Snowflake using gosnowflake.
type SnowflakeDriver struct {
	db *sql.DB
}

// NewSnowflakeDriver connects to Snowflake. Accepts a snowflake:// URI
// (the scheme is stripped) or gosnowflake's native DSN form
// "user:password@account/database/schema".
func NewSnowflakeDriver(ctx context.Context, uri string) (*SnowflakeDriver, error) {
	dsn := strings.TrimPrefix(uri, "snowflake://")
	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("snowflake open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("snowflake ping: %w", err)
	}
	return &SnowflakeDriver{db: db}, nil
}

// Type implements Driver.
func (d *SnowflakeDriver) Type() dialect.Type {
	return dialect.Snowflake
}

// Ping implements Driver.
func (d *SnowflakeDriver) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// ListTables implements Driver. Schema defaults to the session's current
// schema when empty.
func (d *SnowflakeDriver) ListTables(ctx context.Context, schema string) ([]string, error) {
	var query string
	var args []any
	if schema == "" {
		query = `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES
			WHERE TABLE_SCHEMA = CURRENT_SCHEMA() AND TABLE_TYPE = 'BASE TABLE'
			ORDER BY TABLE_NAME`
	} else {
		query = `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES
			WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE'
			ORDER BY TABLE_NAME`
		args = []any{strings.ToUpper(schema)}
	}
	rows, err := d.db.QueryContext(ctx, query, args...)
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

// DescribeTable implements Driver. Unquoted Snowflake identifiers are stored
// upper-case, so lookups uppercase the inputs.
func (d *SnowflakeDriver) DescribeTable(ctx context.Context, schema, table string) ([]ColumnInfo, error) {
	var query string
	var args []any
	if schema == "" {
		query = `
		SELECT c.COLUMN_NAME, c.DATA_TYPE,
		       CASE WHEN c.IS_NULLABLE = 'YES' THEN 1 ELSE 0 END
		FROM INFORMATION_SCHEMA.COLUMNS c
		WHERE c.TABLE_SCHEMA = CURRENT_SCHEMA() AND c.TABLE_NAME = ?
		ORDER BY c.ORDINAL_POSITION`
		args = []any{strings.ToUpper(table)}
	} else {
		query = `
		SELECT c.COLUMN_NAME, c.DATA_TYPE,
		       CASE WHEN c.IS_NULLABLE = 'YES' THEN 1 ELSE 0 END
		FROM INFORMATION_SCHEMA.COLUMNS c
		WHERE c.TABLE_SCHEMA = ? AND c.TABLE_NAME = ?
		ORDER BY c.ORDINAL_POSITION`
		args = []any{strings.ToUpper(schema), strings.ToUpper(table)}
	}
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cols []ColumnInfo
	for rows.Next() {
		var c ColumnInfo
		var nullable int
		if err := rows.Scan(&c.Name, &c.Type, &nullable); err != nil {
			return nil, err
		}
		// INFORMATION_SCHEMA.COLUMNS has no primary-key flag in Snowflake;
		// PK metadata requires SHOW PRIMARY KEYS, which cannot be joined
		// here. IsPK stays false.
		c.Nullable = nullable == 1
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// RunQuery implements Driver. Converts $1, $2 placeholders to Snowflake's
// positional ? syntax.
func (d *SnowflakeDriver) RunQuery(ctx context.Context, query string, params []any) ([]map[string]any, error) {
	query = convertPlaceholdersPositional(query)
	rows, err := d.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return sqlRowsToMaps(rows)
}

// Close implements Driver.
func (d *SnowflakeDriver) Close() error {
	return d.db.Close()
}

var _ Driver = (*SnowflakeDriver)(nil)
