package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/sorenkell/mcp-adapters/internal/dialect"
)

// PostgresDriver implements Driver for PostgreSQL using pgx.
type PostgresDriver struct {
	conn *pgx.Conn
}

// NewPostgresDriver connects to PostgreSQL using the given URI.
func NewPostgresDriver(ctx context.Context, uri string) (*PostgresDriver, error) {
	conn, err := pgx.Connect(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	return &PostgresDriver{conn: conn}, nil
}

// Type implements Driver.
func (d *PostgresDriver) Type() dialect.Type {
	return dialect.Postgres
}

// Ping implements Driver.
func (d *PostgresDriver) Ping(ctx context.Context) error {
	return d.conn.Ping(ctx)
}

// ListTables implements Driver. Schema defaults to "public" if empty.
func (d *PostgresDriver) ListTables(ctx context.Context, schema string) ([]string, error) {
	if schema == "" {
		schema = "public"
	}
	rows, err := d.conn.Query(ctx,
		`SELECT table_name FROM information_schema.tables
		 WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		 ORDER BY table_name`,
		schema)
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
func (d *PostgresDriver) DescribeTable(ctx context.Context, schema, table string) ([]ColumnInfo, error) {
	if schema == "" {
		schema = "public"
	}
	rows, err := d.conn.Query(ctx, `
		SELECT c.column_name, c.data_type, c.is_nullable = 'YES',
		       EXISTS (
		         SELECT 1 FROM information_schema.table_constraints tc
		         JOIN information_schema.key_column_usage kcu
		           ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
		         WHERE tc.table_schema = c.table_schema AND tc.table_name = c.table_name
		           AND tc.constraint_type = 'PRIMARY KEY' AND kcu.column_name = c.column_name
		       )
		FROM information_schema.columns c
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position`,
		schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cols []ColumnInfo
	for rows.Next() {
		var c ColumnInfo
		if err := rows.Scan(&c.Name, &c.Type, &c.Nullable, &c.IsPK); err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// RunQuery implements Driver. Params are positional ($1, $2, ...), pgx's
// native style.
func (d *PostgresDriver) RunQuery(ctx context.Context, sql string, params []any) ([]map[string]any, error) {
	rows, err := d.conn.Query(ctx, sql, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgxRowsToMaps(rows)
}

func pgxRowsToMaps(rows pgx.Rows) ([]map[string]any, error) {
	fields := rows.FieldDescriptions()
	if len(fields) == 0 {
		return nil, nil
	}
	var out []map[string]any
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}
		m := make(map[string]any, len(fields))
		for i, f := range fields {
			name := string(f.Name)
			if name == "" {
				name = fmt.Sprintf("column_%d", i+1)
			}
			m[name] = vals[i]
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Close implements Driver.
func (d *PostgresDriver) Close() error {
	return d.conn.Close(context.Background())
}

var _ Driver = (*PostgresDriver)(nil)
