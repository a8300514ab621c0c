package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildExplainQuery(t *testing.T) {
	const q = "SELECT * FROM users"
	tests := []struct {
		name    string
		typ     Type
		analyze bool
		want    string
	}{
		{"postgres plain", Postgres, false, "EXPLAIN (FORMAT JSON) SELECT * FROM users"},
		{"postgres analyze", Postgres, true, "EXPLAIN (ANALYZE, FORMAT JSON) SELECT * FROM users"},
		{"mysql plain", MySQL, false, "EXPLAIN FORMAT=JSON SELECT * FROM users"},
		{"mysql analyze drops format", MySQL, true, "EXPLAIN ANALYZE SELECT * FROM users"},
		{"sqlite plain", SQLite, false, "EXPLAIN QUERY PLAN SELECT * FROM users"},
		{"snowflake plain", Snowflake, false, "EXPLAIN SELECT * FROM users"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildExplainQuery(tt.typ, q, tt.analyze)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildExplainQuery_analyzeNoOp(t *testing.T) {
	// SQLite and Snowflake accept the analyze flag but ignore it.
	for _, typ := range []Type{SQLite, Snowflake} {
		plain, err := BuildExplainQuery(typ, "SELECT 1", false)
		require.NoError(t, err)
		analyzed, err := BuildExplainQuery(typ, "SELECT 1", true)
		require.NoError(t, err)
		assert.Equal(t, plain, analyzed, "type %s", typ)
	}
}

func TestEscapeIdentifier(t *testing.T) {
	tests := []struct {
		typ   Type
		ident string
		want  string
	}{
		{Postgres, "users", `"users"`},
		{SQLite, "users", `"users"`},
		{Snowflake, "users", `"users"`},
		{MySQL, "users", "`users`"},
		{Postgres, `we"ird`, `"we""ird"`},
		{MySQL, "we`ird", "`we``ird`"},
		{Postgres, `""`, `""""""`},
		// The other dialect's quote char is just a regular character.
		{Postgres, "back`tick", `"back` + "`" + `tick"`},
	}
	for _, tt := range tests {
		got, err := EscapeIdentifier(tt.typ, tt.ident)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "EscapeIdentifier(%s, %q)", tt.typ, tt.ident)
	}
}

func TestBuildColumnStatsQuery(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{Postgres, `SELECT COUNT(*)::text AS total_rows, COUNT("status")::text AS non_null_rows, COUNT(DISTINCT "status")::text AS distinct_values FROM "users"`},
		{MySQL, "SELECT CAST(COUNT(*) AS CHAR) AS total_rows, CAST(COUNT(`status`) AS CHAR) AS non_null_rows, CAST(COUNT(DISTINCT `status`) AS CHAR) AS distinct_values FROM `users`"},
		{SQLite, `SELECT COUNT(*) AS total_rows, COUNT("status") AS non_null_rows, COUNT(DISTINCT "status") AS distinct_values FROM "users"`},
		{Snowflake, `SELECT TO_VARCHAR(COUNT(*)) AS total_rows, TO_VARCHAR(COUNT("status")) AS non_null_rows, TO_VARCHAR(COUNT(DISTINCT "status")) AS distinct_values FROM "users"`},
	}
	for _, tt := range tests {
		got, err := BuildColumnStatsQuery(tt.typ, "users", "status")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "type %s", tt.typ)
	}
}

func TestBuildMostCommonValuesQuery(t *testing.T) {
	got, err := BuildMostCommonValuesQuery(MySQL, "users", "status", 0)
	require.NoError(t, err)
	assert.Equal(t, "SELECT `status`, COUNT(*) AS frequency FROM `users` GROUP BY `status` ORDER BY frequency DESC LIMIT 10", got)

	got, err = BuildMostCommonValuesQuery(Postgres, "users", "status", 25)
	require.NoError(t, err)
	assert.Equal(t, `SELECT "status", COUNT(*) AS frequency FROM "users" GROUP BY "status" ORDER BY frequency DESC LIMIT 25`, got)
}

func TestBuildTableFilter(t *testing.T) {
	frag, params, err := BuildTableFilter(Postgres, "users", 3)
	require.NoError(t, err)
	assert.Equal(t, "table_name = $3", frag)
	assert.Equal(t, []any{"users"}, params)

	// MySQL and Snowflake bind by position; the index is ignored.
	for _, typ := range []Type{MySQL, Snowflake} {
		frag, params, err = BuildTableFilter(typ, "users", 3)
		require.NoError(t, err)
		assert.Equal(t, "table_name = ?", frag, "type %s", typ)
		assert.Equal(t, []any{"users"}, params)
	}

	frag, _, err = BuildTableFilter(SQLite, "users", 1)
	require.NoError(t, err)
	assert.Equal(t, "name = ?", frag)
}

func TestUnsupportedType(t *testing.T) {
	const bogus = Type("oracle")

	_, err := BuildExplainQuery(bogus, "SELECT 1", false)
	require.ErrorContains(t, err, "unsupported database type for EXPLAIN")

	_, err = EscapeIdentifier(bogus, "users")
	require.ErrorContains(t, err, "unsupported database type for identifier escaping")

	_, err = BuildColumnStatsQuery(bogus, "users", "status")
	require.ErrorContains(t, err, "unsupported database type for column statistics")

	_, err = BuildMostCommonValuesQuery(bogus, "users", "status", 10)
	require.ErrorContains(t, err, "unsupported database type for most common values")

	_, _, err = BuildTableFilter(bogus, "users", 1)
	require.ErrorContains(t, err, "unsupported database type for table filter")

	_, err = ParseExplainResult(bogus, nil)
	require.ErrorContains(t, err, "unsupported database type for EXPLAIN parsing")
}
