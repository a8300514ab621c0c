// Package dialect holds the database-agnostic SQL layer: a closed set of
// supported engines, per-engine syntax rules (quoting, EXPLAIN form,
// placeholders), query builders for the analysis tools, and normalization of
// EXPLAIN output into a uniform row shape.
//
// Everything here is a pure function of its inputs. Connection handling and
// query execution live in internal/db.
package dialect

import "fmt"

// Type identifies a supported database engine. The set is closed: every
// entry point in this package returns an error for anything else, with no
// fallback dialect.
type Type string

const (
	Postgres  Type = "postgresql"
	MySQL     Type = "mysql"
	SQLite    Type = "sqlite"
	Snowflake Type = "snowflake"
)

// placeholderStyle selects how positional parameters are written.
type placeholderStyle int

const (
	// placeholderDollar is PostgreSQL's numbered $1, $2, ... form.
	placeholderDollar placeholderStyle = iota
	// placeholderQuestion is the bare ? form; drivers bind by position,
	// so the numeric index carries no meaning.
	placeholderQuestion
)

// descriptor is the per-engine syntax record. Read-only after package init.
type descriptor struct {
	quote       byte // identifier quote character
	placeholder placeholderStyle

	// EXPLAIN templates. explainAnalyze is used when the caller asks for
	// ANALYZE; engines without an ANALYZE form repeat the plain template.
	explain        string
	explainAnalyze string

	// castText wraps an expression so the engine returns it as text,
	// keeping aggregate results JSON-friendly. Empty means no cast.
	castText string
}

var descriptors = map[Type]descriptor{
	Postgres: {
		quote:          '"',
		placeholder:    placeholderDollar,
		explain:        "EXPLAIN (FORMAT JSON) %s",
		explainAnalyze: "EXPLAIN (ANALYZE, FORMAT JSON) %s",
		castText:       "%s::text",
	},
	MySQL: {
		quote:       '`',
		placeholder: placeholderQuestion,
		explain:     "EXPLAIN FORMAT=JSON %s",
		// MySQL's EXPLAIN ANALYZE does not accept FORMAT=JSON.
		explainAnalyze: "EXPLAIN ANALYZE %s",
		castText:       "CAST(%s AS CHAR)",
	},
	SQLite: {
		quote:       '"',
		placeholder: placeholderQuestion,
		// SQLite has no ANALYZE-in-EXPLAIN; both forms are the plan query.
		explain:        "EXPLAIN QUERY PLAN %s",
		explainAnalyze: "EXPLAIN QUERY PLAN %s",
	},
	Snowflake: {
		quote:          '"',
		placeholder:    placeholderQuestion,
		explain:        "EXPLAIN %s",
		explainAnalyze: "EXPLAIN %s",
		castText:       "TO_VARCHAR(%s)",
	},
}

// Supported reports whether t is one of the known engine types.
func Supported(t Type) bool {
	_, ok := descriptors[t]
	return ok
}

// Types returns the supported engine types in a fixed order.
func Types() []Type {
	return []Type{Postgres, MySQL, SQLite, Snowflake}
}

func unsupported(what string, t Type) error {
	return fmt.Errorf("unsupported database type for %s: %q", what, t)
}
