package dialect

import (
	"fmt"
	"strings"
)

// sqliteSuffixes are bare file paths treated as SQLite databases.
var sqliteSuffixes = []string{".db", ".sqlite", ".sqlite3"}

// DetectType determines the engine type from a connection string. Detection
// happens once per connection, before any dialect dispatch; an unrecognized
// scheme fails here and never reaches the query builders.
//
// Recognized forms:
//
//	postgresql:// or postgres://         PostgreSQL
//	mysql://                             MySQL
//	snowflake:// or a host containing
//	  snowflakecomputing.com             Snowflake
//	sqlite:, file:, or a bare path
//	  ending in .db/.sqlite/.sqlite3     SQLite
func DetectType(connString string) (Type, error) {
	s := strings.TrimSpace(connString)
	if s == "" {
		return "", fmt.Errorf("empty connection string")
	}
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "postgresql://"), strings.HasPrefix(lower, "postgres://"):
		return Postgres, nil
	case strings.HasPrefix(lower, "snowflake://"), strings.Contains(lower, "snowflakecomputing.com"):
		return Snowflake, nil
	case strings.HasPrefix(lower, "mysql://"):
		return MySQL, nil
	case strings.HasPrefix(lower, "sqlite:"), strings.HasPrefix(lower, "file:"):
		return SQLite, nil
	}
	for _, suffix := range sqliteSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return SQLite, nil
		}
	}
	return "", fmt.Errorf("unrecognized connection string scheme (expected postgresql://, mysql://, snowflake://, or a sqlite path): %q", redactConnString(s))
}

// redactConnString strips everything after the scheme so error messages
// never echo credentials embedded in a URI.
func redactConnString(s string) string {
	if i := strings.Index(s, "://"); i >= 0 {
		return s[:i+3] + "..."
	}
	return "..."
}
