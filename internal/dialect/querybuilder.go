package dialect

import (
	"fmt"
	"strings"
)

// defaultCommonValuesLimit is used by BuildMostCommonValuesQuery when the
// caller passes a non-positive limit.
const defaultCommonValuesLimit = 10

// BuildExplainQuery wraps query in the engine's EXPLAIN syntax. When analyze
// is true the engine's ANALYZE form is used where one exists; SQLite and
// Snowflake accept the flag but ignore it.
func BuildExplainQuery(t Type, query string, analyze bool) (string, error) {
	d, ok := descriptors[t]
	if !ok {
		return "", unsupported("EXPLAIN", t)
	}
	if analyze {
		return fmt.Sprintf(d.explainAnalyze, query), nil
	}
	return fmt.Sprintf(d.explain, query), nil
}

// EscapeIdentifier wraps identifier in the engine's quote character, doubling
// any embedded occurrence of that character (standard SQL identifier
// escaping). MySQL uses backticks; the rest use double quotes.
func EscapeIdentifier(t Type, identifier string) (string, error) {
	d, ok := descriptors[t]
	if !ok {
		return "", unsupported("identifier escaping", t)
	}
	q := string(d.quote)
	return q + strings.ReplaceAll(identifier, q, q+q) + q, nil
}

// castText applies the engine's to-text cast template to expr, or returns
// expr unchanged when the engine has none (SQLite's dynamic typing).
func castText(d descriptor, expr string) string {
	if d.castText == "" {
		return expr
	}
	return fmt.Sprintf(d.castText, expr)
}

// BuildColumnStatsQuery builds a single-row aggregate query returning total
// row count, non-null count, and distinct count for column. Counts are cast
// to text per engine so results serialize uniformly to JSON.
func BuildColumnStatsQuery(t Type, table, column string) (string, error) {
	d, ok := descriptors[t]
	if !ok {
		return "", unsupported("column statistics", t)
	}
	qt, err := EscapeIdentifier(t, table)
	if err != nil {
		return "", err
	}
	qc, err := EscapeIdentifier(t, column)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"SELECT %s AS total_rows, %s AS non_null_rows, %s AS distinct_values FROM %s",
		castText(d, "COUNT(*)"),
		castText(d, "COUNT("+qc+")"),
		castText(d, "COUNT(DISTINCT "+qc+")"),
		qt,
	), nil
}

// BuildMostCommonValuesQuery builds a frequency query for column: value and
// occurrence count, most frequent first. A non-positive limit defaults to 10.
func BuildMostCommonValuesQuery(t Type, table, column string, limit int) (string, error) {
	if !Supported(t) {
		return "", unsupported("most common values", t)
	}
	if limit <= 0 {
		limit = defaultCommonValuesLimit
	}
	qt, err := EscapeIdentifier(t, table)
	if err != nil {
		return "", err
	}
	qc, err := EscapeIdentifier(t, column)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"SELECT %s, COUNT(*) AS frequency FROM %s GROUP BY %s ORDER BY frequency DESC LIMIT %d",
		qc, qt, qc, limit,
	), nil
}

// BuildTableFilter builds a WHERE-clause fragment for filtering a system
// catalog query by table name, along with the parameter to bind. paramIndex
// only matters for PostgreSQL's numbered placeholders; MySQL and Snowflake
// bind positionally with ?, and SQLite's sqlite_master uses "name" rather
// than "table_name".
func BuildTableFilter(t Type, tableName string, paramIndex int) (string, []any, error) {
	d, ok := descriptors[t]
	if !ok {
		return "", nil, unsupported("table filter", t)
	}
	params := []any{tableName}
	if t == SQLite {
		return "name = ?", params, nil
	}
	if d.placeholder == placeholderDollar {
		return fmt.Sprintf("table_name = $%d", paramIndex), params, nil
	}
	return "table_name = ?", params, nil
}
