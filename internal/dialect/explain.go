package dialect

import "encoding/json"

// ParseExplainResult normalizes raw EXPLAIN rows, as returned by each
// engine's driver, into a flat list of plain objects — one per logical plan
// node. Output length always equals input length.
//
// PostgreSQL returns one row with a single "QUERY PLAN" column whose value
// the driver has already decoded (an object, a one-element JSON array, or a
// raw JSON string depending on driver). MySQL returns one row with a single
// column holding a JSON-encoded string, or plain tabular columns on older
// servers. SQLite and Snowflake already return flat rows.
func ParseExplainResult(t Type, rows []map[string]any) ([]map[string]any, error) {
	switch t {
	case Postgres:
		out := make([]map[string]any, 0, len(rows))
		for _, row := range rows {
			out = append(out, unwrapPlanRow(row))
		}
		return out, nil
	case MySQL:
		out := make([]map[string]any, 0, len(rows))
		for _, row := range rows {
			out = append(out, parseMySQLPlanRow(row))
		}
		return out, nil
	case SQLite, Snowflake:
		out := make([]map[string]any, 0, len(rows))
		out = append(out, rows...)
		return out, nil
	default:
		return nil, unsupported("EXPLAIN parsing", t)
	}
}

// unwrapPlanRow strips the single wrapper column from a PostgreSQL EXPLAIN
// row. FORMAT JSON yields a one-element array holding the plan object; pgx
// decodes the json column into Go values, but a raw string is handled too.
func unwrapPlanRow(row map[string]any) map[string]any {
	if len(row) != 1 {
		return row
	}
	var val any
	for _, v := range row {
		val = v
	}
	for {
		switch v := val.(type) {
		case map[string]any:
			return v
		case []any:
			if len(v) != 1 {
				return row
			}
			val = v[0]
		case string:
			var parsed any
			if err := json.Unmarshal([]byte(v), &parsed); err != nil {
				return row
			}
			val = parsed
		case []byte:
			var parsed any
			if err := json.Unmarshal(v, &parsed); err != nil {
				return row
			}
			val = parsed
		default:
			return row
		}
	}
}

// parseMySQLPlanRow decodes the JSON string in a single-column EXPLAIN
// FORMAT=JSON row. Rows that are already tabular, or whose value does not
// parse as a JSON object, pass through unchanged: older MySQL servers return
// traditional EXPLAIN columns and the two cases cannot be told apart here.
func parseMySQLPlanRow(row map[string]any) map[string]any {
	if len(row) != 1 {
		return row
	}
	var raw string
	for _, v := range row {
		switch s := v.(type) {
		case string:
			raw = s
		case []byte:
			raw = string(s)
		default:
			return row
		}
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return row
	}
	return parsed
}
