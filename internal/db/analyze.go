package db

import (
	"context"
	"fmt"

	"github.com/sorenkell/mcp-adapters/internal/dialect"
)

// ColumnAnalysis is the result of analyze_column: one row of aggregate
// counts plus the most frequent values.
type ColumnAnalysis struct {
	Table        string           `json:"table"`
	Column       string           `json:"column"`
	Stats        map[string]any   `json:"stats"`
	CommonValues []map[string]any `json:"common_values"`
}

// AnalyzeColumn gathers per-column statistics: total, non-null and distinct
// counts, and the most common values with their frequencies. The table is
// checked against the engine catalog first so a typo yields a clear error
// instead of raw engine SQL noise.
func AnalyzeColumn(ctx context.Context, d Driver, table, column string, limit int) (*ColumnAnalysis, error) {
	exists, err := TableExists(ctx, d, table)
	if err != nil {
		return nil, fmt.Errorf("analyze column: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("analyze column: table %q not found", table)
	}

	statsSQL, err := dialect.BuildColumnStatsQuery(d.Type(), table, column)
	if err != nil {
		return nil, err
	}
	statsRows, err := d.RunQuery(ctx, statsSQL, nil)
	if err != nil {
		return nil, fmt.Errorf("analyze column: stats query: %w", err)
	}

	commonSQL, err := dialect.BuildMostCommonValuesQuery(d.Type(), table, column, limit)
	if err != nil {
		return nil, err
	}
	commonRows, err := d.RunQuery(ctx, commonSQL, nil)
	if err != nil {
		return nil, fmt.Errorf("analyze column: common values query: %w", err)
	}

	out := &ColumnAnalysis{
		Table:        table,
		Column:       column,
		CommonValues: commonRows,
	}
	if len(statsRows) > 0 {
		out.Stats = statsRows[0]
	}
	return out, nil
}
