// Package server builds the database MCP server and registers its tools.
package server

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sorenkell/mcp-adapters/internal/config"
	"github.com/sorenkell/mcp-adapters/internal/db"
)

const (
	ServerName    = "db-mcp"
	ServerVersion = "1.0.0"
)

// New returns an MCP server with all database tools registered. cfg may be
// nil (only ping works without config); mgr may be nil when cfg is nil.
func New(cfg *config.Config, mgr *db.Manager) *mcp.Server {
	s := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "ping",
		Description: "Simple health check. Returns pong.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, _ any) (*mcp.CallToolResult, PingOutput, error) {
		return nil, PingOutput{Message: "pong"}, nil
	})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_connections",
		Description: "List configured database connection IDs and their engine types (postgresql, mysql, sqlite, snowflake). No credentials in response.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, _ any) (*mcp.CallToolResult, ListConnectionsOutput, error) {
		out := ListConnectionsOutput{Connections: nil}
		if cfg != nil {
			out.Connections = cfg.ConnectionInfos()
		}
		return nil, out, nil
	})

	if mgr == nil {
		return s
	}

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_tables",
		Description: "List table names in a given connection and optional schema.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in ListTablesInput) (*mcp.CallToolResult, ListTablesOutput, error) {
		if in.ConnectionID == "" {
			return nil, ListTablesOutput{}, fmt.Errorf("connection_id is required")
		}
		driver, err := mgr.Driver(ctx, in.ConnectionID)
		if err != nil {
			return nil, ListTablesOutput{}, err
		}
		tables, err := driver.ListTables(ctx, in.Schema)
		if err != nil {
			return nil, ListTablesOutput{}, err
		}
		return nil, ListTablesOutput{Tables: tables}, nil
	})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "describe_table",
		Description: "Describe columns of a table (name, type, nullable, primary key).",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in DescribeTableInput) (*mcp.CallToolResult, DescribeTableOutput, error) {
		if in.ConnectionID == "" {
			return nil, DescribeTableOutput{}, fmt.Errorf("connection_id is required")
		}
		if in.Table == "" {
			return nil, DescribeTableOutput{}, fmt.Errorf("table is required")
		}
		driver, err := mgr.Driver(ctx, in.ConnectionID)
		if err != nil {
			return nil, DescribeTableOutput{}, err
		}
		cols, err := driver.DescribeTable(ctx, in.Schema, in.Table)
		if err != nil {
			return nil, DescribeTableOutput{}, err
		}
		return nil, DescribeTableOutput{Columns: cols}, nil
	})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "read_query",
		Description: "Run a read-only SQL query (SELECT only). Rejects INSERT/UPDATE/DELETE/DDL. Params are positional ($1, $2, ...).",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in ReadQueryInput) (*mcp.CallToolResult, ReadQueryOutput, error) {
		if in.ConnectionID == "" {
			return nil, ReadQueryOutput{}, fmt.Errorf("connection_id is required")
		}
		if in.SQL == "" {
			return nil, ReadQueryOutput{}, fmt.Errorf("sql is required")
		}
		if err := ValidateReadOnlySQL(in.SQL); err != nil {
			return nil, ReadQueryOutput{}, err
		}
		driver, err := mgr.Driver(ctx, in.ConnectionID)
		if err != nil {
			return nil, ReadQueryOutput{}, err
		}
		rows, err := driver.RunQuery(ctx, in.SQL, in.Params)
		if err != nil {
			return nil, ReadQueryOutput{}, err
		}
		return nil, ReadQueryOutput{Rows: rows}, nil
	})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "explain_query",
		Description: "Show the execution plan for a SQL query. Set analyze=true to run the query and report actual timings where the engine supports it (PostgreSQL, MySQL).",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in ExplainQueryInput) (*mcp.CallToolResult, ExplainQueryOutput, error) {
		if in.ConnectionID == "" {
			return nil, ExplainQueryOutput{}, fmt.Errorf("connection_id is required")
		}
		if in.Query == "" {
			return nil, ExplainQueryOutput{}, fmt.Errorf("query is required")
		}
		if err := ValidateReadOnlySQL(in.Query); err != nil {
			return nil, ExplainQueryOutput{}, err
		}
		driver, err := mgr.Driver(ctx, in.ConnectionID)
		if err != nil {
			return nil, ExplainQueryOutput{}, err
		}
		plan, err := db.Explain(ctx, driver, in.Query, in.Analyze)
		if err != nil {
			return nil, ExplainQueryOutput{}, err
		}
		return nil, ExplainQueryOutput{Plan: plan}, nil
	})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "analyze_column",
		Description: "Column statistics: total, non-null and distinct counts plus the most common values. Optional limit caps the number of common values (default 10).",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in AnalyzeColumnInput) (*mcp.CallToolResult, AnalyzeColumnOutput, error) {
		if in.ConnectionID == "" {
			return nil, AnalyzeColumnOutput{}, fmt.Errorf("connection_id is required")
		}
		if in.Table == "" {
			return nil, AnalyzeColumnOutput{}, fmt.Errorf("table is required")
		}
		if in.Column == "" {
			return nil, AnalyzeColumnOutput{}, fmt.Errorf("column is required")
		}
		driver, err := mgr.Driver(ctx, in.ConnectionID)
		if err != nil {
			return nil, AnalyzeColumnOutput{}, err
		}
		res, err := db.AnalyzeColumn(ctx, driver, in.Table, in.Column, in.Limit)
		if err != nil {
			return nil, AnalyzeColumnOutput{}, err
		}
		return nil, AnalyzeColumnOutput{Analysis: res}, nil
	})

	return s
}

// PingOutput is the structured result of the ping tool.
type PingOutput struct {
	Message string `json:"message"`
}

// ListConnectionsOutput is the result of list_connections.
type ListConnectionsOutput struct {
	Connections []config.ConnectionInfo `json:"connections"`
}

// ListTablesInput is the input for list_tables.
type ListTablesInput struct {
	ConnectionID string `json:"connection_id"`
	Schema       string `json:"schema,omitempty"`
}

// ListTablesOutput is the result of list_tables.
type ListTablesOutput struct {
	Tables []string `json:"tables"`
}

// DescribeTableInput is the input for describe_table.
type DescribeTableInput struct {
	ConnectionID string `json:"connection_id"`
	Schema       string `json:"schema,omitempty"`
	Table        string `json:"table"`
}

// DescribeTableOutput is the result of describe_table.
type DescribeTableOutput struct {
	Columns []db.ColumnInfo `json:"columns"`
}

// ReadQueryInput is the input for read_query.
type ReadQueryInput struct {
	ConnectionID string `json:"connection_id"`
	SQL          string `json:"sql"`
	Params       []any  `json:"params,omitempty"`
}

// ReadQueryOutput is the result of read_query.
type ReadQueryOutput struct {
	Rows []map[string]any `json:"rows"`
}

// ExplainQueryInput is the input for explain_query.
type ExplainQueryInput struct {
	ConnectionID string `json:"connection_id"`
	Query        string `json:"query"`
	Analyze      bool   `json:"analyze,omitempty"`
}

// ExplainQueryOutput is the result of explain_query: one plain object per
// plan node, normalized across engines.
type ExplainQueryOutput struct {
	Plan []map[string]any `json:"plan"`
}

// AnalyzeColumnInput is the input for analyze_column.
type AnalyzeColumnInput struct {
	ConnectionID string `json:"connection_id"`
	Table        string `json:"table"`
	Column       string `json:"column"`
	Limit        int    `json:"limit,omitempty"`
}

// AnalyzeColumnOutput is the result of analyze_column.
type AnalyzeColumnOutput struct {
	Analysis *db.ColumnAnalysis `json:"analysis"`
}
