// Package main runs a one-off MCP client for poking at the servers in this
// repo: it spawns the chosen server on stdio, calls a single tool, and
// prints the text result. Run from the repo root:
//
//	go run ./cmd/mcpclient ping
//	go run ./cmd/mcpclient list_tables '{"connection_id":"default"}'
//	go run ./cmd/mcpclient -server reddit get_subreddit_posts '{"subreddit":"golang"}'
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var serverPackages = map[string]string{
	"db":     "./cmd/db-mcp",
	"reddit": "./cmd/reddit-mcp",
}

func main() {
	serverName := flag.String("server", "db", "server to spawn: db or reddit")
	timeout := flag.Duration("timeout", 15*time.Second, "overall call timeout")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [-server db|reddit] <tool_name> [json_arguments]\n", os.Args[0])
		os.Exit(1)
	}
	pkg, ok := serverPackages[*serverName]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown server %q\n", *serverName)
		os.Exit(1)
	}

	toolName := flag.Arg(0)
	var args any
	if flag.NArg() >= 2 && flag.Arg(1) != "" {
		if err := json.Unmarshal([]byte(flag.Arg(1)), &args); err != nil {
			fmt.Fprintf(os.Stderr, "invalid json arguments: %v\n", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	text, err := callTool(ctx, pkg, toolName, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(text)
}

func callTool(ctx context.Context, pkg, toolName string, args any) (string, error) {
	root, err := findRepoRoot()
	if err != nil {
		return "", fmt.Errorf("find repo root: %w", err)
	}

	cmd := exec.CommandContext(ctx, "go", "run", pkg)
	cmd.Dir = root
	cmd.Env = os.Environ() // server needs MCP_DB_URI / REDDIT_* credentials
	cmd.Stderr = os.Stderr

	transport := &mcp.CommandTransport{Command: cmd}
	client := mcp.NewClient(&mcp.Implementation{Name: "mcpclient", Version: "0.1.0"}, nil)
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return "", fmt.Errorf("connect: %w", err)
	}
	defer session.Close()

	res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: toolName, Arguments: args})
	if err != nil {
		return "", fmt.Errorf("call tool: %w", err)
	}
	if res.IsError {
		msg := ""
		if len(res.Content) > 0 {
			if tc, ok := res.Content[0].(*mcp.TextContent); ok {
				msg = tc.Text
			}
		}
		return "", fmt.Errorf("tool error: %s", msg)
	}
	if len(res.Content) > 0 {
		if tc, ok := res.Content[0].(*mcp.TextContent); ok {
			return tc.Text, nil
		}
	}
	return "", nil
}

func findRepoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found")
		}
		dir = parent
	}
}
