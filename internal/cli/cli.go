// Package cli handles the db-mcp command line surface: help, version, and
// the config management commands (init, status, update, --find-config).
//
// Run reports whether it handled the arguments instead of exiting, so the
// serving path in main stays testable and exit codes are decided in one
// place.
package cli

import (
	"fmt"
	"io"

	"github.com/sorenkell/mcp-adapters/internal/config"
)

// Version is the reported server version.
const Version = "1.0.0"

const usage = `db-mcp — MCP server exposing relational databases as tools

Usage:
  db-mcp                 start the MCP server on stdio
  db-mcp init [url]      create the config file, optionally with a connection
  db-mcp status          show the config file location and connections
  db-mcp update <url>    set the default connection URL

Flags:
  -h, --help             show this help
  -v, --version          show the version
      --find-config      print the config file path, if one exists
      --configure        deprecated; use init
      --setup            deprecated; use init

Connection URLs: postgresql://, mysql://, snowflake://, or a SQLite file
path (.db/.sqlite/.sqlite3). The MCP_DB_URI environment variable defines
the "default" connection without a config file.`

// Run processes args (without the program name). It returns handled=true
// when the arguments named a CLI command and the caller should exit rather
// than serve; err is non-nil when that command failed.
func Run(args []string, stdout, stderr io.Writer) (handled bool, err error) {
	if len(args) == 0 {
		return false, nil
	}

	switch args[0] {
	case "-h", "--help":
		fmt.Fprintln(stdout, usage)
		return true, nil

	case "-v", "--version":
		fmt.Fprintf(stdout, "db-mcp %s\n", Version)
		return true, nil

	case "--find-config":
		path, err := config.FindPath()
		if err != nil {
			return true, err
		}
		if path == "" {
			fmt.Fprintln(stdout, "no config file found")
			return true, nil
		}
		fmt.Fprintln(stdout, path)
		return true, nil

	case "--configure", "--setup":
		fmt.Fprintf(stderr, "%s is deprecated; use \"db-mcp init [url]\"\n", args[0])
		return runInit(args[1:], stdout)

	case "init":
		return runInit(args[1:], stdout)

	case "status":
		return runStatus(stdout)

	case "update":
		if len(args) < 2 {
			return true, fmt.Errorf("update requires a connection url")
		}
		return runUpdate(args[1], stdout)

	default:
		return true, fmt.Errorf("unknown command %q (see --help)", args[0])
	}
}

func runInit(args []string, stdout io.Writer) (bool, error) {
	cfg, err := config.Load()
	if err != nil {
		return true, err
	}
	if len(args) > 0 {
		if err := cfg.SetConnection(config.DefaultConnectionID, args[0]); err != nil {
			return true, err
		}
	}
	path, err := config.DefaultPath()
	if err != nil {
		return true, err
	}
	if err := cfg.Save(path); err != nil {
		return true, err
	}
	fmt.Fprintf(stdout, "wrote %s\n", path)
	return true, nil
}

func runStatus(stdout io.Writer) (bool, error) {
	path, err := config.FindPath()
	if err != nil {
		return true, err
	}
	if path == "" {
		fmt.Fprintln(stdout, "config file: none")
	} else {
		fmt.Fprintf(stdout, "config file: %s\n", path)
	}

	cfg, err := config.Load()
	if err != nil {
		return true, err
	}
	infos := cfg.ConnectionInfos()
	if len(infos) == 0 {
		fmt.Fprintln(stdout, "connections: none")
		return true, nil
	}
	fmt.Fprintln(stdout, "connections:")
	for _, info := range infos {
		fmt.Fprintf(stdout, "  %s (%s)\n", info.ID, info.Type)
	}
	return true, nil
}

func runUpdate(uri string, stdout io.Writer) (bool, error) {
	cfg, err := config.Load()
	if err != nil {
		return true, err
	}
	if err := cfg.SetConnection(config.DefaultConnectionID, uri); err != nil {
		return true, err
	}
	path, err := config.DefaultPath()
	if err != nil {
		return true, err
	}
	if err := cfg.Save(path); err != nil {
		return true, err
	}
	fmt.Fprintf(stdout, "updated %s connection in %s\n", config.DefaultConnectionID, path)
	return true, nil
}
