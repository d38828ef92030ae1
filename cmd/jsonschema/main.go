package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/erraggy/jsonschema"
	"github.com/erraggy/jsonschema/cmd/jsonschema/commands"
	"github.com/erraggy/jsonschema/internal/stringutil"
)

// commandNames lists the commands offered as typo suggestions.
var commandNames = []string{"validate", "resolve", "refs", "mcp", "version", "help"}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run dispatches one command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}

	var err error
	switch command := args[0]; command {
	case "version", "-v", "--version":
		_, _ = fmt.Fprintln(stdout, jsonschema.BuildInfo())
	case "help", "-h", "--help":
		printUsage(stdout)
	case "validate":
		err = commands.HandleValidate(args[1:], stdout, stderr)
	case "resolve":
		err = commands.HandleResolve(args[1:], stdout, stderr)
	case "refs":
		err = commands.HandleRefs(args[1:], stdout, stderr)
	case "mcp":
		err = commands.HandleMCP(args[1:], stderr)
	default:
		_, _ = fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		if suggestion := suggestCommand(command); suggestion != "" {
			_, _ = fmt.Fprintf(stderr, "Did you mean: %s?\n", suggestion)
		}
		_, _ = fmt.Fprintln(stderr)
		printUsage(stderr)
		return 1
	}

	if err != nil {
		// Invalid instances were already reported by the command.
		if !errors.Is(err, commands.ErrInvalidInstance) {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// suggestCommand returns the known command within edit distance 2 of input.
func suggestCommand(input string) string {
	return stringutil.Closest(input, commandNames, 2)
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, `jsonschema - JSON Schema validation tools

Usage:
  jsonschema <command> [options]

Commands:
  validate    Validate JSON or YAML instances against a schema
  resolve     Print a schema with every reference inlined
  refs        List the identity and reference keywords of a schema
  mcp         Run the MCP server over stdio
  version     Show version information
  help        Show this help message

Examples:
  jsonschema validate schema.json data.json
  jsonschema validate --output basic --format json schema.yaml a.yaml b.yaml
  jsonschema validate --http https://example.com/schema.json data.json
  jsonschema resolve --format yaml schema.json
  jsonschema refs schema.json

Run 'jsonschema <command> --help' for more information on a command.`)
}
