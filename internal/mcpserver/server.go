// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes schema validation and reference tooling over stdio.
package mcpserver

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/erraggy/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `jsonschema MCP server: validates JSON and YAML instances against JSON Schema (draft 4, draft 7, 2019-09, 2020-12), checks schemas against their meta-schema, inlines references, and lists $ref usage.

Configuration: All defaults are configurable via JSONSCHEMA_* environment variables set in your MCP client config.

Key settings:
- JSONSCHEMA_DEFAULT_DRAFT (default: 2020-12): draft for schemas without $schema
- JSONSCHEMA_OUTPUT_FORMAT (default: basic): flag or basic
- JSONSCHEMA_FORMAT_ASSERTION (default: false): treat format as an assertion
- JSONSCHEMA_MAX_ERRORS (default: 100): default page size for errors and refs
- JSONSCHEMA_ALLOW_REMOTE (default: false): allow url inputs and http(s) $ref targets
- JSONSCHEMA_ALLOW_PRIVATE_IPS (default: false): allow remote fetches to private addresses
- JSONSCHEMA_CACHE_FILE_TTL (default: 15m): cache TTL for local file schemas
- JSONSCHEMA_CACHE_URL_TTL (default: 5m): cache TTL for URL-fetched schemas and documents
- JSONSCHEMA_CACHE_ENABLED (default: true): disable schema caching entirely

File inputs may only reference files in their own directory tree.

Caching: Loaded schemas are cached per session. File entries use path+mtime as key (auto-invalidated on change). URL entries are cached with a shorter TTL. A background sweeper removes expired entries every 60s.`

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled.
func Run(ctx context.Context) error {
	if cfg.CacheEnabled {
		schemaCache.startSweeper(ctx, cfg.CacheSweepInterval)
	}

	server := mcp.NewServer(
		&mcp.Implementation{Name: "jsonschema", Version: jsonschema.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate",
		Description: "Validate a JSON or YAML instance against a JSON Schema. Returns the verdict and, in basic output format, the failing keywords with instance and keyword locations. Referenced files next to a file schema are loaded automatically. Use offset/limit to paginate through errors. Draft, output format, and format assertion defaults are configurable via JSONSCHEMA_DEFAULT_DRAFT, JSONSCHEMA_OUTPUT_FORMAT, and JSONSCHEMA_FORMAT_ASSERTION env vars.",
	}, handleValidate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_schema",
		Description: "Validate a JSON Schema against the meta-schema of its draft. Use this before validate when a schema was written by hand. Returns errors in the same shape as validate.",
	}, handleCheckSchema)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve",
		Description: "Return a JSON Schema with every $ref, $dynamicRef and $recursiveRef replaced by its target, including targets in other documents. Recursive schemas cannot be inlined and are reported as errors.",
	}, handleResolve)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "walk_refs",
		Description: "Walk and count references ($ref, $dynamicRef, $recursiveRef, $schema) in a JSON Schema. By default, returns unique resolved targets ranked by reference count (most-referenced first). Use target to filter by resolved URI (supports * glob, e.g. *#/$defs/*). Use property to narrow to one keyword. Use detail=true to see individual source locations instead of counts. Use group_by=property to get distribution counts by keyword.",
	}, handleWalkRefs)
}

// paginate applies offset/limit pagination to a slice, returning the
// requested page. A non-positive limit defaults to cfg.MaxErrors.
func paginate[T any](items []T, offset, limit int) []T {
	if limit <= 0 {
		limit = cfg.MaxErrors
	}
	if limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}
	if offset < 0 || offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end < offset || end > len(items) { // overflow or beyond slice
		end = len(items)
	}
	return items[offset:end]
}

// makeSlice returns nil when n is 0 (preserving omitempty JSON semantics),
// otherwise returns make([]T, 0, n) for pre-allocated appending.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}

// groupCount represents a single group in group_by results.
type groupCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// groupAndSort groups items by key, sorts by count descending (ties
// broken alphabetically by key), and returns the sorted groups.
func groupAndSort[T any](items []T, keyFn func(T) []string) []groupCount {
	counts := make(map[string]int)
	for _, item := range items {
		for _, key := range keyFn(item) {
			counts[key]++
		}
	}
	groups := make([]groupCount, 0, len(counts))
	for key, count := range counts {
		groups = append(groups, groupCount{Key: key, Count: count})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Key < groups[j].Key
	})
	return groups
}

// validateGroupBy checks that group_by is a valid value and is not combined with detail.
func validateGroupBy(groupBy string, detail bool, allowed []string) error {
	if groupBy == "" {
		return nil
	}
	if detail {
		return fmt.Errorf("cannot use both group_by and detail")
	}
	for _, a := range allowed {
		if strings.EqualFold(groupBy, a) {
			return nil
		}
	}
	return fmt.Errorf("invalid group_by value %q; valid values: %s", groupBy, strings.Join(allowed, ", "))
}

// validateGlobPattern checks whether a glob pattern is syntactically valid.
// Call this once before a filter loop so matchGlobName/matchRefGlob never
// encounter an invalid pattern at match time.
func validateGlobPattern(pattern string) error {
	if pattern == "" || !strings.ContainsAny(pattern, "*?[") {
		return nil
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}
	return nil
}
