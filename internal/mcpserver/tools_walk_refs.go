package mcpserver

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/erraggy/jsonschema/schema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type walkRefsInput struct {
	Schema   documentInput `json:"schema"               jsonschema:"The JSON Schema to walk"`
	Draft    string        `json:"draft,omitempty"      jsonschema:"Draft for schemas without $schema: 4, 7, 2019-09 or 2020-12"`
	All      bool          `json:"all,omitempty"        jsonschema:"Also walk every document the schema references"`
	Target   string        `json:"target,omitempty"     jsonschema:"Filter by resolved target URI (supports * and ? glob, e.g. *#/$defs/*)"`
	Property string        `json:"property,omitempty"   jsonschema:"Filter by keyword: $ref, $dynamicRef, $recursiveRef, $schema, $id, $anchor, $dynamicAnchor"`
	Detail   bool          `json:"detail,omitempty"     jsonschema:"Return individual source locations instead of aggregated counts"`
	GroupBy  string        `json:"group_by,omitempty"   jsonschema:"Group results and return counts instead of individual items. Values: property"`
	Limit    int           `json:"limit,omitempty"      jsonschema:"Maximum number of results to return (default 100)"`
	Offset   int           `json:"offset,omitempty"     jsonschema:"Skip the first N results (for pagination)"`
}

type refSummary struct {
	Target string `json:"target"`
	Count  int    `json:"count"`
}

type refDetail struct {
	Ref      string `json:"ref"`
	Target   string `json:"target"`
	Property string `json:"property"`
	Pointer  string `json:"pointer"`
	Base     string `json:"base"`
}

// walkRefsOutput holds results from walk_refs. In summary mode, Total and
// Matched count unique targets. In detail and group_by modes, they count
// individual keywords (a single target referenced 3 times counts as 3).
type walkRefsOutput struct {
	Total     int          `json:"total"`
	Matched   int          `json:"matched"`
	Returned  int          `json:"returned"`
	Summaries []refSummary `json:"refs,omitempty"`
	Details   []refDetail  `json:"details,omitempty"`
	Groups    []groupCount `json:"groups,omitempty"`
}

func handleWalkRefs(ctx context.Context, _ *mcp.CallToolRequest, input walkRefsInput) (*mcp.CallToolResult, any, error) {
	// Validate glob pattern before loading anything.
	if err := validateGlobPattern(input.Target); err != nil {
		return errResult(err), nil, nil
	}
	if err := validateGroupBy(input.GroupBy, input.Detail, []string{"property"}); err != nil {
		return errResult(err), nil, nil
	}
	draft, err := draftOrDefault(input.Draft)
	if err != nil {
		return errResult(err), nil, nil
	}

	loaded, err := input.Schema.loadSchema(ctx, draft)
	if err != nil {
		return errResult(fmt.Errorf("loading schema: %w", err)), nil, nil
	}
	allRefs := collectRecords(loaded, input.All)
	filtered := filterRefs(allRefs, input)

	// group_by: aggregate by keyword and return counts.
	if input.GroupBy != "" {
		groups := groupAndSort(filtered, func(ref schema.RefRecord) []string {
			return []string{ref.Property}
		})
		paged := paginate(groups, input.Offset, input.Limit)
		output := walkRefsOutput{
			Total:    len(allRefs),
			Matched:  len(filtered),
			Returned: len(paged),
			Groups:   paged,
		}
		return nil, output, nil
	}

	if input.Detail {
		paged := paginate(filtered, input.Offset, input.Limit)
		output := walkRefsOutput{
			Total:    len(allRefs),
			Matched:  len(filtered),
			Returned: len(paged),
			Details:  makeSlice[refDetail](len(paged)),
		}
		for _, ref := range paged {
			output.Details = append(output.Details, refDetail{
				Ref:      ref.Ref,
				Target:   ref.Absolute,
				Property: ref.Property,
				Pointer:  "#" + ref.Pointer,
				Base:     ref.EnclosingID,
			})
		}
		return nil, output, nil
	}

	// Summary mode: aggregate by target, sort by count desc.
	counts := make(map[string]int)
	for _, ref := range filtered {
		counts[ref.Absolute]++
	}

	summaries := make([]refSummary, 0, len(counts))
	for target, count := range counts {
		summaries = append(summaries, refSummary{Target: target, Count: count})
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Count != summaries[j].Count {
			return summaries[i].Count > summaries[j].Count
		}
		return summaries[i].Target < summaries[j].Target
	})

	paged := paginate(summaries, input.Offset, input.Limit)
	output := walkRefsOutput{
		Total:     countUniqueTargets(allRefs),
		Matched:   countUniqueTargets(filtered),
		Returned:  len(paged),
		Summaries: paged,
	}
	return nil, output, nil
}

// collectRecords lists the keywords of the loaded schema, or of every
// document in its repository when all is set.
func collectRecords(loaded *loadedSchema, all bool) []schema.RefRecord {
	loaded.mu.Lock()
	defer loaded.mu.Unlock()

	table := loaded.repo.Table()
	if !all {
		return schema.CollectRefs(table, loaded.schema)
	}
	var records []schema.RefRecord
	for _, doc := range table.Documents() {
		root, _ := table.Lookup(doc)
		records = append(records, schema.CollectRefs(table, root)...)
	}
	return records
}

// filterRefs applies target and property filters to refs.
func filterRefs(refs []schema.RefRecord, input walkRefsInput) []schema.RefRecord {
	if input.Target == "" && input.Property == "" {
		return refs
	}
	var filtered []schema.RefRecord
	for _, ref := range refs {
		if input.Target != "" && !matchRefGlob(ref.Absolute, input.Target) {
			continue
		}
		if input.Property != "" && !strings.EqualFold(ref.Property, input.Property) {
			continue
		}
		filtered = append(filtered, ref)
	}
	return filtered
}

// countUniqueTargets returns the number of distinct resolved targets.
func countUniqueTargets(refs []schema.RefRecord) int {
	seen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		seen[ref.Absolute] = struct{}{}
	}
	return len(seen)
}

// matchRefGlob matches a target URI against a glob pattern. * and ? match
// across / separators, so "*#/$defs/*" matches every $defs entry of any
// document.
func matchRefGlob(target, pattern string) bool {
	if !strings.ContainsAny(pattern, "*?[") {
		return strings.EqualFold(target, pattern)
	}
	// Replace / with : so filepath.Match's * can cross path boundaries.
	normalizedTarget := strings.ReplaceAll(strings.ToLower(target), "/", ":")
	normalizedPattern := strings.ReplaceAll(strings.ToLower(pattern), "/", ":")
	matched, err := filepath.Match(normalizedPattern, normalizedTarget)
	return err == nil && matched
}
