package mcpserver

import (
	"context"
	"fmt"
	"os"

	"github.com/erraggy/jsonschema/internal/fileutil"
	"github.com/erraggy/jsonschema/internal/pathutil"
	"github.com/erraggy/jsonschema/jsonvalue"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type resolveInput struct {
	Schema documentInput `json:"schema"           jsonschema:"The JSON Schema to resolve"`
	Draft  string        `json:"draft,omitempty"  jsonschema:"Draft for schemas without $schema: 4, 7, 2019-09 or 2020-12"`
	Output string        `json:"output,omitempty" jsonschema:"File path to write the resolved schema. If omitted the schema is returned inline."`
}

type resolveOutput struct {
	Draft     string `json:"draft"`
	Documents int    `json:"documents"`
	Schema    string `json:"schema,omitempty"`
	WrittenTo string `json:"written_to,omitempty"`
}

func handleResolve(ctx context.Context, _ *mcp.CallToolRequest, input resolveInput) (*mcp.CallToolResult, resolveOutput, error) {
	draft, err := draftOrDefault(input.Draft)
	if err != nil {
		return errResult(err), resolveOutput{}, nil
	}
	var outputPath string
	if input.Output != "" {
		if outputPath, err = pathutil.SanitizeOutputPath(input.Output); err != nil {
			return errResult(err), resolveOutput{}, nil
		}
	}

	loaded, err := input.Schema.loadSchema(ctx, draft)
	if err != nil {
		return errResult(fmt.Errorf("loading schema: %w", err)), resolveOutput{}, nil
	}

	loaded.mu.Lock()
	resolved, err := loaded.repo.Resolve(loaded.schema)
	documents := len(loaded.repo.Table().Documents())
	loaded.mu.Unlock()
	if err != nil {
		return errResult(err), resolveOutput{}, nil
	}

	data, err := jsonvalue.MarshalIndent(resolved, "", "  ")
	if err != nil {
		return errResult(fmt.Errorf("encoding resolved schema: %w", err)), resolveOutput{}, nil
	}

	output := resolveOutput{
		Draft:     detectDraft(loaded.schema, draft).String(),
		Documents: documents,
	}
	if outputPath != "" {
		if err := os.WriteFile(outputPath, append(data, '\n'), fileutil.OwnerReadWrite); err != nil {
			return errResult(fmt.Errorf("failed to write output file: %w", err)), resolveOutput{}, nil
		}
		output.WrittenTo = outputPath
	} else {
		output.Schema = string(data)
	}
	return nil, output, nil
}
