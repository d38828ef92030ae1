package mcpserver

import (
	"context"
	"fmt"

	"github.com/erraggy/jsonschema/schema"
	"github.com/erraggy/jsonschema/schemaerrors"
	"github.com/erraggy/jsonschema/validator"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type validateInput struct {
	Schema          documentInput `json:"schema"                     jsonschema:"The JSON Schema to validate against"`
	Instance        documentInput `json:"instance"                   jsonschema:"The JSON or YAML instance to validate"`
	Draft           string        `json:"draft,omitempty"            jsonschema:"Draft for schemas without $schema: 4, 7, 2019-09 or 2020-12"`
	OutputFormat    string        `json:"output_format,omitempty"    jsonschema:"Output format: flag (verdict only) or basic (verdict and errors)"`
	FormatAssertion *bool         `json:"format_assertion,omitempty" jsonschema:"Fail instances whose strings do not match their format keyword"`
	Offset          int           `json:"offset,omitempty"           jsonschema:"Skip the first N errors (for pagination)"`
	Limit           int           `json:"limit,omitempty"            jsonschema:"Maximum number of errors to return (default 100)"`
}

type checkSchemaInput struct {
	Schema documentInput `json:"schema"           jsonschema:"The JSON Schema to check against its meta-schema"`
	Draft  string        `json:"draft,omitempty"  jsonschema:"Draft for schemas without $schema: 4, 7, 2019-09 or 2020-12"`
	Offset int           `json:"offset,omitempty" jsonschema:"Skip the first N errors (for pagination)"`
	Limit  int           `json:"limit,omitempty"  jsonschema:"Maximum number of errors to return (default 100)"`
}

type validateIssue struct {
	InstanceLocation        string `json:"instance_location"`
	KeywordLocation         string `json:"keyword_location"`
	AbsoluteKeywordLocation string `json:"absolute_keyword_location,omitempty"`
	Error                   string `json:"error"`
	ErrorType               string `json:"error_type,omitempty"`
}

type validateOutput struct {
	Valid      bool            `json:"valid"`
	Draft      string          `json:"draft"`
	ErrorCount int             `json:"error_count"`
	Returned   int             `json:"returned"`
	Errors     []validateIssue `json:"errors,omitempty"`
}

// draftOrDefault parses an optional draft argument, falling back to the
// configured default.
func draftOrDefault(s string) (schema.Draft, error) {
	if s == "" {
		return cfg.DefaultDraft, nil
	}
	d, err := schema.ParseDraft(s)
	if err != nil {
		return schema.DraftUnknown, &schemaerrors.ConfigError{Option: "draft", Value: s, Cause: err}
	}
	return d, nil
}

// outputFormatOrDefault parses an optional output_format argument, falling
// back to the configured default.
func outputFormatOrDefault(s string) (validator.OutputFormat, error) {
	if s == "" {
		return cfg.OutputFormat, nil
	}
	f, err := validator.ParseOutputFormat(s)
	if err != nil {
		return f, &schemaerrors.ConfigError{Option: "output_format", Value: s, Cause: err}
	}
	return f, nil
}

func handleValidate(ctx context.Context, _ *mcp.CallToolRequest, input validateInput) (*mcp.CallToolResult, validateOutput, error) {
	draft, err := draftOrDefault(input.Draft)
	if err != nil {
		return errResult(err), validateOutput{}, nil
	}
	format, err := outputFormatOrDefault(input.OutputFormat)
	if err != nil {
		return errResult(err), validateOutput{}, nil
	}
	formatAssertion := cfg.FormatAssertion
	if input.FormatAssertion != nil {
		formatAssertion = *input.FormatAssertion
	}

	instance, err := input.Instance.loadInstance(ctx)
	if err != nil {
		return errResult(fmt.Errorf("loading instance: %w", err)), validateOutput{}, nil
	}
	loaded, err := input.Schema.loadSchema(ctx, draft)
	if err != nil {
		return errResult(fmt.Errorf("loading schema: %w", err)), validateOutput{}, nil
	}

	loaded.mu.Lock()
	defer loaded.mu.Unlock()

	v, err := loaded.repo.Validator(loaded.schema,
		validator.WithOutputFormat(format),
		validator.WithFormatAssertion(formatAssertion),
	)
	if err != nil {
		return errResult(err), validateOutput{}, nil
	}
	result, err := v.Validate(instance)
	if err != nil {
		return errResult(err), validateOutput{}, nil
	}
	return nil, buildValidateOutput(result, v.Draft(), input.Offset, input.Limit), nil
}

func handleCheckSchema(ctx context.Context, _ *mcp.CallToolRequest, input checkSchemaInput) (*mcp.CallToolResult, validateOutput, error) {
	draft, err := draftOrDefault(input.Draft)
	if err != nil {
		return errResult(err), validateOutput{}, nil
	}
	loaded, err := input.Schema.loadSchema(ctx, draft)
	if err != nil {
		return errResult(fmt.Errorf("loading schema: %w", err)), validateOutput{}, nil
	}

	loaded.mu.Lock()
	defer loaded.mu.Unlock()

	result, err := loaded.repo.CheckSchema(loaded.schema)
	if err != nil {
		return errResult(err), validateOutput{}, nil
	}
	return nil, buildValidateOutput(result, detectDraft(loaded.schema, draft), input.Offset, input.Limit), nil
}

// detectDraft reports the draft a loaded schema is evaluated under.
func detectDraft(s any, fallback schema.Draft) schema.Draft {
	return schema.Detect(s, fallback)
}

// buildValidateOutput converts a validation result into a paginated tool
// output.
func buildValidateOutput(result *validator.OutputUnit, draft schema.Draft, offset, limit int) validateOutput {
	output := validateOutput{
		Valid:      result.Valid,
		Draft:      draft.String(),
		ErrorCount: result.ErrorCount(),
	}
	paged := paginate(result.Errors, offset, limit)
	output.Errors = makeSlice[validateIssue](len(paged))
	for _, e := range paged {
		output.Errors = append(output.Errors, validateIssue{
			InstanceLocation:        e.InstanceLocation,
			KeywordLocation:         e.KeywordLocation,
			AbsoluteKeywordLocation: e.AbsoluteKeywordLocation,
			Error:                   e.Error,
			ErrorType:               string(e.ErrorType),
		})
	}
	output.Returned = len(output.Errors)
	return output
}
