package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/erraggy/jsonschema/internal/cliutil"
	"github.com/erraggy/jsonschema/validator"
)

// ValidateFlags contains flags for the validate command
type ValidateFlags struct {
	LoadFlags
	Output       string
	Format       string
	AssertFormat bool
	ShortCircuit bool
	Quiet        bool
}

// SetupValidateFlags creates and configures a FlagSet for the validate command.
// Returns the FlagSet and a ValidateFlags struct with bound flag variables.
func SetupValidateFlags() (*flag.FlagSet, *ValidateFlags) {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	flags := &ValidateFlags{}

	flags.register(fs)
	fs.StringVar(&flags.Output, "output", "basic", "result detail: flag or basic")
	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, or yaml")
	fs.BoolVar(&flags.AssertFormat, "assert-format", false, "treat the format keyword as an assertion")
	fs.BoolVar(&flags.ShortCircuit, "short-circuit", false, "stop at the first error of each instance")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: only set the exit code")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: only set the exit code")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: jsonschema validate [flags] <schema|-> <instance|->...\n\n")
		cliutil.Writef(fs.Output(), "Validate JSON or YAML instances against a JSON Schema.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nOutput Formats:\n")
		cliutil.Writef(fs.Output(), "  text (default)  One line per instance followed by its errors\n")
		cliutil.Writef(fs.Output(), "  json            Output units as JSON\n")
		cliutil.Writef(fs.Output(), "  yaml            Output units as YAML\n")
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  jsonschema validate schema.json data.json\n")
		cliutil.Writef(fs.Output(), "  jsonschema validate --draft 7 --assert-format schema.yaml *.yaml\n")
		cliutil.Writef(fs.Output(), "  cat data.json | jsonschema validate -q schema.json -\n")
		cliutil.Writef(fs.Output(), "\nExit Codes:\n")
		cliutil.Writef(fs.Output(), "  0    Every instance is valid\n")
		cliutil.Writef(fs.Output(), "  1    An instance is invalid or the schema could not be loaded\n")
	}

	return fs, flags
}

// instanceResult pairs an instance path with its output unit.
type instanceResult struct {
	Instance string                `json:"instance"`
	Result   *validator.OutputUnit `json:"result"`
}

// HandleValidate executes the validate command
func HandleValidate(args []string, stdout, stderr io.Writer) error {
	fs, flags := SetupValidateFlags()
	fs.SetOutput(stderr)

	if ok, err := parseArgs(fs, args); !ok {
		return err
	}

	if fs.NArg() < 2 {
		fs.Usage()
		return fmt.Errorf("validate command requires a schema and at least one instance")
	}

	// Validate flags early to fail fast before loading anything
	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}
	outputFormat, err := validator.ParseOutputFormat(flags.Output)
	if err != nil {
		return err
	}
	schemaPath, instancePaths := fs.Arg(0), fs.Args()[1:]
	stdinUses := 0
	for _, p := range fs.Args() {
		if p == StdinFilePath {
			stdinUses++
		}
	}
	if stdinUses > 1 {
		return fmt.Errorf("stdin can only be read once")
	}

	ctx := context.Background()
	repo, s, err := openSchema(ctx, schemaPath, &flags.LoadFlags, os.Stdin, stderr)
	if err != nil {
		return fmt.Errorf("loading schema %s: %w", FormatPath(schemaPath), err)
	}

	opts := []validator.Option{
		validator.WithOutputFormat(outputFormat),
		validator.WithFormatAssertion(flags.AssertFormat),
		validator.WithShortCircuit(flags.ShortCircuit),
	}
	v, err := repo.Validator(s, opts...)
	if err != nil {
		return fmt.Errorf("compiling validator: %w", err)
	}

	results := make([]instanceResult, 0, len(instancePaths))
	allValid := true
	for _, path := range instancePaths {
		instance, err := readInstance(path, os.Stdin)
		if err != nil {
			return err
		}
		result, err := v.Validate(instance)
		if err != nil {
			return fmt.Errorf("validating %s: %w", FormatPath(path), err)
		}
		allValid = allValid && result.Valid
		results = append(results, instanceResult{Instance: FormatPath(path), Result: result})
	}

	if !flags.Quiet {
		if flags.Format == FormatText {
			writeResults(stdout, results)
		} else if err := RenderStructured(stdout, results, flags.Format); err != nil {
			return err
		}
	}

	if !allValid {
		return ErrInvalidInstance
	}
	return nil
}

// writeResults prints one verdict line per instance and one indented line
// per error unit.
func writeResults(w io.Writer, results []instanceResult) {
	for _, r := range results {
		if r.Result.Valid {
			cliutil.Writef(w, "%s: valid\n", r.Instance)
			continue
		}
		cliutil.Writef(w, "%s: invalid\n", r.Instance)
		for _, e := range r.Result.Errors {
			location := e.InstanceLocation
			if location == "" {
				location = "(root)"
			}
			cliutil.Writef(w, "  %s: %s [%s]\n", location, e.Error, e.KeywordLocation)
		}
	}
}
