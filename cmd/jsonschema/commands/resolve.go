package commands

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/erraggy/jsonschema/internal/cliutil"
	"github.com/erraggy/jsonschema/internal/fileutil"
	"github.com/erraggy/jsonschema/internal/pathutil"
)

// ResolveFlags contains flags for the resolve command
type ResolveFlags struct {
	LoadFlags
	Format string
	Output string
}

// SetupResolveFlags creates and configures a FlagSet for the resolve command.
func SetupResolveFlags() (*flag.FlagSet, *ResolveFlags) {
	fs := flag.NewFlagSet("resolve", flag.ContinueOnError)
	flags := &ResolveFlags{}

	flags.register(fs)
	fs.StringVar(&flags.Format, "format", FormatJSON, "output format: json or yaml")
	fs.StringVar(&flags.Output, "o", "", "write the result to this file instead of stdout")
	fs.StringVar(&flags.Output, "output", "", "write the result to this file instead of stdout")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: jsonschema resolve [flags] <schema|->\n\n")
		cliutil.Writef(fs.Output(), "Print the schema with every $ref, $dynamicRef and $recursiveRef inlined.\n")
		cliutil.Writef(fs.Output(), "Recursive schemas cannot be inlined and are reported as errors.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  jsonschema resolve schema.json\n")
		cliutil.Writef(fs.Output(), "  jsonschema resolve --format yaml --http schema.yaml\n")
		cliutil.Writef(fs.Output(), "  jsonschema resolve -o bundled.json schema.json\n")
	}

	return fs, flags
}

// HandleResolve executes the resolve command
func HandleResolve(args []string, stdout, stderr io.Writer) error {
	fs, flags := SetupResolveFlags()
	fs.SetOutput(stderr)

	if ok, err := parseArgs(fs, args); !ok {
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("resolve command requires exactly one schema")
	}
	if err := ValidateOutputFormat(flags.Format, FormatJSON, FormatYAML); err != nil {
		return err
	}

	schemaPath := fs.Arg(0)
	var outputPath string
	if flags.Output != "" {
		var err error
		if outputPath, err = pathutil.SanitizeOutputPath(flags.Output); err != nil {
			return err
		}
	}

	repo, s, err := openSchema(context.Background(), schemaPath, &flags.LoadFlags, os.Stdin, stderr)
	if err != nil {
		return fmt.Errorf("loading schema %s: %w", FormatPath(schemaPath), err)
	}

	resolved, err := repo.Resolve(s)
	if err != nil {
		return fmt.Errorf("resolving schema %s: %w", FormatPath(schemaPath), err)
	}
	if outputPath == "" {
		return RenderStructured(stdout, resolved, flags.Format)
	}

	var buf bytes.Buffer
	if err := RenderStructured(&buf, resolved, flags.Format); err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, buf.Bytes(), fileutil.OwnerReadWrite); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	cliutil.Writef(stderr, "Resolved schema written to %s\n", outputPath)
	return nil
}
