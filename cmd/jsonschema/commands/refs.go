package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/erraggy/jsonschema/internal/cliutil"
	"github.com/erraggy/jsonschema/schema"
)

// RefsFlags contains flags for the refs command
type RefsFlags struct {
	LoadFlags
	Format string
	All    bool
	Quiet  bool
}

// SetupRefsFlags creates and configures a FlagSet for the refs command.
func SetupRefsFlags() (*flag.FlagSet, *RefsFlags) {
	fs := flag.NewFlagSet("refs", flag.ContinueOnError)
	flags := &RefsFlags{}

	flags.register(fs)
	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, or yaml")
	fs.BoolVar(&flags.All, "all", false, "also list the keywords of every referenced document")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: tab-separated rows without a header")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: tab-separated rows without a header")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: jsonschema refs [flags] <schema|->\n\n")
		cliutil.Writef(fs.Output(), "List the $schema, $id, $anchor, $dynamicAnchor, $ref, $dynamicRef and\n")
		cliutil.Writef(fs.Output(), "$recursiveRef keywords of a schema with their resolved URIs.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  jsonschema refs schema.json\n")
		cliutil.Writef(fs.Output(), "  jsonschema refs --all --format json schema.json | jq '.[].absolute'\n")
	}

	return fs, flags
}

// HandleRefs executes the refs command
func HandleRefs(args []string, stdout, stderr io.Writer) error {
	fs, flags := SetupRefsFlags()
	fs.SetOutput(stderr)

	if ok, err := parseArgs(fs, args); !ok {
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("refs command requires exactly one schema")
	}
	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}

	schemaPath := fs.Arg(0)
	repo, s, err := openSchema(context.Background(), schemaPath, &flags.LoadFlags, os.Stdin, stderr)
	if err != nil {
		return fmt.Errorf("loading schema %s: %w", FormatPath(schemaPath), err)
	}

	table := repo.Table()
	records := schema.CollectRefs(table, s)
	if flags.All {
		records = nil
		for _, doc := range table.Documents() {
			root, _ := table.Lookup(doc)
			records = append(records, schema.CollectRefs(table, root)...)
		}
	}
	if records == nil {
		records = []schema.RefRecord{}
	}

	if flags.Format != FormatText {
		return RenderStructured(stdout, records, flags.Format)
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{"#" + r.Pointer, r.Property, r.Ref, r.Absolute})
	}
	RenderTable(stdout, []string{"POINTER", "KEYWORD", "VALUE", "RESOLVED"}, rows, flags.Quiet)
	return nil
}
