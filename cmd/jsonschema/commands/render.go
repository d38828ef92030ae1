package commands

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"go.yaml.in/yaml/v4"

	"github.com/erraggy/jsonschema/internal/cliutil"
	"github.com/erraggy/jsonschema/jsonvalue"
)

// RenderTable renders rows under headers. In quiet mode, headers are
// omitted and rows are tab-separated for piping.
func RenderTable(w io.Writer, headers []string, rows [][]string, quiet bool) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	writeRow := func(cells []string) {
		for i, cell := range cells {
			switch {
			case quiet && i > 0:
				cliutil.Writef(w, "\t%s", cell)
			case quiet:
				cliutil.Writef(w, "%s", cell)
			case i == len(cells)-1:
				// no padding after the last column
				cliutil.Writef(w, "%s%s", separator(i), cell)
			default:
				cliutil.Writef(w, "%s%-*s", separator(i), widths[i], cell)
			}
		}
		cliutil.Writef(w, "\n")
	}

	if !quiet {
		writeRow(headers)
	}
	for _, row := range rows {
		writeRow(row)
	}
}

func separator(column int) string {
	if column == 0 {
		return ""
	}
	return "  "
}

// RenderStructured writes v as indented JSON or as YAML. Values are encoded
// as JSON first so that custom JSON encodings and member order carry over
// to YAML.
func RenderStructured(w io.Writer, v any, format string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling to %s: %w", format, err)
	}

	switch format {
	case FormatJSON:
	case FormatYAML:
		doc, err := jsonvalue.Decode(data)
		if err != nil {
			return fmt.Errorf("marshaling to %s: %w", format, err)
		}
		if data, err = yaml.Marshal(jsonvalue.ToYAMLNode(doc)); err != nil {
			return fmt.Errorf("marshaling to %s: %w", format, err)
		}
	default:
		return fmt.Errorf("invalid format for structured output: %s", format)
	}

	cliutil.Writef(w, "%s", data)
	if len(data) > 0 && data[len(data)-1] != '\n' {
		cliutil.Writef(w, "\n")
	}
	return nil
}
