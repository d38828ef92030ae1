// Package cliutil holds output helpers shared by the jsonschema commands.
package cliutil

import (
	"fmt"
	"io"
	"log/slog"
)

// Writef writes formatted output to w. A failed write, such as a closed
// pipe while printing validation reports, is logged through slog rather
// than returned, so report rendering never aborts half way.
func Writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		slog.Warn("write failed", "error", err)
	}
}
