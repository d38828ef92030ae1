// Package commands provides CLI command handlers for jsonschema.
package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/erraggy/jsonschema"
	"github.com/erraggy/jsonschema/fetch"
	"github.com/erraggy/jsonschema/internal/pathutil"
	"github.com/erraggy/jsonschema/jsonvalue"
	"github.com/erraggy/jsonschema/repository"
	"github.com/erraggy/jsonschema/schema"
)

// Output format constants
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// StdinFilePath is the special file path used to indicate reading from stdin.
const StdinFilePath = "-"

// ErrInvalidInstance is returned by validate when at least one instance
// failed validation. The failures have already been written to the output.
var ErrInvalidInstance = errors.New("commands: instance failed validation")

// ValidateOutputFormat validates an output format and returns an error if invalid.
func ValidateOutputFormat(format string, allowed ...string) error {
	if len(allowed) == 0 {
		allowed = []string{FormatText, FormatJSON, FormatYAML}
	}
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("invalid format '%s'. Valid formats: %s", format, strings.Join(allowed, ", "))
}

// LoadFlags are the flags shared by every command that loads a schema.
type LoadFlags struct {
	Draft   string
	Root    string
	HTTP    bool
	Timeout time.Duration
	Verbose bool
}

func (f *LoadFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.Draft, "draft", "", "draft for schemas without $schema: 4, 7, 2019-09 or 2020-12 (default 2020-12)")
	fs.StringVar(&f.Root, "root", "", "directory confining local references (default: the schema's directory)")
	fs.BoolVar(&f.HTTP, "http", false, "allow fetching referenced documents over http and https")
	fs.DurationVar(&f.Timeout, "timeout", fetch.DefaultTimeout, "timeout for each remote fetch")
	fs.BoolVar(&f.Verbose, "verbose", false, "log document loading to stderr")
}

// draft returns the configured draft, or DraftUnknown when none was given.
func (f *LoadFlags) draft() (schema.Draft, error) {
	if f.Draft == "" {
		return schema.DraftUnknown, nil
	}
	return schema.ParseDraft(f.Draft)
}

// newLogger returns a text logger on w. Only warnings are shown unless
// verbose is set.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newFetcher serves local files below root, and remote documents when
// allowHTTP is set.
func newFetcher(root string, allowHTTP bool, timeout time.Duration) fetch.Fetcher {
	files := &fetch.FileFetcher{Root: root}
	m := fetch.Multi{"file": files, "": files}
	if allowHTTP {
		remote := fetch.NewCache(fetch.NewHTTPFetcher(jsonschema.UserAgent(), timeout), 0, fetch.MaxCachedDocuments)
		m["http"] = remote
		m["https"] = remote
	}
	return m
}

// openSchema loads the schema at path into a new repository along with
// every document it references. path "-" reads the schema from stdin.
func openSchema(ctx context.Context, path string, flags *LoadFlags, stdin io.Reader, stderr io.Writer) (*repository.Repository, any, error) {
	draft, err := flags.draft()
	if err != nil {
		return nil, nil, err
	}

	root := flags.Root
	if root == "" && path != StdinFilePath {
		root = filepath.Dir(path)
	}
	opts := []repository.Option{
		repository.WithLogger(schema.NewSlogAdapter(newLogger(stderr, flags.Verbose))),
		repository.WithFetcher(newFetcher(root, flags.HTTP, flags.Timeout)),
	}
	if draft != schema.DraftUnknown {
		opts = append(opts, repository.WithDefaultDraft(draft))
	}
	repo, err := repository.New(opts...)
	if err != nil {
		return nil, nil, err
	}

	var s any
	if path == StdinFilePath {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, nil, fmt.Errorf("reading stdin: %w", err)
		}
		if s, err = jsonvalue.DecodeDocument(data); err != nil {
			return nil, nil, err
		}
		if _, err := repo.Dereference(s); err != nil {
			return nil, nil, err
		}
	} else {
		docURI, err := pathutil.FileURI(path)
		if err != nil {
			return nil, nil, err
		}
		if s, err = repo.Load(ctx, docURI); err != nil {
			return nil, nil, err
		}
	}

	if err := repo.LoadReferenced(ctx); err != nil {
		return nil, nil, err
	}
	return repo, s, nil
}

// readInstance reads and decodes one instance document.
func readInstance(path string, stdin io.Reader) (any, error) {
	var data []byte
	var err error
	if path == StdinFilePath {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path) //nolint:gosec // path is supplied by the CLI user
	}
	if err != nil {
		return nil, fmt.Errorf("reading instance %s: %w", FormatPath(path), err)
	}
	v, err := jsonvalue.DecodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("decoding instance %s: %w", FormatPath(path), err)
	}
	return v, nil
}

// FormatPath returns a display-friendly path.
// Returns "<stdin>" if the path is StdinFilePath, otherwise returns the path as-is.
func FormatPath(path string) string {
	if path == StdinFilePath {
		return "<stdin>"
	}
	return path
}

// parseArgs parses args, treating --help as a successful no-op. It reports
// whether the command should continue.
func parseArgs(fs *flag.FlagSet, args []string) (bool, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
