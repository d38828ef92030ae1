package fetch

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/erraggy/jsonschema/internal/uri"
	"github.com/erraggy/jsonschema/schemaerrors"
)

// FileFetcher reads documents from the local file system. It accepts
// file:// URIs and plain paths; relative paths are taken relative to Root.
// Any path that resolves outside Root is rejected.
type FileFetcher struct {
	// Root confines every read. Empty means the working directory.
	Root string
	// MaxSize limits the document size in bytes. Zero means MaxDocumentSize.
	MaxSize int64
}

// Fetch reads the file named by rawURI.
func (f *FileFetcher) Fetch(ctx context.Context, rawURI string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &schemaerrors.FetchError{URI: rawURI, Message: "canceled", Cause: err}
	}
	path, err := f.Path(rawURI)
	if err != nil {
		return nil, wrap(rawURI, "invalid file reference", err)
	}

	file, err := os.Open(path) //nolint:gosec // path is confined to Root
	if err != nil {
		return nil, &schemaerrors.FetchError{URI: rawURI, Message: "failed to open file", Cause: err}
	}
	defer func() {
		_ = file.Close()
	}()
	return readLimited(rawURI, file, f.MaxSize)
}

// Path maps rawURI to a cleaned absolute file path inside Root.
func (f *FileFetcher) Path(rawURI string) (string, error) {
	p := rawURI
	if u, err := uri.Parse(rawURI); err == nil && strings.EqualFold(u.Scheme, "file") {
		if u.Authority != "" && u.Authority != "localhost" {
			return "", &schemaerrors.FetchError{URI: rawURI, Message: fmt.Sprintf("unsupported file host %q", u.Authority)}
		}
		p, err = url.PathUnescape(u.Path)
		if err != nil {
			return "", err
		}
		p = filepath.FromSlash(p)
	} else if idx := strings.IndexByte(p, '#'); idx >= 0 {
		p = p[:idx]
	}

	root := f.Root
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root directory: %w", err)
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(absRoot, p)
	}
	absPath := filepath.Clean(p)

	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &schemaerrors.FetchError{URI: rawURI, Message: "path escapes root directory " + absRoot}
	}
	return absPath, nil
}

// readLimited reads r, failing once more than limit bytes arrive.
func readLimited(rawURI string, r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = MaxDocumentSize
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, &schemaerrors.FetchError{URI: rawURI, Message: "failed to read document", Cause: err}
	}
	if int64(len(data)) > limit {
		return nil, &schemaerrors.FetchError{
			URI: rawURI,
			Cause: &schemaerrors.ResourceLimitError{
				ResourceType: "document_size",
				Limit:        limit,
				Message:      "document exceeds maximum size",
			},
		}
	}
	return data, nil
}
