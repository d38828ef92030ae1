package fetch

import (
	"context"
	"errors"
	"strings"

	"github.com/erraggy/jsonschema/internal/uri"
	"github.com/erraggy/jsonschema/schemaerrors"
)

// MaxDocumentSize is the default limit, in bytes, on a fetched document.
const MaxDocumentSize = 10 * 1024 * 1024

// Fetcher returns the raw bytes of the document identified by an absolute
// URI without fragment.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// FetcherFunc adapts an ordinary function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, uri string) ([]byte, error)

// Fetch calls f(ctx, uri).
func (f FetcherFunc) Fetch(ctx context.Context, uri string) ([]byte, error) {
	return f(ctx, uri)
}

// MapFetcher serves documents from memory, keyed by URI.
type MapFetcher map[string][]byte

// Fetch returns a copy of the document stored under uri.
func (m MapFetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &schemaerrors.FetchError{URI: uri, Message: "canceled", Cause: err}
	}
	data, ok := m[uri]
	if !ok {
		return nil, &schemaerrors.FetchError{URI: uri, Message: "not found"}
	}
	return append([]byte(nil), data...), nil
}

// Multi dispatches by lower-cased URI scheme, e.g. "https" or "file".
// The empty key serves URIs without a scheme.
type Multi map[string]Fetcher

// Fetch forwards to the Fetcher registered for the scheme of uri.
func (m Multi) Fetch(ctx context.Context, rawURI string) ([]byte, error) {
	u, err := uri.Parse(rawURI)
	if err != nil {
		return nil, &schemaerrors.FetchError{URI: rawURI, Message: "invalid URI", Cause: err}
	}
	f, ok := m[strings.ToLower(u.Scheme)]
	if !ok || f == nil {
		return nil, &schemaerrors.FetchError{URI: rawURI, Message: "unsupported scheme " + quoteScheme(u.Scheme)}
	}
	return f.Fetch(ctx, rawURI)
}

func quoteScheme(s string) string {
	if s == "" {
		return "(none)"
	}
	return `"` + s + `"`
}

// wrap turns err into a *schemaerrors.FetchError unless it already is one.
func wrap(rawURI, message string, err error) error {
	var fe *schemaerrors.FetchError
	if errors.As(err, &fe) {
		return err
	}
	return &schemaerrors.FetchError{URI: rawURI, Message: message, Cause: err}
}
