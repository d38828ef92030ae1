// Package testutil provides test utilities and fixtures for unit tests.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/erraggy/jsonschema/jsonvalue"
	"github.com/erraggy/jsonschema/schema"
	"github.com/erraggy/jsonschema/schemaerrors"
)

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// MustDecode decodes JSON text into the value model, failing the test on error.
func MustDecode(t testing.TB, s string) any {
	t.Helper()

	v, err := jsonvalue.Decode([]byte(s))
	if err != nil {
		t.Fatalf("Failed to decode JSON: %v", err)
	}
	return v
}

// MustDecodeYAML decodes YAML text into the value model, failing the test on
// error.
func MustDecodeYAML(t testing.TB, s string) any {
	t.Helper()

	v, err := jsonvalue.DecodeYAML([]byte(s))
	if err != nil {
		t.Fatalf("Failed to decode YAML: %v", err)
	}
	return v
}

// Dereferenced decodes a schema and dereferences it into a fresh table at
// baseURI (empty for the schema's own $id or the default base).
func Dereferenced(t testing.TB, s, baseURI string) (*schema.Table, any) {
	t.Helper()

	doc := MustDecode(t, s)
	table := schema.NewTable()
	if err := schema.Dereference(table, doc, baseURI, nil); err != nil {
		t.Fatalf("Failed to dereference schema: %v", err)
	}
	return table, doc
}

// WriteTempFile writes content to name inside a per-test temporary directory.
// Returns the path to the file.
// The file is automatically cleaned up when the test completes (via t.TempDir).
func WriteTempFile(t testing.TB, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write temporary file: %v", err)
	}
	return path
}

// Fetcher serves documents from memory and records every request.
// It satisfies the fetch.Fetcher interface.
type Fetcher struct {
	mu       sync.Mutex
	docs     map[string]string
	requests []string
}

// NewFetcher returns a Fetcher serving docs, keyed by URI.
func NewFetcher(docs map[string]string) *Fetcher {
	return &Fetcher{docs: docs}
}

// Fetch returns the document registered at uri.
func (f *Fetcher) Fetch(_ context.Context, uri string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, uri)
	doc, ok := f.docs[uri]
	if !ok {
		return nil, &schemaerrors.FetchError{URI: uri, Message: "not found"}
	}
	return []byte(doc), nil
}

// Requests returns the URIs fetched so far, in order.
func (f *Fetcher) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}
