package fetch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/jsonschema/schemaerrors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileFetcher(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "schemas/a b.json", `{"type":"integer"}`)
	f := &FileFetcher{Root: root}

	t.Run("relative path", func(t *testing.T) {
		data, err := f.Fetch(context.Background(), "schemas/a b.json")
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"integer"}`, string(data))
	})

	t.Run("file URI with escapes", func(t *testing.T) {
		u := "file://" + strings.ReplaceAll(filepath.ToSlash(path), " ", "%20")
		data, err := f.Fetch(context.Background(), u)
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"integer"}`, string(data))
	})

	t.Run("fragment ignored", func(t *testing.T) {
		data, err := f.Fetch(context.Background(), "schemas/a b.json#/type")
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"integer"}`, string(data))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := f.Fetch(context.Background(), "schemas/missing.json")
		require.Error(t, err)
		assert.ErrorIs(t, err, schemaerrors.ErrFetch)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestFileFetcherPathTraversal(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "root")
	writeFile(t, root, "inside.json", `{}`)
	writeFile(t, parent, "secret.json", `{}`)
	f := &FileFetcher{Root: root}

	for _, ref := range []string{
		"../secret.json",
		"nested/../../secret.json",
		"file://" + filepath.ToSlash(filepath.Join(parent, "secret.json")),
	} {
		t.Run(ref, func(t *testing.T) {
			_, err := f.Fetch(context.Background(), ref)
			require.Error(t, err)
			assert.ErrorIs(t, err, schemaerrors.ErrFetch)
			assert.Contains(t, err.Error(), "escapes root directory")
		})
	}

	// A name that merely starts with two dots stays inside the root.
	writeFile(t, root, "..data.json", `{}`)
	_, err := f.Fetch(context.Background(), "..data.json")
	assert.NoError(t, err)
}

func TestFileFetcherRemoteHost(t *testing.T) {
	f := &FileFetcher{Root: t.TempDir()}
	_, err := f.Fetch(context.Background(), "file://server/share/a.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported file host "server"`)
}

func TestFileFetcherMaxSize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "big.json", `{"description":"`+strings.Repeat("x", 64)+`"}`)
	f := &FileFetcher{Root: root, MaxSize: 16}

	_, err := f.Fetch(context.Background(), "big.json")
	require.Error(t, err)
	assert.ErrorIs(t, err, schemaerrors.ErrFetch)
	assert.ErrorIs(t, err, schemaerrors.ErrResourceLimit)
}
