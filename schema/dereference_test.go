package schema

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/jsonschema/jsonvalue"
	"github.com/erraggy/jsonschema/schemaerrors"
)

func mustDecode(t *testing.T, s string) any {
	t.Helper()
	v, err := jsonvalue.Decode([]byte(s))
	require.NoError(t, err)
	return v
}

func lookupObject(t *testing.T, table *Table, uri string) *jsonvalue.Object {
	t.Helper()
	v, ok := table.Lookup(uri)
	require.True(t, ok, "expected %s to be registered", uri)
	obj, ok := v.(*jsonvalue.Object)
	require.True(t, ok, "expected %s to be an object schema", uri)
	return obj
}

func TestDereference_RegistersResourcesAndAnchors(t *testing.T) {
	doc := mustDecode(t, `{
		"$id": "https://example.com/root.json",
		"$defs": {
			"a": {"$anchor": "A", "type": "string"},
			"b": {
				"$id": "b.json",
				"properties": {"x": {"$ref": "#/$defs/y"}},
				"$defs": {"y": true}
			}
		}
	}`)
	table := NewTable()
	require.NoError(t, Dereference(table, doc, "", nil))

	root := lookupObject(t, table, "https://example.com/root.json")
	assert.Same(t, doc, any(root))

	a := lookupObject(t, table, "https://example.com/root.json#/$defs/a")
	assert.Same(t, a, lookupObject(t, table, "https://example.com/root.json#A"))

	b := lookupObject(t, table, "https://example.com/b.json")
	assert.Same(t, b, lookupObject(t, table, "https://example.com/root.json#/$defs/b"))

	x := lookupObject(t, table, "https://example.com/b.json#/properties/x")
	assert.Same(t, x, lookupObject(t, table, "https://example.com/root.json#/$defs/b/properties/x"))

	meta := table.Meta(x)
	require.NotNil(t, meta)
	assert.Equal(t, "https://example.com/b.json#/properties/x", meta.AbsoluteURI)
	assert.Equal(t, "https://example.com/b.json", meta.BaseURI)
	assert.Equal(t, "https://example.com/b.json#/$defs/y", meta.AbsoluteRef)

	y, ok := table.Lookup(meta.AbsoluteRef)
	require.True(t, ok)
	assert.Equal(t, true, y)

	assert.Equal(t, []string{"https://example.com/root.json"}, table.Documents())
	assert.False(t, root.Has("__absolute_uri__"), "identity must not leak into the schema")
}

func TestDereference_Idempotent(t *testing.T) {
	doc := mustDecode(t, `{"$id": "https://example.com/s", "$anchor": "top", "items": {"$ref": "#top"}}`)
	table := NewTable()
	require.NoError(t, Dereference(table, doc, "", nil))
	n := table.Len()

	require.NoError(t, Dereference(table, doc, "", nil))
	assert.Equal(t, n, table.Len())

	// A separately decoded but equal document is accepted as well and gets
	// its own metadata.
	copyDoc := mustDecode(t, `{"$id": "https://example.com/s", "$anchor": "top", "items": {"$ref": "#top"}}`)
	require.NoError(t, Dereference(table, copyDoc, "", nil))
	assert.Equal(t, n, table.Len())
	assert.NotNil(t, table.Meta(copyDoc.(*jsonvalue.Object)))
}

func TestDereference_DuplicateSchemaURI(t *testing.T) {
	table := NewTable()
	require.NoError(t, Dereference(table, mustDecode(t, `{"$id": "https://example.com/s", "type": "string"}`), "", nil))

	err := Dereference(table, mustDecode(t, `{"$id": "https://example.com/s", "type": "number"}`), "", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, schemaerrors.ErrDuplicateSchemaURI))

	var dupErr *schemaerrors.DuplicateSchemaURIError
	require.True(t, errors.As(err, &dupErr))
	assert.Equal(t, "https://example.com/s", dupErr.URI)
}

func TestDereference_DuplicateAnchor(t *testing.T) {
	doc := mustDecode(t, `{
		"$defs": {
			"a": {"$anchor": "x", "type": "string"},
			"b": {"$anchor": "x", "type": "number"}
		}
	}`)
	err := Dereference(NewTable(), doc, "https://example.com/s", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, schemaerrors.ErrDuplicateAnchor))

	var anchorErr *schemaerrors.DuplicateAnchorError
	require.True(t, errors.As(err, &anchorErr))
	assert.Equal(t, "x", anchorErr.Anchor)
	assert.Equal(t, "/$defs/b", anchorErr.Path)
}

func TestDereference_FragmentIDIsAlias(t *testing.T) {
	doc := mustDecode(t, `{"$id": "#a", "allOf": [{"$ref": "#a"}]}`)
	table := NewTable()
	require.NoError(t, Dereference(table, doc, "", nil))

	assert.Same(t, doc, any(lookupObject(t, table, DefaultBaseURI+"#a")))
	assert.Same(t, doc, any(lookupObject(t, table, DefaultBaseURI)))

	inner := lookupObject(t, table, DefaultBaseURI+"#/allOf/0")
	assert.Equal(t, DefaultBaseURI+"#a", table.Meta(inner).AbsoluteRef)
}

func TestDereference_RequiresAbsoluteBase(t *testing.T) {
	err := Dereference(NewTable(), mustDecode(t, `{}`), "relative/path.json", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, schemaerrors.ErrInvalidURL))
}

func TestDereference_FragmentNormalization(t *testing.T) {
	doc := mustDecode(t, `{
		"$defs": {"a b": {"type": "integer"}, "c\"d": {"type": "string"}},
		"properties": {
			"p": {"$ref": "#/$defs/a%20b"},
			"q": {"$ref": "#/$defs/c%22d"}
		}
	}`)
	table := NewTable()
	require.NoError(t, Dereference(table, doc, "https://example.com/s", nil))

	for _, prop := range []string{"p", "q"} {
		obj := lookupObject(t, table, "https://example.com/s#/properties/"+prop)
		ref := table.Meta(obj).AbsoluteRef
		_, ok := table.Lookup(ref)
		assert.True(t, ok, "ref %s should resolve", ref)
	}
}

func TestDereference_UnknownKeywordsAreInert(t *testing.T) {
	doc := mustDecode(t, `{
		"x-custom": {"$id": "ignored.json", "$anchor": "nope", "type": "string"},
		"$ref": "#/x-custom"
	}`)
	table := NewTable()
	require.NoError(t, Dereference(table, doc, "https://example.com/s", nil))

	assert.False(t, table.Has("https://example.com/ignored.json"))
	assert.False(t, table.Has("https://example.com/s#nope"))
	assert.True(t, table.Has("https://example.com/s#/x-custom"))
}

func TestDereference_RetrievalURIDiffersFromID(t *testing.T) {
	doc := mustDecode(t, `{"$id": "https://example.com/y.json", "type": "object"}`)
	table := NewTable()
	require.NoError(t, Dereference(table, doc, "https://mirror.example.com/x.json", nil))

	assert.True(t, table.Has("https://example.com/y.json"))
	assert.True(t, table.Has("https://mirror.example.com/x.json"))
	assert.Equal(t, "https://example.com/y.json", table.Meta(doc.(*jsonvalue.Object)).AbsoluteURI)
}

func TestDereference_RelativeIDWithPath(t *testing.T) {
	doc := mustDecode(t, `{
		"$id": "http://x.test/root.json",
		"$defs": {
			"a": {
				"$id": "sub/a.json",
				"$anchor": "top",
				"$defs": {"b": {"$id": "deeper/b.json", "type": "string"}}
			}
		}
	}`)
	table := NewTable()
	require.NoError(t, Dereference(table, doc, "", nil))

	a := lookupObject(t, table, "http://x.test/sub/a.json")
	assert.Same(t, a, lookupObject(t, table, "http://x.test/root.json#/$defs/a"))
	assert.Same(t, a, lookupObject(t, table, "http://x.test/sub/a.json#top"))
	assert.Equal(t, "http://x.test/sub/a.json", table.Meta(a).BaseURI)
	assert.False(t, table.Has("http://x.test/sub/sub/a.json"))

	b := lookupObject(t, table, "http://x.test/sub/deeper/b.json")
	assert.Same(t, b, lookupObject(t, table, "http://x.test/sub/a.json#/$defs/b"))
	assert.Same(t, b, lookupObject(t, table, "http://x.test/root.json#/$defs/a/$defs/b"))
	assert.False(t, table.Has("http://x.test/sub/deeper/deeper/b.json"))
}

func TestDereference_RelativeFolderID(t *testing.T) {
	doc := mustDecode(t, `{
		"$id": "http://localhost:1234/root",
		"properties": {
			"x": {"$id": "folder/", "items": {"$ref": "item.json"}}
		}
	}`)
	table := NewTable()
	require.NoError(t, Dereference(table, doc, "", nil))

	assert.True(t, table.Has("http://localhost:1234/folder/"))
	assert.False(t, table.Has("http://localhost:1234/folder/folder/"))

	items := lookupObject(t, table, "http://localhost:1234/folder/#/items")
	assert.Equal(t, "http://localhost:1234/folder/item.json", table.Meta(items).AbsoluteRef)
}

func TestDereference_LegacyID(t *testing.T) {
	t.Run("draft 4 id declares a resource", func(t *testing.T) {
		doc := mustDecode(t, `{
			"$schema": "http://json-schema.org/draft-04/schema#",
			"id": "http://example.com/root.json",
			"definitions": {"a": {"id": "sub/a.json", "type": "string"}}
		}`)
		table := NewTable()
		require.NoError(t, Dereference(table, doc, "", nil))

		assert.True(t, table.Has("http://example.com/root.json"))
		assert.True(t, table.Has("http://example.com/sub/a.json"))
		id, ok := ID(doc.(*jsonvalue.Object))
		assert.True(t, ok)
		assert.Equal(t, "http://example.com/root.json", id)
	})

	t.Run("2020-12 id is an ordinary keyword", func(t *testing.T) {
		doc := mustDecode(t, `{
			"$schema": "https://json-schema.org/draft/2020-12/schema",
			"$id": "https://example.com/root.json",
			"$defs": {"a": {"id": "other.json", "$anchor": "A"}}
		}`)
		table := NewTable()
		require.NoError(t, Dereference(table, doc, "", nil))

		assert.False(t, table.Has("https://example.com/other.json"))
		a := lookupObject(t, table, "https://example.com/root.json#A")
		assert.Equal(t, "https://example.com/root.json", table.Meta(a).BaseURI)
	})

	t.Run("2019-09 root id does not set the base", func(t *testing.T) {
		doc := mustDecode(t, `{
			"$schema": "https://json-schema.org/draft/2019-09/schema",
			"id": "https://example.com/ignored.json"
		}`)
		table := NewTable()
		require.NoError(t, Dereference(table, doc, "", nil))

		assert.True(t, table.Has(DefaultBaseURI))
		assert.False(t, table.Has("https://example.com/ignored.json"))
		_, ok := ID(doc.(*jsonvalue.Object))
		assert.False(t, ok)
	})
}

func TestDereference_DynamicAnchors(t *testing.T) {
	doc := mustDecode(t, `{
		"$id": "https://example.com/tree",
		"$dynamicAnchor": "node",
		"properties": {"children": {"items": {"$dynamicRef": "#node"}}},
		"$defs": {
			"other": {"$id": "other", "$dynamicAnchor": "node"}
		}
	}`)
	table := NewTable()
	require.NoError(t, Dereference(table, doc, "", nil))

	anchors := table.DynamicAnchors("https://example.com/tree")
	require.Contains(t, anchors, "node")
	assert.Same(t, doc, any(anchors["node"]))
	assert.Contains(t, table.DynamicAnchors("https://example.com/other"), "node")

	items := lookupObject(t, table, "https://example.com/tree#/properties/children/items")
	assert.Equal(t, "https://example.com/tree#node", table.Meta(items).AbsoluteDynamicRef)

	fromTree := DynamicAnchors(doc)
	assert.Len(t, fromTree, 1)
	assert.Same(t, doc, any(fromTree["#node"]))
}

func TestDereference_WrongTypedKeywords(t *testing.T) {
	tests := []struct {
		name    string
		schema  string
		keyword string
	}{
		{name: "$id", schema: `{"$id": 5}`, keyword: "$id"},
		{name: "$ref", schema: `{"$ref": 5}`, keyword: "$ref"},
		{name: "$anchor", schema: `{"$anchor": ""}`, keyword: "$anchor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Dereference(NewTable(), mustDecode(t, tt.schema), "https://example.com/s", nil)
			require.Error(t, err)
			var kwErr *schemaerrors.KeywordError
			require.True(t, errors.As(err, &kwErr))
			assert.Equal(t, tt.keyword, kwErr.Keyword)
		})
	}
}

func TestDereference_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	doc := mustDecode(t, `{"$id": "https://example.com/s", "$defs": {"a": {"$anchor": "a"}}}`)
	require.NoError(t, Dereference(NewTable(), doc, "", logger))

	out := buf.String()
	assert.Contains(t, out, "registered schema")
	assert.Contains(t, out, "registered anchor")
	assert.Contains(t, out, "https://example.com/s#a")
}

func TestCollectRefs(t *testing.T) {
	doc := mustDecode(t, `{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"$id": "https://example.com/root",
		"properties": {
			"a": {"$ref": "#/$defs/a"},
			"b": {"$ref": "other.json"}
		},
		"$defs": {
			"a": {"$id": "nested", "$anchor": "n", "$dynamicRef": "#meta"}
		}
	}`)
	table := NewTable()
	require.NoError(t, Dereference(table, doc, "", nil))

	records := CollectRefs(table, doc)
	type row struct{ prop, pointer, absolute, enclosing string }
	var got []row
	for _, r := range records {
		got = append(got, row{r.Property, r.Pointer, r.Absolute, r.EnclosingID})
	}
	assert.Equal(t, []row{
		{"$schema", "", "https://json-schema.org/draft/2020-12/schema", "https://example.com/root"},
		{"$id", "", "https://example.com/root", "https://example.com/root"},
		{"$ref", "/properties/a", "https://example.com/root#/$defs/a", "https://example.com/root"},
		{"$ref", "/properties/b", "https://example.com/other.json", "https://example.com/root"},
		{"$id", "/$defs/a", "https://example.com/nested", "https://example.com/nested"},
		{"$anchor", "/$defs/a", "https://example.com/nested#n", "https://example.com/nested"},
		{"$dynamicRef", "/$defs/a", "https://example.com/nested#meta", "https://example.com/nested"},
	}, got)

	// Without a table the base is tracked from $id.
	assert.Equal(t, records[4].Absolute, CollectRefs(nil, doc)[4].Absolute)
}
