package schema

import (
	"slices"
	"strings"

	"github.com/erraggy/jsonschema/jsonvalue"
	"github.com/erraggy/jsonschema/schemaerrors"
)

// Meta is the resolved identity of a schema object. It lives in the Table,
// keyed by object identity, and never appears in the schema itself.
type Meta struct {
	// AbsoluteURI is the canonical absolute URI of the schema.
	AbsoluteURI string
	// BaseURI is the URI of the enclosing schema resource, without fragment.
	BaseURI string
	// AbsoluteRef is the resolved target of $ref, if present.
	AbsoluteRef string
	// AbsoluteRecursiveRef is the resolved target of $recursiveRef, if present.
	AbsoluteRecursiveRef string
	// AbsoluteDynamicRef is the resolved target of $dynamicRef, if present.
	AbsoluteDynamicRef string
}

// Table maps absolute URIs to schemas. It is populated by [Dereference] and
// read concurrently by validators once dereferencing is complete.
//
// A schema is either a bool or a *jsonvalue.Object.
type Table struct {
	entries   map[string]any
	meta      map[*jsonvalue.Object]*Meta
	dynamic   map[string]map[string]*jsonvalue.Object
	documents []string
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		entries: make(map[string]any),
		meta:    make(map[*jsonvalue.Object]*Meta),
		dynamic: make(map[string]map[string]*jsonvalue.Object),
	}
}

// normalizeKey drops an empty trailing fragment.
func normalizeKey(uri string) string {
	return strings.TrimSuffix(uri, "#")
}

// Lookup returns the schema registered at uri.
func (t *Table) Lookup(uri string) (any, bool) {
	s, ok := t.entries[normalizeKey(uri)]
	return s, ok
}

// Has reports whether uri is registered.
func (t *Table) Has(uri string) bool {
	_, ok := t.entries[normalizeKey(uri)]
	return ok
}

// Meta returns the identity metadata of a dereferenced schema object, or nil.
func (t *Table) Meta(obj *jsonvalue.Object) *Meta {
	return t.meta[obj]
}

// Len returns the number of registered URIs.
func (t *Table) Len() int {
	return len(t.entries)
}

// URIs returns every registered URI, sorted.
func (t *Table) URIs() []string {
	out := make([]string, 0, len(t.entries))
	for k := range t.entries {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Documents returns the root URIs passed to Dereference, in order.
func (t *Table) Documents() []string {
	return slices.Clone(t.documents)
}

// DynamicAnchors returns the $dynamicAnchor declarations of the resource
// identified by resourceURI, keyed by anchor name.
func (t *Table) DynamicAnchors(resourceURI string) map[string]*jsonvalue.Object {
	return t.dynamic[normalizeKey(resourceURI)]
}

// register stores schema at uri. It reports same=true when the exact same
// object was already registered there. A structurally equal schema is
// accepted silently; anything else is a duplicate.
func (t *Table) register(uri string, schema any, path string) (same bool, err error) {
	uri = normalizeKey(uri)
	existing, ok := t.entries[uri]
	if !ok {
		t.entries[uri] = schema
		return false, nil
	}
	if eo, isObj := existing.(*jsonvalue.Object); isObj {
		if so, _ := schema.(*jsonvalue.Object); so == eo {
			return true, nil
		}
	}
	if jsonvalue.Equal(existing, schema) {
		_, isBool := schema.(bool)
		return isBool, nil
	}
	return false, &schemaerrors.DuplicateSchemaURIError{URI: uri, Path: path}
}

// registerAnchor stores an $anchor or $dynamicAnchor target.
func (t *Table) registerAnchor(uri, name string, schema *jsonvalue.Object, path string) error {
	uri = normalizeKey(uri)
	existing, ok := t.entries[uri]
	if !ok {
		t.entries[uri] = schema
		return nil
	}
	if existing == any(schema) || jsonvalue.Equal(existing, schema) {
		return nil
	}
	return &schemaerrors.DuplicateAnchorError{URI: uri, Anchor: name, Path: path}
}

func (t *Table) metaFor(obj *jsonvalue.Object) *Meta {
	m, ok := t.meta[obj]
	if !ok {
		m = &Meta{}
		t.meta[obj] = m
	}
	return m
}

func (t *Table) addDynamicAnchor(resource, name string, obj *jsonvalue.Object) {
	resource = normalizeKey(resource)
	anchors, ok := t.dynamic[resource]
	if !ok {
		anchors = make(map[string]*jsonvalue.Object)
		t.dynamic[resource] = anchors
	}
	if _, exists := anchors[name]; !exists {
		anchors[name] = obj
	}
}

func (t *Table) addDocument(uri string) {
	uri = normalizeKey(uri)
	if !slices.Contains(t.documents, uri) {
		t.documents = append(t.documents, uri)
	}
}
