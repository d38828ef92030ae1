// Package format provides the predicates behind the "format" keyword.
//
// A [Table] maps a format name to a [Predicate]. Tables are plain values
// owned by a repository or validator; there is no process-wide registry.
// Formats missing from a table are vacuously valid.
//
//	formats := format.Default()
//	formats.Register("semver", func(s string) bool {
//	    return semverRegex.MatchString(s)
//	})
package format

import (
	"maps"
	"slices"
	"sync"
)

// Predicate reports whether s conforms to a format.
type Predicate func(s string) bool

// Table is a set of named format predicates. It is safe for concurrent use.
type Table struct {
	mu    sync.RWMutex
	preds map[string]Predicate
}

// New returns an empty table.
func New() *Table {
	return &Table{preds: make(map[string]Predicate)}
}

// Default returns a fresh table holding the built-in formats.
func Default() *Table {
	t := New()
	for name, p := range builtins {
		t.preds[name] = p
	}
	return t
}

// Lookup returns the predicate registered under name.
func (t *Table) Lookup(name string) (Predicate, bool) {
	if t == nil {
		return nil, false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.preds[name]
	return p, ok
}

// Register adds or replaces a predicate. A nil predicate removes the format.
func (t *Table) Register(name string, p Predicate) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p == nil {
		delete(t.preds, name)
		return
	}
	t.preds[name] = p
}

// Names returns the registered format names, sorted.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Sorted(maps.Keys(t.preds))
}

// Clone returns an independent copy of the table.
func (t *Table) Clone() *Table {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return &Table{preds: maps.Clone(t.preds)}
}

// Check applies the named format to s. Unknown formats pass.
func (t *Table) Check(name, s string) bool {
	p, ok := t.Lookup(name)
	if !ok {
		return true
	}
	return p(s)
}

var builtins = map[string]Predicate{
	"date":                  IsDate,
	"time":                  IsTime,
	"date-time":             IsDateTime,
	"duration":              IsDuration,
	"email":                 IsEmail,
	"idn-email":             IsIDNEmail,
	"hostname":              IsHostname,
	"idn-hostname":          IsIDNHostname,
	"ipv4":                  IsIPv4,
	"ipv6":                  IsIPv6,
	"uri":                   IsURI,
	"uri-reference":         IsURIReference,
	"iri":                   IsIRI,
	"iri-reference":         IsIRIReference,
	"uri-template":          IsURITemplate,
	"uuid":                  IsUUID,
	"regex":                 IsRegex,
	"json-pointer":          IsJSONPointer,
	"relative-json-pointer": IsRelativeJSONPointer,
}
