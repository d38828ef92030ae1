package schema

import (
	"fmt"

	"github.com/erraggy/jsonschema/internal/pointer"
	"github.com/erraggy/jsonschema/internal/uri"
	"github.com/erraggy/jsonschema/jsonvalue"
	"github.com/erraggy/jsonschema/schemaerrors"
)

// DefaultBaseURI is the base given to schemas that carry no $id and are
// dereferenced without an explicit base.
const DefaultBaseURI = "https://json-schema.invalid/schema"

// Dereference walks schema once, assigning an absolute URI to every
// subschema and registering it in t. References are resolved to absolute
// URIs and recorded in the schema's [Meta]; their targets need not be
// present yet.
//
// baseURI is the retrieval URI of the document. When empty, the schema's
// own $id is used, falling back to [DefaultBaseURI].
//
// Dereferencing the same schema object again is a no-op.
func Dereference(t *Table, schema any, baseURI string, logger Logger) error {
	if baseURI == "" {
		baseURI = DefaultBaseURI
		if obj, ok := schema.(*jsonvalue.Object); ok {
			if id, ok := identity(obj, legacyIDAllowed(schema)); ok {
				if u, err := uri.Parse(id); err == nil && u.IsAbsolute() {
					baseURI = u.WithoutFragment().Href()
				}
			}
		}
	}
	base, err := uri.Parse(baseURI)
	if err != nil {
		return err
	}
	if !base.IsAbsolute() {
		return &schemaerrors.InvalidURLError{URL: baseURI, Message: "base URI must be absolute"}
	}
	base = base.WithoutFragment()
	d := &dereferencer{t: t, logger: orNop(logger), legacyID: legacyIDAllowed(schema)}
	if err := d.walk(schema, frame{base: base, isRoot: true}); err != nil {
		return err
	}
	// A document whose $id differs from its retrieval URI stays reachable
	// under both.
	if !t.Has(base.Href()) {
		if _, err := t.register(base.Href(), schema, ""); err != nil {
			return err
		}
	}
	t.addDocument(base.Href())
	return nil
}

type dereferencer struct {
	t        *Table
	logger   Logger
	legacyID bool // "id" declares a resource, as in draft 4
}

// legacyIDAllowed reports whether "id" identifies a resource in the
// document rooted at schema: only when it declares draft 4 or no draft.
func legacyIDAllowed(schema any) bool {
	switch Detect(schema, DraftUnknown) {
	case DraftUnknown, Draft4:
		return true
	}
	return false
}

// frame is the walk position of one schema.
type frame struct {
	base    uri.URL
	pointer string // JSON pointer within the current resource
	path    string // JSON pointer within the document, for error reporting
	isRoot  bool   // may declare $id and anchors
	alias   bool   // second pass over an embedded resource: pointers only
	entered bool   // base already re-rooted at this object's $id
}

func (f frame) child(token string, isRoot bool) frame {
	return frame{
		base:    f.base,
		pointer: pointer.Append(f.pointer, token),
		path:    pointer.Append(f.path, token),
		isRoot:  isRoot,
		alias:   f.alias,
	}
}

func (f frame) uri() string {
	if f.pointer == "" {
		return f.base.Href()
	}
	return f.base.WithFragment(pointer.Fragment(f.pointer)).Href()
}

func (d *dereferencer) walk(v any, f frame) error {
	obj, isObj := v.(*jsonvalue.Object)
	if _, isBool := v.(bool); !isObj && !isBool {
		return nil
	}

	if isObj && f.isRoot && !f.alias && !f.entered {
		var err error
		if f, err = d.enterResource(obj, f); err != nil {
			return err
		}
	}

	schemaURI := f.uri()
	same, err := d.t.register(schemaURI, v, f.path)
	if err != nil || same || !isObj {
		return err
	}

	meta := d.t.metaFor(obj)
	if meta.AbsoluteURI == "" {
		meta.AbsoluteURI = schemaURI
		meta.BaseURI = f.base.Href()
		if !f.alias {
			d.logger.Debug("registered schema", "uri", schemaURI)
		}
	}
	if err := d.annotateRefs(obj, meta, f); err != nil {
		return err
	}

	if f.isRoot && !f.alias {
		if err := d.registerAnchors(obj, f); err != nil {
			return err
		}
	}

	return eachSubschema(obj, func(tokens []string, child any, isRoot bool) error {
		cf := f
		for _, tok := range tokens {
			cf = cf.child(tok, isRoot)
		}
		return d.walk(child, cf)
	})
}

// enterResource applies the $id of obj. A fragment $id is registered as a
// plain alias. Otherwise the frame is re-based; an embedded resource is
// walked once on its own and the returned frame walks it again in alias mode
// so JSON pointers through it from the enclosing resource still resolve.
func (d *dereferencer) enterResource(obj *jsonvalue.Object, f frame) (frame, error) {
	raw, ok := obj.Get("$id")
	if !ok {
		if !d.legacyID {
			return f, nil
		}
		if raw, ok = obj.Get("id"); !ok {
			return f, nil
		}
		if _, isString := raw.(string); !isString {
			// legacy "id" used as an ordinary member
			return f, nil
		}
	}
	id, isString := raw.(string)
	if !isString {
		return f, &schemaerrors.KeywordError{Keyword: "$id", Location: f.path, Value: raw, Message: "must be a string"}
	}
	ref, err := uri.Parse(id)
	if err != nil {
		return f, annotatePath(err, f.path)
	}
	resolved := f.base.Resolve(ref)
	if frag := pointer.NormalizeFragment(resolved.Fragment); frag != "" {
		alias := resolved.WithFragment(frag).Href()
		if err := d.t.registerAnchor(alias, frag, obj, f.path); err != nil {
			return f, err
		}
		d.logger.Debug("registered $id alias", "uri", alias)
		return f, nil
	}
	resolved = resolved.WithoutFragment()
	if f.pointer == "" {
		if resolved.Href() != f.base.Href() {
			d.logger.Debug("entering schema resource", "uri", resolved.Href(), "path", f.path)
		}
		f.base = resolved
		return f, nil
	}
	if err := d.walk(obj, frame{base: resolved, path: f.path, isRoot: true, entered: true}); err != nil {
		return f, err
	}
	f.alias = true
	return f, nil
}

// annotateRefs resolves the reference keywords of obj. Values already
// recorded by an earlier pass are kept.
func (d *dereferencer) annotateRefs(obj *jsonvalue.Object, meta *Meta, f frame) error {
	refs := []struct {
		keyword string
		target  *string
	}{
		{"$ref", &meta.AbsoluteRef},
		{"$recursiveRef", &meta.AbsoluteRecursiveRef},
		{"$dynamicRef", &meta.AbsoluteDynamicRef},
	}
	for _, r := range refs {
		raw, ok := obj.Get(r.keyword)
		if !ok || *r.target != "" {
			continue
		}
		s, isString := raw.(string)
		if !isString {
			if !f.isRoot {
				continue
			}
			return &schemaerrors.KeywordError{Keyword: r.keyword, Location: f.path, Value: raw, Message: "must be a string"}
		}
		abs, err := resolveRef(s, f.base)
		if err != nil {
			return annotatePath(err, f.path)
		}
		*r.target = abs
	}
	return nil
}

// resolveRef resolves ref against base and normalizes its fragment.
func resolveRef(ref string, base uri.URL) (string, error) {
	r, err := uri.Parse(ref)
	if err != nil {
		return "", err
	}
	u := base.Resolve(r)
	return u.WithFragment(pointer.NormalizeFragment(u.Fragment)).Href(), nil
}

func (d *dereferencer) registerAnchors(obj *jsonvalue.Object, f frame) error {
	for _, keyword := range []string{"$anchor", "$dynamicAnchor"} {
		raw, ok := obj.Get(keyword)
		if !ok {
			continue
		}
		name, isString := raw.(string)
		if !isString || name == "" {
			return &schemaerrors.KeywordError{Keyword: keyword, Location: f.path, Value: raw, Message: "must be a non-empty string"}
		}
		anchorURI := f.base.WithFragment(pointer.EncodeFragment(name)).Href()
		if err := d.t.registerAnchor(anchorURI, name, obj, f.path); err != nil {
			return err
		}
		if keyword == "$dynamicAnchor" {
			d.t.addDynamicAnchor(f.base.Href(), name, obj)
		}
		d.logger.Debug("registered anchor", "keyword", keyword, "uri", anchorURI)
	}
	return nil
}

// ID returns the resource identifier declared by the document root obj:
// its $id, or its legacy id when the document is written for draft 4 or
// declares no draft.
func ID(obj *jsonvalue.Object) (string, bool) {
	return identity(obj, legacyIDAllowed(obj))
}

// identity returns the $id string of obj, or its legacy id when legacy is
// set.
func identity(obj *jsonvalue.Object, legacy bool) (string, bool) {
	keys := []string{"$id"}
	if legacy {
		keys = append(keys, "id")
	}
	for _, key := range keys {
		if raw, ok := obj.Get(key); ok {
			if s, ok := raw.(string); ok {
				return s, true
			}
		}
	}
	return "", false
}

func annotatePath(err error, path string) error {
	if path == "" {
		return err
	}
	return fmt.Errorf("at %q: %w", path, err)
}
