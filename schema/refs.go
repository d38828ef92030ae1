package schema

import (
	"github.com/erraggy/jsonschema/internal/pointer"
	"github.com/erraggy/jsonschema/internal/uri"
	"github.com/erraggy/jsonschema/jsonvalue"
)

// Identity and reference keywords reported by CollectRefs.
const (
	PropertyRef           = "$ref"
	PropertyID            = "$id"
	PropertyAnchor        = "$anchor"
	PropertyDynamicRef    = "$dynamicRef"
	PropertyDynamicAnchor = "$dynamicAnchor"
	PropertyRecursiveRef  = "$recursiveRef"
	PropertySchema        = "$schema"
)

var refProperties = []string{
	PropertySchema, PropertyID, PropertyAnchor, PropertyDynamicAnchor,
	PropertyRef, PropertyDynamicRef, PropertyRecursiveRef,
}

// RefRecord describes one identity or reference keyword found in a schema
// tree.
type RefRecord struct {
	// Ref is the keyword value as written.
	Ref string `json:"ref" yaml:"ref"`
	// Absolute is Ref resolved against EnclosingID. Anchors resolve to their
	// anchor URI; $schema is reported as written.
	Absolute string `json:"absolute" yaml:"absolute"`
	// Property is the keyword name, e.g. "$ref".
	Property string `json:"property" yaml:"property"`
	// Pointer is the JSON pointer of the owning schema within the document.
	Pointer string `json:"pointer" yaml:"pointer"`
	// EnclosingID is the base URI of the resource the owner belongs to.
	EnclosingID string `json:"enclosingId" yaml:"enclosingId"`
	// Owner is the schema object carrying the keyword.
	Owner *jsonvalue.Object `json:"-" yaml:"-"`
}

// CollectRefs lists the identity and reference keywords of root in document
// order. Base URIs are taken from t when root has been dereferenced, and
// tracked from $id otherwise.
func CollectRefs(t *Table, root any) []RefRecord {
	var out []RefRecord
	base := uri.MustParse(DefaultBaseURI)
	if obj, ok := root.(*jsonvalue.Object); ok && t != nil {
		if m := t.Meta(obj); m != nil {
			base = uri.MustParse(m.BaseURI)
		}
	}
	collectRefs(t, root, base, "", true, &out)
	return out
}

func collectRefs(t *Table, v any, base uri.URL, path string, isRoot bool, out *[]RefRecord) {
	obj, ok := v.(*jsonvalue.Object)
	if !ok {
		return
	}
	if m := lookupMeta(t, obj); m != nil && m.BaseURI != "" {
		if u, err := uri.Parse(m.BaseURI); err == nil {
			base = u
		}
	} else if isRoot {
		if id, ok := identity(obj, legacyIDAllowed(obj)); ok {
			if r, err := uri.Parse(id); err == nil && pointer.NormalizeFragment(base.Resolve(r).Fragment) == "" {
				base = base.Resolve(r).WithoutFragment()
			}
		}
	}

	if isRoot {
		for _, prop := range refProperties {
			raw, ok := obj.Get(prop)
			if !ok && prop == PropertyID {
				raw, ok = obj.Get("id")
			}
			s, isString := raw.(string)
			if !ok || !isString {
				continue
			}
			rec := RefRecord{
				Ref:         s,
				Absolute:    s,
				Property:    prop,
				Pointer:     path,
				EnclosingID: base.Href(),
				Owner:       obj,
			}
			switch prop {
			case PropertyAnchor, PropertyDynamicAnchor:
				rec.Absolute = base.WithFragment(pointer.EncodeFragment(s)).Href()
			case PropertySchema:
			default:
				if abs, err := resolveRef(s, base); err == nil {
					rec.Absolute = abs
				}
			}
			*out = append(*out, rec)
		}
	}

	_ = eachSubschema(obj, func(tokens []string, child any, childIsRoot bool) error {
		p := path
		for _, tok := range tokens {
			p = pointer.Append(p, tok)
		}
		collectRefs(t, child, base, p, childIsRoot, out)
		return nil
	})
}

func lookupMeta(t *Table, obj *jsonvalue.Object) *Meta {
	if t == nil {
		return nil
	}
	return t.Meta(obj)
}

// DynamicAnchors returns the $dynamicAnchor declarations of the resource
// rooted at resource, keyed by "#"+name, without consulting a table.
func DynamicAnchors(resource any) map[string]*jsonvalue.Object {
	anchors := make(map[string]*jsonvalue.Object)
	collectDynamicAnchors(resource, true, true, anchors)
	return anchors
}

func collectDynamicAnchors(v any, isResourceRoot, isRoot bool, anchors map[string]*jsonvalue.Object) {
	obj, ok := v.(*jsonvalue.Object)
	if !ok || !isRoot {
		return
	}
	if !isResourceRoot {
		if id, ok := identity(obj, false); ok && id != "" && id[0] != '#' {
			return
		}
	}
	if raw, ok := obj.Get(PropertyDynamicAnchor); ok {
		if name, ok := raw.(string); ok {
			if _, exists := anchors["#"+name]; !exists {
				anchors["#"+name] = obj
			}
		}
	}
	_ = eachSubschema(obj, func(_ []string, child any, childIsRoot bool) error {
		collectDynamicAnchors(child, false, childIsRoot, anchors)
		return nil
	})
}
