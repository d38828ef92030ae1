package repository

import (
	"fmt"
	"strings"

	"github.com/erraggy/jsonschema/internal/pointer"
	"github.com/erraggy/jsonschema/internal/uri"
	"github.com/erraggy/jsonschema/jsonvalue"
	"github.com/erraggy/jsonschema/schema"
	"github.com/erraggy/jsonschema/schemaerrors"
)

// MaxResolveDepth is the maximum number of references Resolve inlines
// inside one another.
const MaxResolveDepth = 100

// droppedKeywords do not survive inlining: every reference they serve has
// been replaced by its target.
var droppedKeywords = map[string]bool{
	"$id": true, "$anchor": true, "$dynamicAnchor": true, "$recursiveAnchor": true,
	"$defs": true, "definitions": true, "$schema": true,
}

// Resolve returns a copy of s with every $ref, $dynamicRef and $recursiveRef
// replaced by its target, dereferencing s first if needed. The result has no
// references left and no identity keywords, except that the $schema of the
// root is kept.
//
// A reference next to other keywords becomes an extra allOf entry, except
// in draft4 and draft7 where it replaces its siblings. Recursive schemas
// cannot be inlined and fail with a circular *schemaerrors.ReferenceError.
func (r *Repository) Resolve(s any) (any, error) {
	s = jsonvalue.FromNative(s)
	if obj, ok := s.(*jsonvalue.Object); ok && r.table.Meta(obj) == nil {
		if _, err := r.Dereference(obj); err != nil {
			return nil, err
		}
	}
	rs := &resolver{
		table:   r.table,
		draft:   r.draftOf(s),
		onStack: make(map[*jsonvalue.Object]bool),
	}
	out, err := rs.resolve(s)
	if err != nil {
		return nil, fmt.Errorf("repository: resolve: %w", err)
	}

	root, _ := s.(*jsonvalue.Object)
	resolved, _ := out.(*jsonvalue.Object)
	if root == nil || resolved == nil {
		return out, nil
	}
	dialect, ok := root.Get("$schema")
	if !ok {
		return out, nil
	}
	withDialect := jsonvalue.NewObject(resolved.Len() + 1)
	withDialect.Set("$schema", dialect)
	resolved.Range(func(key string, value any) bool {
		withDialect.Set(key, value)
		return true
	})
	return withDialect, nil
}

type resolver struct {
	table   *schema.Table
	draft   schema.Draft
	onStack map[*jsonvalue.Object]bool
	scope   []string
	anchor  *jsonvalue.Object
	depth   int
}

func (rs *resolver) resolve(v any) (any, error) {
	obj, ok := v.(*jsonvalue.Object)
	if !ok {
		return jsonvalue.DeepCopy(v), nil
	}
	rs.onStack[obj] = true
	defer delete(rs.onStack, obj)

	meta := rs.table.Meta(obj)
	if meta != nil && (len(rs.scope) == 0 || rs.scope[len(rs.scope)-1] != meta.BaseURI) {
		rs.scope = append(rs.scope, meta.BaseURI)
		defer func() { rs.scope = rs.scope[:len(rs.scope)-1] }()
	}
	if rs.draft == schema.Draft201909 && rs.anchor == nil {
		if raw, _ := obj.Get("$recursiveAnchor"); raw == true {
			rs.anchor = obj
			defer func() { rs.anchor = nil }()
		}
	}

	if rs.draft <= schema.Draft7 && obj.Has("$ref") {
		return rs.reference(obj, meta, "$ref")
	}

	out := jsonvalue.NewObject(obj.Len())
	var inlined []any
	for _, key := range obj.Keys() {
		value, _ := obj.Get(key)
		if droppedKeywords[key] {
			continue
		}
		if _, isString := value.(string); isString && key == "id" {
			continue
		}
		if rs.isReference(key) {
			target, err := rs.reference(obj, meta, key)
			if err != nil {
				return nil, err
			}
			inlined = append(inlined, target)
			continue
		}
		child, err := rs.keyword(key, value)
		if err != nil {
			return nil, err
		}
		out.Set(key, child)
	}

	switch {
	case len(inlined) == 0:
		return out, nil
	case out.Len() == 0 && len(inlined) == 1:
		return inlined[0], nil
	}
	var allOf []any
	if raw, ok := out.Get("allOf"); ok {
		if allOf, ok = raw.([]any); !ok {
			return nil, &schemaerrors.KeywordError{Keyword: "allOf", Location: rs.location(meta), Value: raw, Message: "must be an array of schemas"}
		}
	}
	out.Set("allOf", append(allOf, inlined...))
	return out, nil
}

func (rs *resolver) isReference(key string) bool {
	switch key {
	case "$ref":
		return true
	case "$recursiveRef":
		return rs.draft == schema.Draft201909
	case "$dynamicRef":
		return rs.draft >= schema.Draft202012
	}
	return false
}

func (rs *resolver) location(meta *schema.Meta) string {
	if meta == nil {
		return ""
	}
	return meta.AbsoluteURI
}

// keyword copies one member, resolving the subschemas it holds.
func (rs *resolver) keyword(key string, value any) (any, error) {
	switch schema.KindOf(key) {
	case schema.KindSchema:
		return rs.resolve(value)
	case schema.KindSchemaArray:
		items, ok := value.([]any)
		if !ok {
			return rs.resolve(value)
		}
		out := make([]any, len(items))
		for i, item := range items {
			resolved, err := rs.resolve(item)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	case schema.KindSchemaMap:
		members, ok := value.(*jsonvalue.Object)
		if !ok {
			return jsonvalue.DeepCopy(value), nil
		}
		out := jsonvalue.NewObject(members.Len())
		for _, name := range members.Keys() {
			member, _ := members.Get(name)
			resolved, err := rs.resolve(member)
			if err != nil {
				return nil, err
			}
			out.Set(name, resolved)
		}
		return out, nil
	}
	return jsonvalue.DeepCopy(value), nil
}

// reference inlines the target of one reference keyword of obj.
func (rs *resolver) reference(obj *jsonvalue.Object, meta *schema.Meta, key string) (any, error) {
	raw, _ := obj.Get(key)
	ref, isString := raw.(string)
	if !isString {
		return nil, &schemaerrors.KeywordError{Keyword: key, Location: rs.location(meta), Value: raw, Message: "must be a string"}
	}
	abs := ref
	if meta != nil {
		switch key {
		case "$ref":
			abs = meta.AbsoluteRef
		case "$recursiveRef":
			abs = meta.AbsoluteRecursiveRef
		case "$dynamicRef":
			abs = meta.AbsoluteDynamicRef
		}
	}
	target, found := rs.table.Lookup(abs)
	if !found {
		return nil, &schemaerrors.UnresolvedRefError{Ref: ref, AbsoluteRef: abs, Location: rs.location(meta)}
	}

	switch key {
	case "$recursiveRef":
		if t, ok := target.(*jsonvalue.Object); ok && rs.anchor != nil {
			if raw, _ := t.Get("$recursiveAnchor"); raw == true {
				target = rs.anchor
			}
		}
	case "$dynamicRef":
		target = rs.dynamicTarget(target, abs)
	}

	if t, ok := target.(*jsonvalue.Object); ok && rs.onStack[t] {
		return nil, &schemaerrors.ReferenceError{Ref: ref, IsCircular: true, Message: "recursive schema cannot be inlined"}
	}
	if rs.depth >= MaxResolveDepth {
		return nil, &schemaerrors.ResourceLimitError{
			ResourceType: "resolve_depth",
			Limit:        MaxResolveDepth,
			Message:      "references nested too deeply at " + ref,
		}
	}
	rs.depth++
	defer func() { rs.depth-- }()
	return rs.resolve(target)
}

// dynamicTarget picks the outermost resource in scope declaring the dynamic
// anchor named by abs, when the static target declares it too.
func (rs *resolver) dynamicTarget(target any, abs string) any {
	t, ok := target.(*jsonvalue.Object)
	if !ok {
		return target
	}
	_, frag := uri.SplitFragment(abs)
	name := pointer.DecodeFragment(frag)
	if name == "" || strings.HasPrefix(name, "/") {
		return target
	}
	if declared, _ := t.Get("$dynamicAnchor"); declared != name {
		return target
	}
	for _, resource := range rs.scope {
		if s, found := rs.table.DynamicAnchors(resource)[name]; found {
			return s
		}
	}
	return target
}
