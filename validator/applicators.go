package validator

import (
	"slices"
	"strconv"
	"strings"

	"github.com/erraggy/jsonschema/internal/pointer"
	"github.com/erraggy/jsonschema/internal/uri"
	"github.com/erraggy/jsonschema/jsonvalue"
	"github.com/erraggy/jsonschema/schemaerrors"
)

// target looks up the resolved reference of kw. absRef is the value the
// dereferencer recorded, if any.
func (n *node) target(kw, absRef string) (any, string, bool) {
	ref, ok := n.stringKeyword(kw)
	if !ok {
		return nil, "", false
	}
	if absRef == "" {
		absRef = ref
	}
	s, found := n.e.v.table.Lookup(absRef)
	if !found {
		n.e.fail(&schemaerrors.UnresolvedRefError{
			Ref:         ref,
			AbsoluteRef: absRef,
			Location:    n.absoluteLocation(kw),
		})
		return nil, "", false
	}
	return s, absRef, true
}

// follow applies a reference target to the current instance node with the
// current evaluated set.
func (n *node) follow(kw string, target any, absRef string) {
	if obj, ok := target.(*jsonvalue.Object); ok {
		key := visit{schema: obj, instanceLocation: n.instLoc}
		if _, active := n.e.active[key]; active {
			return
		}
		n.e.active[key] = struct{}{}
		defer delete(n.e.active, key)
	}
	res := n.e.eval(n.instance, target, n.anchor, n.instLoc, n.keywordLocation(kw), absRef, n.ev)
	if n.e.err != nil {
		return
	}
	if !res.valid() {
		n.addError(kw, ErrorTypeInvalidValue, "A subschema had errors.")
		n.errors = append(n.errors, res.errors...)
		return
	}
	n.annotations = append(n.annotations, res.annotations...)
}

func (n *node) ref() {
	var absRef string
	if n.meta != nil {
		absRef = n.meta.AbsoluteRef
	}
	target, abs, ok := n.target("$ref", absRef)
	if !ok {
		return
	}
	n.follow("$ref", target, abs)
}

// recursiveRef resolves $recursiveRef to the locked recursive anchor when
// the static target opts in with $recursiveAnchor.
func (n *node) recursiveRef() {
	if !n.obj.Has("$recursiveRef") {
		return
	}
	var absRef string
	if n.meta != nil {
		absRef = n.meta.AbsoluteRecursiveRef
	}
	target, abs, ok := n.target("$recursiveRef", absRef)
	if !ok {
		return
	}
	if obj, isObj := target.(*jsonvalue.Object); isObj && n.anchor != nil {
		if raw, _ := obj.Get("$recursiveAnchor"); raw == true {
			target = n.anchor
		}
	}
	n.follow("$recursiveRef", target, abs)
}

// dynamicRef resolves $dynamicRef. When the static target declares the
// same $dynamicAnchor, the outermost resource in the dynamic scope that
// declares it wins.
func (n *node) dynamicRef() {
	if !n.obj.Has("$dynamicRef") {
		return
	}
	var absRef string
	if n.meta != nil {
		absRef = n.meta.AbsoluteDynamicRef
	}
	target, abs, ok := n.target("$dynamicRef", absRef)
	if !ok {
		return
	}
	_, frag := uri.SplitFragment(abs)
	name := pointer.DecodeFragment(frag)
	if obj, isObj := target.(*jsonvalue.Object); isObj && name != "" && !strings.HasPrefix(name, "/") {
		if declared, _ := obj.Get("$dynamicAnchor"); declared == name {
			for _, resource := range n.e.scope {
				if s, found := n.e.v.table.DynamicAnchors(resource)[name]; found {
					target = s
					break
				}
			}
		}
	}
	n.follow("$dynamicRef", target, abs)
}

// not is evaluated with a fresh evaluated set so a matching "not" schema
// leaks nothing.
func (n *node) not() {
	sub, ok := n.obj.Get("not")
	if !ok {
		return
	}
	res := n.apply(n.instance, sub, n.instLoc, newEvaluated(), "not")
	if n.e.err != nil {
		return
	}
	if res.valid() {
		n.addError("not", ErrorTypeNotAllowed, `Instance matched "not" schema.`)
	}
}

// composite evaluates anyOf, allOf or oneOf. Every branch is tried with a
// copy of the evaluated set; the copies of passing branches are merged only
// when the keyword as a whole passes.
func (n *node) composite(kw string) {
	raw, ok := n.obj.Get(kw)
	if !ok {
		return
	}
	branches, ok := raw.([]any)
	if !ok {
		n.invalidKeyword(kw, raw, "must be an array of schemas")
		return
	}

	start := len(n.errors)
	var passed []*evaluated
	var annotations []*OutputUnit
	for i, branch := range branches {
		branchEv := n.ev.clone()
		res := n.apply(n.instance, branch, n.instLoc, branchEv, kw, strconv.Itoa(i))
		if n.e.err != nil {
			return
		}
		n.errors = append(n.errors, res.errors...)
		if res.valid() {
			passed = append(passed, branchEv)
			annotations = append(annotations, res.annotations...)
		}
	}

	matches := len(passed)
	var summary *OutputUnit
	switch kw {
	case "anyOf":
		if matches == 0 {
			summary = n.newError(kw, ErrorTypeNoMatch, "Instance does not match any subschemas.")
		}
	case "allOf":
		if matches != len(branches) {
			summary = n.newError(kw, ErrorTypeInvalidValue, "Instance does not match every subschema.")
		}
	case "oneOf":
		if matches != 1 {
			kind := ErrorTypeNoMatch
			if matches > 1 {
				kind = ErrorTypeMultipleMatches
			}
			summary = n.newError(kw, kind, "Instance does not match exactly one subschema (%d matches).", matches)
		}
	}

	if summary != nil {
		n.errors = slices.Insert(n.errors, start, summary)
		return
	}
	n.errors = n.errors[:start]
	for _, b := range passed {
		n.ev.merge(b)
	}
	n.annotations = append(n.annotations, annotations...)
}

// conditional evaluates if/then/else against the real evaluated set.
func (n *node) conditional() {
	ifSchema, ok := n.obj.Get("if")
	if !ok {
		return
	}
	cond := n.apply(n.instance, ifSchema, n.instLoc, n.ev, "if")
	if n.e.err != nil {
		return
	}
	branch := "else"
	if cond.valid() {
		branch = "then"
		n.annotations = append(n.annotations, cond.annotations...)
	}
	sub, ok := n.obj.Get(branch)
	if !ok {
		return
	}
	res := n.apply(n.instance, sub, n.instLoc, n.ev, branch)
	if n.e.err != nil {
		return
	}
	if !res.valid() {
		n.addError(branch, ErrorTypeInvalidValue, "Instance does not match %q schema.", branch)
		n.errors = append(n.errors, res.errors...)
		return
	}
	n.annotations = append(n.annotations, res.annotations...)
}

func (n *node) typeKeyword() {
	raw, ok := n.obj.Get("type")
	if !ok {
		return
	}
	instType := jsonvalue.TypeOf(n.instance)
	var want []string
	switch t := raw.(type) {
	case string:
		want = []string{t}
	case []any:
		if want, ok = n.toStrings("type", t); !ok {
			return
		}
	default:
		n.invalidKeyword("type", raw, "must be a string or an array of strings")
		return
	}
	for _, name := range want {
		if name == instType || (name == jsonvalue.TypeInteger && jsonvalue.IsInteger(n.instance)) {
			return
		}
	}
	n.addError("type", ErrorTypeInvalidType, `Instance type %q is invalid. Expected "%s".`, instType, strings.Join(want, `", "`))
}

func (n *node) constKeyword() {
	c, ok := n.obj.Get("const")
	if !ok {
		return
	}
	if !jsonvalue.Equal(n.instance, c) {
		n.addError("const", ErrorTypeInvalidValue, "Instance does not match %s.", jsonText(c))
	}
}

func (n *node) enumKeyword() {
	raw, ok := n.obj.Get("enum")
	if !ok {
		return
	}
	values, ok := raw.([]any)
	if !ok {
		n.invalidKeyword("enum", raw, "must be an array")
		return
	}
	for _, v := range values {
		if jsonvalue.Equal(n.instance, v) {
			return
		}
	}
	n.addError("enum", ErrorTypeInvalidValue, "Instance does not match any of %s.", jsonText(raw))
}
