package validator

import (
	"github.com/erraggy/jsonschema/internal/pointer"
	"github.com/erraggy/jsonschema/jsonvalue"
	"github.com/erraggy/jsonschema/schema"
	"github.com/erraggy/jsonschema/schemaerrors"
)

func (n *node) objectKeywords(instance *jsonvalue.Object) {
	draft := n.e.v.draft

	if required, ok := n.stringArray("required"); ok {
		for _, name := range required {
			if !instance.Has(name) {
				n.addError("required", ErrorTypeMissingValue, "Instance does not have required property %q.", name)
			}
		}
	}
	if limit, ok := n.count("minProperties"); ok && instance.Len() < limit {
		n.addError("minProperties", ErrorTypeTooFew, "Instance does not have at least %d properties.", limit)
	}
	if limit, ok := n.count("maxProperties"); ok && instance.Len() > limit {
		n.addError("maxProperties", ErrorTypeTooMany, "Instance has more than %d properties.", limit)
	}
	if draft >= schema.Draft7 {
		n.propertyNames(instance)
	}
	if draft >= schema.Draft201909 {
		n.dependentRequired(instance)
		n.dependentSchemas(instance)
	} else {
		n.dependencies(instance)
	}
	if n.e.err != nil {
		return
	}

	thisEvaluated := newEvaluated()
	stop := n.properties(instance, thisEvaluated)
	if !stop {
		stop = n.patternProperties(instance, thisEvaluated)
	}
	if stop {
		return
	}
	if sub, ok := n.obj.Get("additionalProperties"); ok {
		n.additionalProperties(instance, sub, thisEvaluated)
	} else if sub, ok := n.obj.Get("unevaluatedProperties"); ok && draft >= schema.Draft201909 {
		n.unevaluatedProperties(instance, sub)
	}
}

// member applies sub to the value of one instance member.
func (n *node) member(instance *jsonvalue.Object, name string, sub any, tokens ...string) result {
	value, _ := instance.Get(name)
	return n.apply(value, sub, pointer.Append(n.instLoc, name), newEvaluated(), tokens...)
}

func (n *node) propertyNames(instance *jsonvalue.Object) {
	sub, ok := n.obj.Get("propertyNames")
	if !ok {
		return
	}
	for _, name := range instance.Keys() {
		res := n.apply(name, sub, pointer.Append(n.instLoc, name), newEvaluated(), "propertyNames")
		if n.e.err != nil {
			return
		}
		if !res.valid() {
			n.addError("propertyNames", ErrorTypeInvalidValue, "Property name %q does not match schema.", name)
			n.errors = append(n.errors, res.errors...)
		}
	}
}

func (n *node) dependentRequired(instance *jsonvalue.Object) {
	deps, ok := n.schemaMap("dependentRequired")
	if !ok {
		return
	}
	for _, key := range deps.Keys() {
		if !instance.Has(key) {
			continue
		}
		raw, _ := deps.Get(key)
		names, ok := n.toStrings("dependentRequired", raw)
		if !ok {
			return
		}
		for _, name := range names {
			if !instance.Has(name) {
				n.addError("dependentRequired", ErrorTypeMissingValue, "Instance has %q but does not have %q.", key, name)
			}
		}
	}
}

func (n *node) dependentSchemas(instance *jsonvalue.Object) {
	deps, ok := n.schemaMap("dependentSchemas")
	if !ok {
		return
	}
	for _, key := range deps.Keys() {
		if !instance.Has(key) {
			continue
		}
		sub, _ := deps.Get(key)
		res := n.apply(n.instance, sub, n.instLoc, n.ev, "dependentSchemas", key)
		if n.e.err != nil {
			return
		}
		if !res.valid() {
			n.addError("dependentSchemas", ErrorTypeInvalidValue, "Instance has %q but does not match dependant schema.", key)
			n.errors = append(n.errors, res.errors...)
			continue
		}
		n.annotations = append(n.annotations, res.annotations...)
	}
}

// dependencies is the draft4/draft7 keyword combining both forms.
func (n *node) dependencies(instance *jsonvalue.Object) {
	deps, ok := n.schemaMap("dependencies")
	if !ok {
		return
	}
	for _, key := range deps.Keys() {
		if !instance.Has(key) {
			continue
		}
		raw, _ := deps.Get(key)
		if _, isArray := raw.([]any); isArray {
			names, ok := n.toStrings("dependencies", raw)
			if !ok {
				return
			}
			for _, name := range names {
				if !instance.Has(name) {
					n.addError("dependencies", ErrorTypeMissingValue, "Instance has %q but does not have %q.", key, name)
				}
			}
			continue
		}
		res := n.apply(n.instance, raw, n.instLoc, newEvaluated(), "dependencies", key)
		if n.e.err != nil {
			return
		}
		if !res.valid() {
			n.addError("dependencies", ErrorTypeInvalidValue, "Instance has %q but does not match dependant schema.", key)
			n.errors = append(n.errors, res.errors...)
		}
	}
}

// properties marks every member whose schema passed in both the evaluated
// set and thisEvaluated. It reports whether evaluation should stop.
func (n *node) properties(instance *jsonvalue.Object, thisEvaluated *evaluated) bool {
	props, ok := n.schemaMap("properties")
	if !ok {
		return false
	}
	for _, name := range props.Keys() {
		if !instance.Has(name) {
			continue
		}
		sub, _ := props.Get(name)
		res := n.member(instance, name, sub, "properties", name)
		if n.e.err != nil {
			return true
		}
		if res.valid() {
			n.ev.markProp(name)
			thisEvaluated.markProp(name)
			n.annotations = append(n.annotations, res.annotations...)
			continue
		}
		n.addError("properties", ErrorTypeInvalidValue, "Property %q does not match schema.", name)
		n.errors = append(n.errors, res.errors...)
		if n.e.shortCircuit {
			return true
		}
	}
	return false
}

func (n *node) patternProperties(instance *jsonvalue.Object, thisEvaluated *evaluated) bool {
	patterns, ok := n.schemaMap("patternProperties")
	if !ok {
		return false
	}
	stop := false
	for _, pattern := range patterns.Keys() {
		re, err := n.e.v.patterns.compile(pattern)
		if err != nil {
			n.e.fail(&schemaerrors.KeywordError{
				Keyword:  "patternProperties",
				Location: n.absoluteLocation("patternProperties", pattern),
				Value:    pattern,
				Message:  "invalid regular expression",
				Cause:    err,
			})
			return true
		}
		sub, _ := patterns.Get(pattern)
		for _, name := range instance.Keys() {
			if !re.MatchString(name) {
				continue
			}
			res := n.member(instance, name, sub, "patternProperties", pattern)
			if n.e.err != nil {
				return true
			}
			if res.valid() {
				n.ev.markProp(name)
				thisEvaluated.markProp(name)
				n.annotations = append(n.annotations, res.annotations...)
				continue
			}
			stop = n.e.shortCircuit
			n.addError("patternProperties", ErrorTypeInvalidValue,
				"Property %q matches pattern %q but does not match associated schema.", name, pattern)
			n.errors = append(n.errors, res.errors...)
		}
	}
	return stop
}

// additionalProperties covers the members not matched by properties or
// patternProperties of this same schema object.
func (n *node) additionalProperties(instance *jsonvalue.Object, sub any, thisEvaluated *evaluated) {
	for _, name := range instance.Keys() {
		if thisEvaluated.hasProp(name) {
			continue
		}
		res := n.member(instance, name, sub, "additionalProperties")
		if n.e.err != nil {
			return
		}
		if res.valid() {
			n.ev.markProp(name)
			n.annotations = append(n.annotations, res.annotations...)
			continue
		}
		n.addError("additionalProperties", ErrorTypeNotAllowed, "Property %q does not match additional properties schema.", name)
		n.errors = append(n.errors, res.errors...)
		if n.e.shortCircuit {
			return
		}
	}
}

// unevaluatedProperties covers the members no applicator has claimed so far.
func (n *node) unevaluatedProperties(instance *jsonvalue.Object, sub any) {
	for _, name := range instance.Keys() {
		if n.ev.hasProp(name) {
			continue
		}
		res := n.member(instance, name, sub, "unevaluatedProperties")
		if n.e.err != nil {
			return
		}
		if res.valid() {
			n.ev.markProp(name)
			n.annotations = append(n.annotations, res.annotations...)
			continue
		}
		n.addError("unevaluatedProperties", ErrorTypeNotAllowed, "Property %q does not match unevaluated properties schema.", name)
		n.errors = append(n.errors, res.errors...)
	}
}
