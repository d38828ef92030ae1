package validator

import (
	"strconv"

	"github.com/erraggy/jsonschema/internal/pointer"
	"github.com/erraggy/jsonschema/jsonvalue"
	"github.com/erraggy/jsonschema/schema"
)

func (n *node) arrayKeywords(instance []any) {
	draft := n.e.v.draft
	length := len(instance)

	if limit, ok := n.count("maxItems"); ok && length > limit {
		n.addError("maxItems", ErrorTypeTooMany, "Array has too many items (%d > %d).", length, limit)
	}
	if limit, ok := n.count("minItems"); ok && length < limit {
		n.addError("minItems", ErrorTypeTooFew, "Array has too few items (%d < %d).", length, limit)
	}
	if n.e.err != nil {
		return
	}

	stop := n.items(instance)
	if n.e.err != nil {
		return
	}
	if draft >= schema.Draft7 {
		n.contains(instance)
	}
	if !stop && draft >= schema.Draft201909 {
		if sub, ok := n.obj.Get("unevaluatedItems"); ok {
			n.unevaluatedItems(instance, sub)
		}
	}
	n.uniqueItems(instance)
}

// item applies sub to one array element.
func (n *node) item(instance []any, i int, sub any, tokens ...string) result {
	return n.apply(instance[i], sub, pointer.AppendIndex(n.instLoc, i), newEvaluated(), tokens...)
}

// items runs prefixItems, items and additionalItems in order, each
// continuing where the previous one stopped. It reports whether evaluation
// should stop.
func (n *node) items(instance []any) bool {
	draft := n.e.v.draft
	i := 0

	// tuple applies schemas[j] to element j, starting at i.
	tuple := func(kw string, schemas []any) bool {
		for ; i < len(schemas) && i < len(instance); i++ {
			res := n.item(instance, i, schemas[i], kw, strconv.Itoa(i))
			if n.e.err != nil {
				return true
			}
			n.ev.markItem(i)
			if res.valid() {
				n.annotations = append(n.annotations, res.annotations...)
				continue
			}
			n.addError(kw, ErrorTypeInvalidValue, "Items did not match schema.")
			n.errors = append(n.errors, res.errors...)
			if n.e.shortCircuit {
				return true
			}
		}
		return false
	}
	// rest applies sub to every element from i on.
	rest := func(kw, message string, kind ErrorType, sub any) bool {
		stop := false
		for ; i < len(instance); i++ {
			res := n.item(instance, i, sub, kw)
			if n.e.err != nil {
				return true
			}
			n.ev.markItem(i)
			if res.valid() {
				n.annotations = append(n.annotations, res.annotations...)
				continue
			}
			n.addError(kw, kind, "%s", message)
			n.errors = append(n.errors, res.errors...)
			if n.e.shortCircuit {
				stop = true
				break
			}
		}
		return stop
	}

	if draft >= schema.Draft202012 {
		if raw, ok := n.obj.Get("prefixItems"); ok {
			schemas, isArray := raw.([]any)
			if !isArray {
				n.invalidKeyword("prefixItems", raw, "must be an array of schemas")
				return true
			}
			if tuple("prefixItems", schemas) {
				return true
			}
		}
	}

	raw, ok := n.obj.Get("items")
	if !ok {
		return false
	}
	if schemas, isArray := raw.([]any); isArray {
		if tuple("items", schemas) {
			return true
		}
		if draft <= schema.Draft201909 {
			if sub, ok := n.obj.Get("additionalItems"); ok {
				return rest("additionalItems", "Items did not match additional items schema.", ErrorTypeNotAllowed, sub)
			}
		}
		return false
	}
	return rest("items", "Items did not match schema.", ErrorTypeInvalidValue, raw)
}

// contains counts the elements matching the "contains" schema and checks the
// count against minContains and maxContains. Matched elements count as
// evaluated in draft 2020-12.
func (n *node) contains(instance []any) {
	sub, ok := n.obj.Get("contains")
	if !ok {
		return
	}
	draft := n.e.v.draft
	minimum, hasMin := 1, false
	maximum, hasMax := 0, false
	if draft >= schema.Draft201909 {
		if v, ok := n.count("minContains"); ok {
			minimum, hasMin = v, true
		}
		maximum, hasMax = n.count("maxContains")
		if n.e.err != nil {
			return
		}
	}

	if len(instance) == 0 && minimum > 0 {
		if hasMin {
			n.addError("minContains", ErrorTypeTooFew, "Array has less items (0) than minContains (%d).", minimum)
		} else {
			n.addError("contains", ErrorTypeNoMatch, "Array is empty. It must contain at least one item matching the schema.")
		}
		return
	}

	var itemErrors, annotations []*OutputUnit
	matched := 0
	for i := range instance {
		res := n.item(instance, i, sub, "contains")
		if n.e.err != nil {
			return
		}
		if !res.valid() {
			itemErrors = append(itemErrors, res.errors...)
			continue
		}
		matched++
		annotations = append(annotations, res.annotations...)
		if draft >= schema.Draft202012 {
			n.ev.markItem(i)
		}
	}

	switch {
	case matched < minimum && !hasMin:
		n.addError("contains", ErrorTypeNoMatch, "Array does not contain item matching schema.")
		n.errors = append(n.errors, itemErrors...)
	case matched < minimum:
		n.addError("minContains", ErrorTypeTooFew,
			"Array must contain at least %d items matching schema. Only %d items were found.", minimum, matched)
		n.errors = append(n.errors, itemErrors...)
	case hasMax && matched > maximum:
		n.addError("maxContains", ErrorTypeTooMany,
			"Array may contain at most %d items matching schema. %d items were found.", maximum, matched)
	default:
		n.annotations = append(n.annotations, annotations...)
	}
}

func (n *node) unevaluatedItems(instance []any, sub any) {
	for i := range instance {
		if n.ev.hasItem(i) {
			continue
		}
		res := n.item(instance, i, sub, "unevaluatedItems")
		if n.e.err != nil {
			return
		}
		n.ev.markItem(i)
		if res.valid() {
			n.annotations = append(n.annotations, res.annotations...)
			continue
		}
		n.addError("unevaluatedItems", ErrorTypeNotAllowed, "Items did not match unevaluated items schema.")
		n.errors = append(n.errors, res.errors...)
	}
}

// uniqueItems reports the first pair of equal elements only.
func (n *node) uniqueItems(instance []any) {
	unique, ok := n.boolean("uniqueItems")
	if !ok || !unique {
		return
	}
	for j := 0; j < len(instance); j++ {
		for k := j + 1; k < len(instance); k++ {
			if jsonvalue.Equal(instance[j], instance[k]) {
				n.addError("uniqueItems", ErrorTypeDuplicateValue, "Duplicate items at indexes %d and %d.", j, k)
				return
			}
		}
	}
}
