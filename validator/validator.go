package validator

import (
	"fmt"
	"strings"

	"github.com/erraggy/jsonschema/internal/pointer"
	"github.com/erraggy/jsonschema/jsonvalue"
	"github.com/erraggy/jsonschema/schema"
	"github.com/erraggy/jsonschema/schemaerrors"
)

// Validator validates instances against one dereferenced schema.
// A Validator is safe for concurrent use as long as its table is not
// modified.
type Validator struct {
	table        *schema.Table
	root         any
	rootURI      string
	cfg          *config
	draft        schema.Draft
	assertFormat bool
	shortCircuit bool
	patterns     *patternCache
}

// New returns a validator for root, which must be a boolean or an object
// already dereferenced into t. The draft is taken from WithDraft, then from
// root's $schema, then defaults to [schema.DefaultDraft].
func New(t *schema.Table, root any, opts ...Option) (*Validator, error) {
	if t == nil {
		return nil, &schemaerrors.ConfigError{Option: "table", Message: "table must not be nil"}
	}
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, err
	}

	v := &Validator{
		table:    t,
		root:     root,
		cfg:      cfg,
		patterns: &patternCache{},
	}
	switch r := root.(type) {
	case bool:
		v.rootURI = cfg.rootURI
		if v.rootURI == "" {
			v.rootURI = schema.DefaultBaseURI
		}
	case *jsonvalue.Object:
		meta := t.Meta(r)
		if meta == nil {
			return nil, &schemaerrors.ConfigError{Option: "schema", Message: "schema has not been dereferenced"}
		}
		v.rootURI = meta.AbsoluteURI
	default:
		return nil, &schemaerrors.ConfigError{
			Option:  "schema",
			Value:   jsonvalue.TypeOf(root),
			Message: "schema must be a boolean or an object",
		}
	}

	v.draft = cfg.draft
	if v.draft == schema.DraftUnknown {
		v.draft = schema.Detect(root, schema.DefaultDraft)
	}
	v.assertFormat = v.draft <= schema.Draft7
	if cfg.formatAssertion != nil {
		v.assertFormat = *cfg.formatAssertion
	}
	v.shortCircuit = cfg.outputFormat == Flag
	if cfg.shortCircuit != nil {
		v.shortCircuit = *cfg.shortCircuit
	}
	return v, nil
}

// Draft returns the draft the validator applies.
func (v *Validator) Draft() schema.Draft {
	return v.draft
}

// Validate evaluates instance and returns the result in the configured
// output format. Validation failures are reported in the result; the error
// is reserved for defects of the schema set such as unresolved references,
// keyword values of the wrong type and invalid regular expressions.
func (v *Validator) Validate(instance any) (*OutputUnit, error) {
	return v.run(instance, v.cfg.outputFormat, v.shortCircuit)
}

// Check validates instance and converts a failure into a
// *schemaerrors.ValidationError describing the most relevant error unit.
// It returns nil when the instance is valid.
func (v *Validator) Check(instance any) error {
	// Details are needed even when the configured format is Flag.
	result, err := v.run(instance, Basic, v.shortCircuit)
	if err != nil {
		return err
	}
	if result.Valid {
		return nil
	}
	unit := mostRelevant(result.Errors)
	return &schemaerrors.ValidationError{
		InstanceLocation:        unit.InstanceLocation,
		KeywordLocation:         unit.KeywordLocation,
		AbsoluteKeywordLocation: unit.AbsoluteKeywordLocation,
		ErrorType:               string(unit.ErrorType),
		Message:                 unit.Error,
		Count:                   len(result.Errors),
	}
}

// mostRelevant picks the first error unit that is not a summary of the units
// following it.
func mostRelevant(units []*OutputUnit) *OutputUnit {
	for i, u := range units {
		if i+1 < len(units) && strings.HasPrefix(units[i+1].KeywordLocation, u.KeywordLocation+"/") {
			continue
		}
		return u
	}
	return units[0]
}

func (v *Validator) run(instance any, outputFormat OutputFormat, shortCircuit bool) (*OutputUnit, error) {
	e := &evaluation{
		v:            v,
		shortCircuit: shortCircuit,
		annotate:     v.cfg.annotations && outputFormat == Basic,
		active:       make(map[visit]struct{}),
	}
	res := e.eval(instance, v.root, nil, "", "", v.rootURI, newEvaluated())
	if e.err != nil {
		return nil, e.err
	}

	unit := &OutputUnit{Valid: len(res.errors) == 0}
	if outputFormat == Basic {
		unit.Errors = res.errors
		if unit.Errors == nil {
			unit.Errors = []*OutputUnit{}
		}
		if e.annotate {
			unit.Annotations = []*OutputUnit{}
			if unit.Valid {
				unit.Annotations = append(unit.Annotations, res.annotations...)
			}
		}
	}
	return unit, nil
}

// visit identifies a schema applied to an instance location through a
// reference. Re-entering an active visit cannot add information.
type visit struct {
	schema           *jsonvalue.Object
	instanceLocation string
}

// evaluation is the state of one Validate call.
type evaluation struct {
	v            *Validator
	shortCircuit bool
	annotate     bool
	err          error
	// scope is the dynamic scope: base URIs of the resources entered, outermost first.
	scope  []string
	active map[visit]struct{}
}

// result is what one schema contributes for one instance node.
type result struct {
	errors      []*OutputUnit
	annotations []*OutputUnit
}

func (r result) valid() bool {
	return len(r.errors) == 0
}

func (e *evaluation) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

// eval applies s to instance. absURI is the absolute location of s, used when
// s carries no metadata of its own (boolean schemas).
func (e *evaluation) eval(instance, s any, anchor *jsonvalue.Object, instLoc, kwLoc, absURI string, ev *evaluated) result {
	if e.err != nil {
		return result{}
	}
	switch s := s.(type) {
	case bool:
		if s {
			return result{}
		}
		return result{errors: []*OutputUnit{{
			InstanceLocation:        instLoc,
			KeywordLocation:         kwLoc,
			AbsoluteKeywordLocation: absURI,
			Keyword:                 "false",
			Error:                   "False boolean schema.",
			ErrorType:               ErrorTypeNotAllowed,
		}}}
	case *jsonvalue.Object:
		n := &node{
			e:        e,
			obj:      s,
			instance: instance,
			instLoc:  instLoc,
			kwLoc:    kwLoc,
			absURI:   absURI,
			anchor:   anchor,
			ev:       ev,
		}
		if meta := e.v.table.Meta(s); meta != nil {
			n.meta = meta
			n.absURI = meta.AbsoluteURI
			if len(e.scope) == 0 || e.scope[len(e.scope)-1] != meta.BaseURI {
				e.scope = append(e.scope, meta.BaseURI)
				defer func() { e.scope = e.scope[:len(e.scope)-1] }()
			}
		}
		return n.evaluate()
	}
	e.fail(&schemaerrors.KeywordError{
		Location: absURI,
		Value:    s,
		Message:  "schema must be a boolean or an object",
	})
	return result{}
}

// node applies one schema object to one instance node.
type node struct {
	e        *evaluation
	obj      *jsonvalue.Object
	meta     *schema.Meta
	instance any
	instLoc  string
	kwLoc    string
	absURI   string
	anchor   *jsonvalue.Object
	ev       *evaluated

	errors      []*OutputUnit
	annotations []*OutputUnit
}

// evaluate runs the keywords of the schema in a fixed order.
func (n *node) evaluate() result {
	draft := n.e.v.draft

	if draft == schema.Draft201909 && n.anchor == nil {
		if raw, ok := n.obj.Get("$recursiveAnchor"); ok && raw == true {
			n.anchor = n.obj
		}
	}
	if draft == schema.Draft201909 {
		n.recursiveRef()
	}
	if n.obj.Has("$ref") {
		n.ref()
		if draft <= schema.Draft7 {
			return n.result()
		}
	}
	if draft >= schema.Draft202012 {
		n.dynamicRef()
	}

	n.typeKeyword()
	if draft >= schema.Draft7 {
		n.constKeyword()
	}
	n.enumKeyword()
	n.not()
	for _, kw := range []string{"anyOf", "allOf", "oneOf"} {
		n.composite(kw)
	}
	if draft >= schema.Draft7 {
		n.conditional()
	}

	switch instance := n.instance.(type) {
	case *jsonvalue.Object:
		n.objectKeywords(instance)
	case []any:
		n.arrayKeywords(instance)
	case string:
		n.stringKeywords(instance)
	default:
		if f, ok := jsonvalue.ToFloat(instance); ok {
			n.numberKeywords(f)
		}
	}
	return n.result()
}

// result assembles the contribution of this schema. Annotations only
// survive a schema that validated.
func (n *node) result() result {
	if n.e.err != nil {
		return result{}
	}
	if len(n.errors) > 0 {
		return result{errors: n.errors}
	}
	if !n.e.annotate {
		return result{}
	}
	own := n.collectAnnotations()
	return result{annotations: append(own, n.annotations...)}
}

// keywordLocation returns the evaluation path of a keyword of this schema.
func (n *node) keywordLocation(tokens ...string) string {
	loc := n.kwLoc
	for _, tok := range tokens {
		loc = pointer.Append(loc, tok)
	}
	return loc
}

// absoluteLocation returns the canonical URI of a keyword of this schema.
func (n *node) absoluteLocation(tokens ...string) string {
	return appendFragment(n.absURI, tokens...)
}

// appendFragment extends the JSON pointer fragment of u with tokens.
func appendFragment(u string, tokens ...string) string {
	var b strings.Builder
	b.WriteString(u)
	if !strings.Contains(u, "#") {
		b.WriteByte('#')
	}
	for _, tok := range tokens {
		b.WriteString(pointer.EncodeFragment(pointer.Append("", tok)))
	}
	return b.String()
}

// newError builds an error unit for a keyword of this schema.
func (n *node) newError(kw string, kind ErrorType, format string, args ...any) *OutputUnit {
	return &OutputUnit{
		InstanceLocation:        n.instLoc,
		KeywordLocation:         n.keywordLocation(kw),
		AbsoluteKeywordLocation: n.absoluteLocation(kw),
		Keyword:                 kw,
		Error:                   fmt.Sprintf(format, args...),
		ErrorType:               kind,
	}
}

func (n *node) addError(kw string, kind ErrorType, format string, args ...any) {
	n.errors = append(n.errors, n.newError(kw, kind, format, args...))
}

// apply evaluates a subschema found at tokens below this schema.
func (n *node) apply(instance, sub any, instLoc string, ev *evaluated, tokens ...string) result {
	return n.e.eval(instance, sub, n.anchor, instLoc, n.keywordLocation(tokens...), n.absoluteLocation(tokens...), ev)
}

// invalidKeyword aborts the evaluation with a KeywordError.
func (n *node) invalidKeyword(kw string, value any, message string) {
	n.e.fail(&schemaerrors.KeywordError{
		Keyword:  kw,
		Location: n.absoluteLocation(kw),
		Value:    value,
		Message:  message,
	})
}

func (n *node) number(kw string) (float64, bool) {
	raw, ok := n.obj.Get(kw)
	if !ok {
		return 0, false
	}
	f, ok := jsonvalue.ToFloat(raw)
	if !ok {
		n.invalidKeyword(kw, raw, "must be a number")
		return 0, false
	}
	return f, true
}

// count reads a non-negative integer keyword.
func (n *node) count(kw string) (int, bool) {
	raw, ok := n.obj.Get(kw)
	if !ok {
		return 0, false
	}
	f, ok := jsonvalue.ToFloat(raw)
	if !ok || f < 0 || !jsonvalue.IsInteger(raw) {
		n.invalidKeyword(kw, raw, "must be a non-negative integer")
		return 0, false
	}
	return int(f), true
}

func (n *node) boolean(kw string) (value, ok bool) {
	raw, ok := n.obj.Get(kw)
	if !ok {
		return false, false
	}
	b, ok := raw.(bool)
	if !ok {
		n.invalidKeyword(kw, raw, "must be a boolean")
		return false, false
	}
	return b, true
}

func (n *node) stringKeyword(kw string) (string, bool) {
	raw, ok := n.obj.Get(kw)
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	if !ok {
		n.invalidKeyword(kw, raw, "must be a string")
		return "", false
	}
	return s, true
}

func (n *node) stringArray(kw string) ([]string, bool) {
	raw, ok := n.obj.Get(kw)
	if !ok {
		return nil, false
	}
	return n.toStrings(kw, raw)
}

func (n *node) toStrings(kw string, raw any) ([]string, bool) {
	items, ok := raw.([]any)
	if !ok {
		n.invalidKeyword(kw, raw, "must be an array of strings")
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			n.invalidKeyword(kw, raw, "must be an array of strings")
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func (n *node) schemaMap(kw string) (*jsonvalue.Object, bool) {
	raw, ok := n.obj.Get(kw)
	if !ok {
		return nil, false
	}
	m, ok := raw.(*jsonvalue.Object)
	if !ok {
		n.invalidKeyword(kw, raw, "must be an object")
		return nil, false
	}
	return m, true
}

// jsonText renders a value compactly for error messages.
func jsonText(v any) string {
	data, err := jsonvalue.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
