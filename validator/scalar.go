package validator

import (
	"math"
	"strconv"
	"unicode/utf16"

	"github.com/erraggy/jsonschema/schema"
	"github.com/erraggy/jsonschema/schemaerrors"
)

// multipleOfEpsilon absorbs the floating point error of the remainder.
const multipleOfEpsilon = 1.1920929e-7

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func (n *node) numberKeywords(f float64) {
	if n.e.v.draft == schema.Draft4 {
		n.draft4Bounds(f)
	} else {
		if limit, ok := n.number("minimum"); ok && f < limit {
			n.addError("minimum", ErrorTypeInvalidValue, "%s is less than %s.", formatNumber(f), formatNumber(limit))
		}
		if limit, ok := n.number("maximum"); ok && f > limit {
			n.addError("maximum", ErrorTypeInvalidValue, "%s is greater than %s.", formatNumber(f), formatNumber(limit))
		}
		if limit, ok := n.number("exclusiveMinimum"); ok && f <= limit {
			n.addError("exclusiveMinimum", ErrorTypeInvalidValue, "%s is less than or equal to %s.", formatNumber(f), formatNumber(limit))
		}
		if limit, ok := n.number("exclusiveMaximum"); ok && f >= limit {
			n.addError("exclusiveMaximum", ErrorTypeInvalidValue, "%s is greater than or equal to %s.", formatNumber(f), formatNumber(limit))
		}
	}

	if m, ok := n.number("multipleOf"); ok {
		if m <= 0 {
			n.invalidKeyword("multipleOf", m, "must be greater than 0")
			return
		}
		if !isMultipleOf(f, m) {
			n.addError("multipleOf", ErrorTypeInvalidValue, "%s is not a multiple of %s.", formatNumber(f), formatNumber(m))
		}
	}
}

// isMultipleOf tolerates a remainder within multipleOfEpsilon of 0 or of m.
func isMultipleOf(f, m float64) bool {
	r := math.Abs(math.Mod(f, m))
	if math.IsNaN(r) {
		return false
	}
	return r < multipleOfEpsilon || math.Abs(m)-r < multipleOfEpsilon
}

// draft4Bounds applies minimum and maximum with the boolean
// exclusiveMinimum and exclusiveMaximum modifiers.
func (n *node) draft4Bounds(f float64) {
	if limit, ok := n.number("minimum"); ok {
		exclusive, _ := n.boolean("exclusiveMinimum")
		switch {
		case exclusive && f <= limit:
			n.addError("minimum", ErrorTypeInvalidValue, "%s is less than or equal to %s.", formatNumber(f), formatNumber(limit))
		case f < limit:
			n.addError("minimum", ErrorTypeInvalidValue, "%s is less than %s.", formatNumber(f), formatNumber(limit))
		}
	}
	if limit, ok := n.number("maximum"); ok {
		exclusive, _ := n.boolean("exclusiveMaximum")
		switch {
		case exclusive && f >= limit:
			n.addError("maximum", ErrorTypeInvalidValue, "%s is greater than or equal to %s.", formatNumber(f), formatNumber(limit))
		case f > limit:
			n.addError("maximum", ErrorTypeInvalidValue, "%s is greater than %s.", formatNumber(f), formatNumber(limit))
		}
	}
}

// stringLength counts UTF-16 code units.
func stringLength(s string) int {
	length := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			length += l
		} else {
			length++
		}
	}
	return length
}

func (n *node) stringKeywords(s string) {
	minLength, hasMin := n.count("minLength")
	maxLength, hasMax := n.count("maxLength")
	if hasMin || hasMax {
		length := stringLength(s)
		if hasMin && length < minLength {
			n.addError("minLength", ErrorTypeTooFew, "String is too short (%d < %d).", length, minLength)
		}
		if hasMax && length > maxLength {
			n.addError("maxLength", ErrorTypeTooMany, "String is too long (%d > %d).", length, maxLength)
		}
	}

	if pattern, ok := n.stringKeyword("pattern"); ok {
		re, err := n.e.v.patterns.compile(pattern)
		if err != nil {
			n.e.fail(&schemaerrors.KeywordError{
				Keyword:  "pattern",
				Location: n.absoluteLocation("pattern"),
				Value:    pattern,
				Message:  "invalid regular expression",
				Cause:    err,
			})
			return
		}
		if !re.MatchString(s) {
			n.addError("pattern", ErrorTypeInvalidValue, "String does not match pattern %q.", pattern)
		}
	}

	if n.e.v.assertFormat {
		if name, ok := n.stringKeyword("format"); ok && !n.e.v.cfg.formats.Check(name, s) {
			n.addError("format", ErrorTypeInvalidFormat, "String does not match format %q.", name)
		}
	}
}

// annotationKeywords are reported as annotation units by schemas that
// validated. "format" joins them when it is not asserted.
var annotationKeywords = []string{
	"title", "description", "default", "deprecated", "readOnly", "writeOnly",
	"examples", "format", "contentEncoding", "contentMediaType",
}

func (n *node) collectAnnotations() []*OutputUnit {
	var out []*OutputUnit
	for _, kw := range annotationKeywords {
		if kw == "format" && n.e.v.assertFormat {
			continue
		}
		value, ok := n.obj.Get(kw)
		if !ok {
			continue
		}
		out = append(out, &OutputUnit{
			Valid:                   true,
			InstanceLocation:        n.instLoc,
			KeywordLocation:         n.keywordLocation(kw),
			AbsoluteKeywordLocation: n.absoluteLocation(kw),
			Keyword:                 kw,
			Annotation:              value,
		})
	}
	return out
}
