package schema

import (
	"strconv"

	"github.com/erraggy/jsonschema/jsonvalue"
)

// Keywords whose values are never subschemas.
var ignoredKeywords = map[string]bool{
	"id": true, "$id": true, "$ref": true, "$schema": true, "$anchor": true,
	"$vocabulary": true, "$comment": true, "$recursiveRef": true,
	"$recursiveAnchor": true, "$dynamicRef": true, "$dynamicAnchor": true,
	"default": true, "enum": true, "const": true, "examples": true,
	"required": true, "type": true, "title": true, "description": true,
	"maximum": true, "minimum": true, "exclusiveMaximum": true, "exclusiveMinimum": true,
	"multipleOf": true, "maxLength": true, "minLength": true, "pattern": true,
	"format": true, "maxItems": true, "minItems": true, "uniqueItems": true,
	"maxProperties": true, "minProperties": true, "maxContains": true, "minContains": true,
	"dependentRequired": true, "contentEncoding": true, "contentMediaType": true,
	"deprecated": true, "readOnly": true, "writeOnly": true,
}

// Keywords holding an array of subschemas. "items" may also hold a single
// schema.
var arrayKeywords = map[string]bool{
	"prefixItems": true, "items": true, "allOf": true, "anyOf": true, "oneOf": true,
}

// Keywords holding an object whose member values are subschemas.
var mapKeywords = map[string]bool{
	"$defs": true, "definitions": true, "properties": true, "patternProperties": true,
	"dependentSchemas": true, "dependencies": true,
}

// Keywords holding exactly one subschema.
var singleKeywords = map[string]bool{
	"additionalItems": true, "contains": true, "additionalProperties": true,
	"unevaluatedProperties": true, "unevaluatedItems": true, "propertyNames": true,
	"not": true, "if": true, "then": true, "else": true, "contentSchema": true,
}

// IsApplicator reports whether keyword holds subschemas.
func IsApplicator(keyword string) bool {
	return arrayKeywords[keyword] || mapKeywords[keyword] || singleKeywords[keyword]
}

// KeywordKind tells how a keyword's value holds subschemas.
type KeywordKind int

const (
	// KindValue holds no subschema.
	KindValue KeywordKind = iota
	// KindSchema holds a single subschema.
	KindSchema
	// KindSchemaArray holds an array of subschemas, or for "items" possibly
	// a single one.
	KindSchemaArray
	// KindSchemaMap holds an object whose member values are subschemas.
	KindSchemaMap
)

// KindOf classifies a known keyword. Unknown keywords are KindValue.
func KindOf(keyword string) KeywordKind {
	switch {
	case arrayKeywords[keyword]:
		return KindSchemaArray
	case mapKeywords[keyword]:
		return KindSchemaMap
	case singleKeywords[keyword]:
		return KindSchema
	}
	return KindValue
}

// eachSubschema calls fn for every value of obj that may be a schema, in
// member order. tokens is the unescaped path from obj to the value. Values of
// unknown keywords are reported with isRoot=false: they are addressable by
// JSON pointer but cannot declare identities.
func eachSubschema(obj *jsonvalue.Object, fn func(tokens []string, child any, isRoot bool) error) error {
	for _, key := range obj.Keys() {
		if ignoredKeywords[key] {
			continue
		}
		value, _ := obj.Get(key)
		switch {
		case arrayKeywords[key]:
			arr, ok := value.([]any)
			if !ok {
				if err := fn([]string{key}, value, true); err != nil {
					return err
				}
				continue
			}
			for i, item := range arr {
				if err := fn([]string{key, strconv.Itoa(i)}, item, true); err != nil {
					return err
				}
			}
		case mapKeywords[key]:
			members, ok := value.(*jsonvalue.Object)
			if !ok {
				continue
			}
			for _, name := range members.Keys() {
				member, _ := members.Get(name)
				if err := fn([]string{key, name}, member, true); err != nil {
					return err
				}
			}
		case singleKeywords[key]:
			if err := fn([]string{key}, value, true); err != nil {
				return err
			}
		default:
			switch value.(type) {
			case *jsonvalue.Object, bool:
				if err := fn([]string{key}, value, false); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
