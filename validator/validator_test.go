package validator

import (
	"errors"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/jsonschema/format"
	"github.com/erraggy/jsonschema/internal/testutil"
	"github.com/erraggy/jsonschema/jsonvalue"
	"github.com/erraggy/jsonschema/schema"
	"github.com/erraggy/jsonschema/schemaerrors"
)

func newValidator(t *testing.T, s string, opts ...Option) *Validator {
	t.Helper()
	table, doc := testutil.Dereferenced(t, s, "")
	v, err := New(table, doc, opts...)
	require.NoError(t, err)
	return v
}

func validate(t *testing.T, v *Validator, instance string) *OutputUnit {
	t.Helper()
	result, err := v.Validate(testutil.MustDecode(t, instance))
	require.NoError(t, err)
	return result
}

func keywordLocations(units []*OutputUnit) []string {
	out := make([]string, 0, len(units))
	for _, u := range units {
		out = append(out, u.KeywordLocation)
	}
	return out
}

func TestValidate_RequiredProperty(t *testing.T) {
	v := newValidator(t, `{"type": "object", "required": ["x"]}`)
	result := validate(t, v, `{}`)

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	unit := result.Errors[0]
	assert.Equal(t, ErrorTypeMissingValue, unit.ErrorType)
	assert.Equal(t, "/required", unit.KeywordLocation)
	assert.Equal(t, "", unit.InstanceLocation)
	assert.Equal(t, schema.DefaultBaseURI+"#/required", unit.AbsoluteKeywordLocation)
	assert.Equal(t, `Instance does not have required property "x".`, unit.Error)

	assert.True(t, validate(t, v, `{"x": null}`).Valid)
}

func TestValidate_ArrayTooShort(t *testing.T) {
	v := newValidator(t, `{"type": "array", "items": {"type": "number"}, "minItems": 3}`)
	result := validate(t, v, `[1, 2]`)

	assert.False(t, result.Valid)
	assert.Equal(t, []string{"/minItems"}, keywordLocations(result.Errors))
	assert.Equal(t, ErrorTypeTooFew, result.Errors[0].ErrorType)
}

func TestValidate_OneOfMultipleMatches(t *testing.T) {
	v := newValidator(t, `{"oneOf": [{"type": "number"}, {"minimum": 0}]}`)

	result := validate(t, v, `1`)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, ErrorTypeMultipleMatches, result.Errors[0].ErrorType)
	assert.Equal(t, "Instance does not match exactly one subschema (2 matches).", result.Errors[0].Error)

	assert.True(t, validate(t, v, `-1`).Valid)

	result = validate(t, newValidator(t, `{"oneOf": [{"type": "string"}, {"type": "null"}]}`), `1`)
	assert.False(t, result.Valid)
	assert.Equal(t, ErrorTypeNoMatch, result.Errors[0].ErrorType)
	assert.Equal(t, []string{"/oneOf", "/oneOf/0/type", "/oneOf/1/type"}, keywordLocations(result.Errors))
}

func TestValidate_IntegerAndMultipleOf(t *testing.T) {
	integer := newValidator(t, `{"type": "integer"}`)
	assert.True(t, validate(t, integer, `4.0`).Valid)
	assert.True(t, validate(t, integer, `-7`).Valid)
	assert.False(t, validate(t, integer, `4.5`).Valid)
	assert.False(t, validate(t, integer, `"4"`).Valid)

	cents := newValidator(t, `{"multipleOf": 0.01}`)
	assert.True(t, validate(t, cents, `19.99`).Valid)
	assert.True(t, validate(t, cents, `0.07`).Valid)
	assert.False(t, validate(t, cents, `19.991`).Valid)

	assert.False(t, validate(t, newValidator(t, `{"multipleOf": 2}`), `7`).Valid)
	assert.False(t, validate(t, newValidator(t, `{"type": "integer", "multipleOf": 0.123456789}`), `1e308`).Valid)
}

func TestValidate_CycleTerminates(t *testing.T) {
	v := newValidator(t, `{"$id": "#a", "allOf": [{"$ref": "#a"}]}`)
	for _, instance := range []string{`null`, `1`, `{"a": [1, 2, {"b": {}}]}`} {
		assert.True(t, validate(t, v, instance).Valid, instance)
	}

	linked := newValidator(t, `{
		"$defs": {"node": {"type": "object", "properties": {"next": {"$ref": "#/$defs/node"}}}},
		"$ref": "#/$defs/node"
	}`)
	assert.True(t, validate(t, linked, `{"next": {"next": {"next": {}}}}`).Valid)
	result := validate(t, linked, `{"next": {"next": 5}}`)
	assert.False(t, result.Valid)
	assert.Equal(t, "/next/next", result.Errors[len(result.Errors)-1].InstanceLocation)
}

func TestValidate_DynamicRef(t *testing.T) {
	table := schema.NewTable()
	tree := testutil.MustDecode(t, `{
		"$id": "https://example.com/tree",
		"$dynamicAnchor": "node",
		"type": "object",
		"properties": {
			"data": true,
			"children": {"type": "array", "items": {"$dynamicRef": "#node"}}
		}
	}`)
	strict := testutil.MustDecode(t, `{
		"$id": "https://example.com/strict-tree",
		"$dynamicAnchor": "node",
		"$ref": "tree",
		"unevaluatedProperties": false
	}`)
	require.NoError(t, schema.Dereference(table, tree, "", nil))
	require.NoError(t, schema.Dereference(table, strict, "", nil))

	strictV, err := New(table, strict)
	require.NoError(t, err)
	treeV, err := New(table, tree)
	require.NoError(t, err)

	instance := testutil.MustDecode(t, `{"children": [{"daat": 1}]}`)

	result, err := strictV.Validate(instance)
	require.NoError(t, err)
	assert.False(t, result.Valid, "the misspelled member must be rejected through the dynamic scope")
	last := result.Errors[len(result.Errors)-1]
	assert.Equal(t, "/children/0/daat", last.InstanceLocation)
	assert.Equal(t, "https://example.com/strict-tree#/unevaluatedProperties", last.AbsoluteKeywordLocation)

	result, err = treeV.Validate(instance)
	require.NoError(t, err)
	assert.True(t, result.Valid)

	result, err = strictV.Validate(testutil.MustDecode(t, `{"children": [{"data": 1, "children": []}]}`))
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestValidate_RecursiveRef(t *testing.T) {
	table := schema.NewTable()
	tree := testutil.MustDecode(t, `{
		"$schema": "https://json-schema.org/draft/2019-09/schema",
		"$id": "https://example.com/tree",
		"$recursiveAnchor": true,
		"type": "object",
		"properties": {
			"data": true,
			"children": {"type": "array", "items": {"$recursiveRef": "#"}}
		}
	}`)
	strict := testutil.MustDecode(t, `{
		"$schema": "https://json-schema.org/draft/2019-09/schema",
		"$id": "https://example.com/strict-tree",
		"$recursiveAnchor": true,
		"$ref": "tree",
		"unevaluatedProperties": false
	}`)
	require.NoError(t, schema.Dereference(table, tree, "", nil))
	require.NoError(t, schema.Dereference(table, strict, "", nil))

	strictV, err := New(table, strict)
	require.NoError(t, err)
	assert.Equal(t, schema.Draft201909, strictV.Draft())
	treeV, err := New(table, tree)
	require.NoError(t, err)

	instance := testutil.MustDecode(t, `{"children": [{"daat": 1}]}`)
	result, err := strictV.Validate(instance)
	require.NoError(t, err)
	assert.False(t, result.Valid)

	result, err = treeV.Validate(instance)
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestValidate_AdditionalPropertiesWinsOverUnevaluated(t *testing.T) {
	v := newValidator(t, `{
		"properties": {"a": true},
		"additionalProperties": {"type": "string"},
		"unevaluatedProperties": false
	}`)
	assert.True(t, validate(t, v, `{"a": 1, "b": "x"}`).Valid)

	result := validate(t, v, `{"b": 1}`)
	assert.False(t, result.Valid)
	assert.Equal(t, []string{"/additionalProperties", "/additionalProperties/type"}, keywordLocations(result.Errors))

	assert.True(t, validate(t, newValidator(t, `{"additionalProperties": true, "unevaluatedProperties": false}`), `{"x": 1}`).Valid)
}

func TestValidate_UnevaluatedProperties(t *testing.T) {
	t.Run("through allOf", func(t *testing.T) {
		v := newValidator(t, `{"allOf": [{"properties": {"a": true}}], "unevaluatedProperties": false}`)
		assert.True(t, validate(t, v, `{"a": 1}`).Valid)

		result := validate(t, v, `{"a": 1, "b": 2}`)
		assert.False(t, result.Valid)
		require.Len(t, result.Errors, 2)
		assert.Equal(t, "/unevaluatedProperties", result.Errors[0].KeywordLocation)
		assert.Equal(t, "", result.Errors[0].InstanceLocation)
		assert.Equal(t, ErrorTypeNotAllowed, result.Errors[0].ErrorType)
		assert.Equal(t, "/b", result.Errors[1].InstanceLocation)
	})

	t.Run("failing branches do not count", func(t *testing.T) {
		v := newValidator(t, `{
			"anyOf": [
				{"properties": {"a": true}, "required": ["b"]},
				{"properties": {"c": true}}
			],
			"unevaluatedProperties": false
		}`)
		assert.True(t, validate(t, v, `{"c": 1}`).Valid)
		assert.False(t, validate(t, v, `{"a": 1, "c": 1}`).Valid)
	})

	t.Run("not leaks nothing", func(t *testing.T) {
		v := newValidator(t, `{"not": {"not": {"properties": {"a": true}}}, "unevaluatedProperties": false}`)
		assert.False(t, validate(t, v, `{"a": 1}`).Valid)
	})

	t.Run("if then else", func(t *testing.T) {
		v := newValidator(t, `{
			"if": {"properties": {"kind": {"const": "a"}}, "required": ["kind"]},
			"then": {"properties": {"x": true}},
			"else": {"properties": {"y": true}},
			"unevaluatedProperties": false
		}`)
		assert.True(t, validate(t, v, `{"kind": "a", "x": 1}`).Valid)
		assert.False(t, validate(t, v, `{"kind": "a", "y": 1}`).Valid)
		assert.True(t, validate(t, v, `{"y": 1}`).Valid)
	})

	t.Run("through $ref", func(t *testing.T) {
		v := newValidator(t, `{
			"$defs": {"base": {"properties": {"a": true}}},
			"$ref": "#/$defs/base",
			"unevaluatedProperties": false
		}`)
		assert.True(t, validate(t, v, `{"a": 1}`).Valid)
		assert.False(t, validate(t, v, `{"a": 1, "z": 1}`).Valid)
	})
}

func TestValidate_UnevaluatedItems(t *testing.T) {
	v := newValidator(t, `{"prefixItems": [{"type": "string"}], "unevaluatedItems": false}`)
	assert.True(t, validate(t, v, `["a"]`).Valid)
	result := validate(t, v, `["a", 1]`)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, "/1", result.Errors[1].InstanceLocation)

	contains := newValidator(t, `{"contains": {"type": "string"}, "unevaluatedItems": {"type": "number"}}`)
	assert.True(t, validate(t, contains, `["a", 1]`).Valid)
	assert.False(t, validate(t, contains, `["a", true]`).Valid)
}

func TestValidate_Contains(t *testing.T) {
	tests := []struct {
		name     string
		schema   string
		instance string
		valid    bool
		keyword  string
	}{
		{name: "match", schema: `{"contains": {"const": 1}}`, instance: `[2, 1]`, valid: true},
		{name: "no match", schema: `{"contains": {"const": 1}}`, instance: `[2, 3]`, keyword: "/contains"},
		{name: "empty", schema: `{"contains": {"const": 1}}`, instance: `[]`, keyword: "/contains"},
		{name: "minContains met", schema: `{"contains": {"const": 1}, "minContains": 2}`, instance: `[1, 2, 1]`, valid: true},
		{name: "minContains short", schema: `{"contains": {"const": 1}, "minContains": 2}`, instance: `[1, 2]`, keyword: "/minContains"},
		{name: "minContains zero", schema: `{"contains": {"const": 1}, "minContains": 0}`, instance: `[]`, valid: true},
		{name: "maxContains", schema: `{"contains": {"const": 1}, "maxContains": 1}`, instance: `[1, 1]`, keyword: "/maxContains"},
		{name: "non-array ignored", schema: `{"contains": {"const": 1}}`, instance: `"x"`, valid: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validate(t, newValidator(t, tt.schema), tt.instance)
			assert.Equal(t, tt.valid, result.Valid)
			if !tt.valid {
				require.NotEmpty(t, result.Errors)
				assert.Equal(t, tt.keyword, result.Errors[0].KeywordLocation)
			}
		})
	}
}

func TestValidate_Keywords(t *testing.T) {
	tests := []struct {
		name     string
		schema   string
		instance string
		valid    bool
		kind     ErrorType
	}{
		{name: "type list", schema: `{"type": ["string", "null"]}`, instance: `null`, valid: true},
		{name: "type list mismatch", schema: `{"type": ["string", "null"]}`, instance: `1`, kind: ErrorTypeInvalidType},
		{name: "const object", schema: `{"const": {"a": [1, 2]}}`, instance: `{"a": [1, 2.0]}`, valid: true},
		{name: "const array order", schema: `{"const": [1, 2]}`, instance: `[2, 1]`, kind: ErrorTypeInvalidValue},
		{name: "enum number", schema: `{"enum": [1, "a", {"x": [1]}]}`, instance: `1.0`, valid: true},
		{name: "enum object", schema: `{"enum": [1, "a", {"x": [1]}]}`, instance: `{"x": [2]}`, kind: ErrorTypeInvalidValue},
		{name: "enum bool is not number", schema: `{"enum": [1]}`, instance: `true`, kind: ErrorTypeInvalidValue},
		{name: "not", schema: `{"not": {"type": "string"}}`, instance: `"x"`, kind: ErrorTypeNotAllowed},
		{name: "anyOf", schema: `{"anyOf": [{"type": "string"}, {"minimum": 3}]}`, instance: `1`, kind: ErrorTypeNoMatch},
		{name: "allOf", schema: `{"allOf": [{"type": "number"}, {"minimum": 3}]}`, instance: `1`, kind: ErrorTypeInvalidValue},
		{name: "minProperties", schema: `{"minProperties": 2}`, instance: `{"a": 1}`, kind: ErrorTypeTooFew},
		{name: "maxProperties", schema: `{"maxProperties": 1}`, instance: `{"a": 1, "b": 2}`, kind: ErrorTypeTooMany},
		{name: "propertyNames", schema: `{"propertyNames": {"maxLength": 2}}`, instance: `{"abc": 1}`, kind: ErrorTypeInvalidValue},
		{name: "dependentRequired", schema: `{"dependentRequired": {"a": ["b"]}}`, instance: `{"a": 1}`, kind: ErrorTypeMissingValue},
		{name: "dependentRequired absent trigger", schema: `{"dependentRequired": {"a": ["b"]}}`, instance: `{"c": 1}`, valid: true},
		{name: "dependentSchemas", schema: `{"dependentSchemas": {"a": {"required": ["b"]}}}`, instance: `{"a": 1}`, kind: ErrorTypeInvalidValue},
		{name: "patternProperties", schema: `{"patternProperties": {"^x-": {"type": "string"}}}`, instance: `{"x-a": 1, "y": 1}`, kind: ErrorTypeInvalidValue},
		{name: "additionalProperties false", schema: `{"properties": {"a": true}, "additionalProperties": false}`, instance: `{"b": 1}`, kind: ErrorTypeNotAllowed},
		{name: "maxItems", schema: `{"maxItems": 1}`, instance: `[1, 2]`, kind: ErrorTypeTooMany},
		{name: "prefixItems", schema: `{"prefixItems": [{"type": "string"}], "items": false}`, instance: `["a", 1]`, kind: ErrorTypeInvalidValue},
		{name: "prefixItems short instance", schema: `{"prefixItems": [{"type": "string"}, {"type": "number"}]}`, instance: `["a"]`, valid: true},
		{name: "uniqueItems numbers", schema: `{"uniqueItems": true}`, instance: `[1, 2, 1.0]`, kind: ErrorTypeDuplicateValue},
		{name: "uniqueItems objects", schema: `{"uniqueItems": true}`, instance: `[{"a": 1}, {"a": 1}]`, kind: ErrorTypeDuplicateValue},
		{name: "uniqueItems distinct types", schema: `{"uniqueItems": true}`, instance: `[1, "1", true]`, valid: true},
		{name: "minimum", schema: `{"minimum": 5}`, instance: `4`, kind: ErrorTypeInvalidValue},
		{name: "exclusiveMaximum", schema: `{"exclusiveMaximum": 5}`, instance: `5`, kind: ErrorTypeInvalidValue},
		{name: "minLength", schema: `{"minLength": 3}`, instance: `"ab"`, kind: ErrorTypeTooFew},
		{name: "maxLength surrogate pair", schema: `{"maxLength": 2}`, instance: `"💩"`, valid: true},
		{name: "maxLength utf16 units", schema: `{"maxLength": 2}`, instance: `"💩a"`, kind: ErrorTypeTooMany},
		{name: "pattern is a search", schema: `{"pattern": "b+"}`, instance: `"abbc"`, valid: true},
		{name: "pattern mismatch", schema: `{"pattern": "^b"}`, instance: `"abc"`, kind: ErrorTypeInvalidValue},
		{name: "false schema", schema: `false`, instance: `1`, kind: ErrorTypeNotAllowed},
		{name: "true schema", schema: `true`, instance: `{"any": "thing"}`, valid: true},
		{name: "format is annotation", schema: `{"format": "email"}`, instance: `"nope"`, valid: true},
		{name: "string keywords skip numbers", schema: `{"minLength": 10, "pattern": "^x"}`, instance: `5`, valid: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validate(t, newValidator(t, tt.schema), tt.instance)
			assert.Equal(t, tt.valid, result.Valid)
			if !tt.valid {
				require.NotEmpty(t, result.Errors)
				assert.Equal(t, tt.kind, result.Errors[0].ErrorType)
			}
		})
	}
}

func TestValidate_DraftDifferences(t *testing.T) {
	t.Run("draft7 $ref ignores siblings", func(t *testing.T) {
		v := newValidator(t, `{
			"$schema": "http://json-schema.org/draft-07/schema#",
			"definitions": {"s": {"type": "string"}},
			"$ref": "#/definitions/s",
			"maxLength": 1
		}`)
		assert.Equal(t, schema.Draft7, v.Draft())
		assert.True(t, validate(t, v, `"abc"`).Valid)
		assert.False(t, validate(t, v, `1`).Valid)

		modern := newValidator(t, `{"$defs": {"s": {"type": "string"}}, "$ref": "#/$defs/s", "maxLength": 1}`)
		assert.False(t, validate(t, modern, `"abc"`).Valid)
	})

	t.Run("draft4 boolean exclusiveMinimum", func(t *testing.T) {
		v := newValidator(t, `{
			"$schema": "http://json-schema.org/draft-04/schema#",
			"minimum": 5,
			"exclusiveMinimum": true
		}`)
		assert.False(t, validate(t, v, `5`).Valid)
		assert.True(t, validate(t, v, `6`).Valid)
	})

	t.Run("format assertion", func(t *testing.T) {
		const s = `{"format": "email"}`
		assert.True(t, validate(t, newValidator(t, s), `"nope"`).Valid)
		assert.False(t, validate(t, newValidator(t, s, WithFormatAssertion(true)), `"nope"`).Valid)
		assert.False(t, validate(t, newValidator(t, s, WithDraft(schema.Draft7)), `"nope"`).Valid)
		assert.True(t, validate(t, newValidator(t, s, WithDraft(schema.Draft7), WithFormatAssertion(false)), `"nope"`).Valid)
		assert.True(t, validate(t, newValidator(t, s, WithFormatAssertion(true)), `"a@example.com"`).Valid)
	})

	t.Run("draft7 dependencies", func(t *testing.T) {
		v := newValidator(t, `{
			"$schema": "http://json-schema.org/draft-07/schema#",
			"dependencies": {"a": ["b"], "c": {"required": ["d"]}}
		}`)
		assert.False(t, validate(t, v, `{"a": 1}`).Valid)
		assert.False(t, validate(t, v, `{"c": 1}`).Valid)
		assert.True(t, validate(t, v, `{"a": 1, "b": 2, "c": 3, "d": 4}`).Valid)
	})

	t.Run("draft7 tuple items", func(t *testing.T) {
		v := newValidator(t, `{
			"$schema": "http://json-schema.org/draft-07/schema#",
			"items": [{"type": "string"}],
			"additionalItems": {"type": "number"}
		}`)
		assert.True(t, validate(t, v, `["a", 1, 2]`).Valid)
		result := validate(t, v, `["a", "b"]`)
		assert.False(t, result.Valid)
		assert.Equal(t, "/additionalItems", result.Errors[0].KeywordLocation)
	})

	t.Run("draft7 ignores later keywords", func(t *testing.T) {
		v := newValidator(t, `{"unevaluatedProperties": false, "dependentRequired": {"a": ["b"]}}`, WithDraft(schema.Draft7))
		assert.True(t, validate(t, v, `{"a": 1}`).Valid)
	})
}

func TestValidate_LocationsThroughRefs(t *testing.T) {
	v := newValidator(t, `{
		"$id": "https://example.com/s",
		"$defs": {"str": {"type": "string"}},
		"properties": {"a b": {"$ref": "#/$defs/str"}}
	}`)
	result := validate(t, v, `{"a b": 1}`)
	require.Len(t, result.Errors, 3)

	assert.Equal(t, []string{"/properties", "/properties/a b/$ref", "/properties/a b/$ref/type"}, keywordLocations(result.Errors))
	assert.Equal(t, "/a b", result.Errors[2].InstanceLocation)
	assert.Equal(t, "https://example.com/s#/properties/a%20b/$ref", result.Errors[1].AbsoluteKeywordLocation)
	assert.Equal(t, "https://example.com/s#/$defs/str/type", result.Errors[2].AbsoluteKeywordLocation)
	assert.Equal(t, "A subschema had errors.", result.Errors[1].Error)
}

func TestValidate_FalseSubschemaLocation(t *testing.T) {
	v := newValidator(t, `{"$id": "https://example.com/s", "properties": {"a": false}}`)
	result := validate(t, v, `{"a": 1}`)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, "/properties/a", result.Errors[1].KeywordLocation)
	assert.Equal(t, "https://example.com/s#/properties/a", result.Errors[1].AbsoluteKeywordLocation)
	assert.Equal(t, "False boolean schema.", result.Errors[1].Error)
}

func TestValidate_FalseRootLocation(t *testing.T) {
	table := schema.NewTable()
	require.NoError(t, schema.Dereference(table, false, "https://example.com/never.json", nil))

	v, err := New(table, false, WithRootURI("https://example.com/never.json"))
	require.NoError(t, err)
	result := validate(t, v, `1`)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "", result.Errors[0].KeywordLocation)
	assert.Equal(t, "https://example.com/never.json", result.Errors[0].AbsoluteKeywordLocation)

	v, err = New(table, false)
	require.NoError(t, err)
	result = validate(t, v, `1`)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, schema.DefaultBaseURI, result.Errors[0].AbsoluteKeywordLocation)
}

func TestValidate_RelativeFolderIDRef(t *testing.T) {
	table := schema.NewTable()
	root := testutil.MustDecode(t, `{
		"$id": "http://localhost:1234/root",
		"properties": {
			"x": {"$id": "folder/", "items": {"$ref": "item.json"}}
		}
	}`)
	require.NoError(t, schema.Dereference(table, root, "", nil))
	item := testutil.MustDecode(t, `{"type": "integer"}`)
	require.NoError(t, schema.Dereference(table, item, "http://localhost:1234/folder/item.json", nil))

	v, err := New(table, root)
	require.NoError(t, err)
	assert.True(t, validate(t, v, `{"x": [1, 2]}`).Valid)

	result := validate(t, v, `{"x": ["a"]}`)
	assert.False(t, result.Valid)
	last := result.Errors[len(result.Errors)-1]
	assert.Equal(t, "/x/0", last.InstanceLocation)
	assert.Equal(t, "http://localhost:1234/folder/item.json#/type", last.AbsoluteKeywordLocation)
}

func TestValidate_ItemsMessages(t *testing.T) {
	v := newValidator(t, `{"items": {"type": "string"}}`)
	result := validate(t, v, `["a", 1]`)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, "/items", result.Errors[0].KeywordLocation)
	assert.Equal(t, "Items did not match schema.", result.Errors[0].Error)

	v = newValidator(t, `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"items": [{"type": "string"}],
		"additionalItems": {"type": "integer"}
	}`)
	result = validate(t, v, `["a", "100%"]`)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, "/additionalItems", result.Errors[0].KeywordLocation)
	assert.Equal(t, "Items did not match additional items schema.", result.Errors[0].Error)
}

func TestValidate_ShortCircuit(t *testing.T) {
	const s = `{"properties": {"a": {"type": "string"}, "b": {"type": "string"}}}`
	const instance = `{"a": 1, "b": 2}`

	assert.Len(t, validate(t, newValidator(t, s), instance).Errors, 4)
	assert.Len(t, validate(t, newValidator(t, s, WithShortCircuit(true)), instance).Errors, 2)

	flag := validate(t, newValidator(t, s, WithOutputFormat(Flag)), instance)
	assert.False(t, flag.Valid)
	assert.Nil(t, flag.Errors)
	assert.Nil(t, flag.Annotations)

	// Composite keywords try every branch regardless.
	composite := newValidator(t, `{"anyOf": [{"type": "string"}, {"type": "number"}]}`, WithOutputFormat(Flag))
	assert.True(t, validate(t, composite, `1`).Valid)
}

func TestValidate_FatalErrors(t *testing.T) {
	tests := []struct {
		name     string
		schema   string
		instance string
		target   error
	}{
		{name: "unresolved ref", schema: `{"$ref": "#/$defs/missing"}`, instance: `1`, target: schemaerrors.ErrUnresolvedRef},
		{name: "remote ref not loaded", schema: `{"properties": {"a": {"$ref": "https://example.com/other.json"}}}`, instance: `{"a": 1}`, target: schemaerrors.ErrUnresolvedRef},
		{name: "wrong keyword type", schema: `{"minLength": "3"}`, instance: `"abc"`, target: schemaerrors.ErrInvalidKeyword},
		{name: "invalid pattern", schema: `{"pattern": "("}`, instance: `"abc"`, target: schemaerrors.ErrInvalidKeyword},
		{name: "invalid patternProperties", schema: `{"patternProperties": {"(": true}}`, instance: `{}`, target: schemaerrors.ErrInvalidKeyword},
		{name: "negative multipleOf", schema: `{"multipleOf": -1}`, instance: `2`, target: schemaerrors.ErrInvalidKeyword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newValidator(t, tt.schema)
			result, err := v.Validate(testutil.MustDecode(t, tt.instance))
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}

	var refErr *schemaerrors.UnresolvedRefError
	_, err := newValidator(t, `{"$ref": "#/$defs/missing"}`).Validate(1.0)
	require.True(t, errors.As(err, &refErr))
	assert.Equal(t, "#/$defs/missing", refErr.Ref)
	assert.Equal(t, schema.DefaultBaseURI+"#/$defs/missing", refErr.AbsoluteRef)
}

func TestValidate_Annotations(t *testing.T) {
	const s = `{"title": "root", "properties": {"a": {"description": "A", "format": "email"}}}`
	v := newValidator(t, s, WithAnnotations(true))

	result := validate(t, v, `{"a": "x"}`)
	require.True(t, result.Valid)
	assert.Equal(t, []string{"/title", "/properties/a/description", "/properties/a/format"}, keywordLocations(result.Annotations))
	assert.Equal(t, "/a", result.Annotations[1].InstanceLocation)
	assert.Equal(t, "A", result.Annotations[1].Annotation)
	assert.True(t, result.Annotations[1].Valid)

	failing := validate(t, newValidator(t, `{"title": "t", "type": "string"}`, WithAnnotations(true)), `1`)
	assert.False(t, failing.Valid)
	assert.NotNil(t, failing.Annotations)
	assert.Empty(t, failing.Annotations)

	plain := validate(t, newValidator(t, s), `{"a": "x"}`)
	assert.Nil(t, plain.Annotations)
}

func TestOutputUnit_MarshalJSON(t *testing.T) {
	v := newValidator(t, `{"$id": "https://example.com/s", "required": ["x"]}`)

	data, err := json.Marshal(validate(t, v, `{}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"valid": false,
		"errors": [{
			"valid": false,
			"instanceLocation": "",
			"keywordLocation": "/required",
			"absoluteKeywordLocation": "https://example.com/s#/required",
			"error": "Instance does not have required property \"x\".",
			"errorType": "MISSING_VALUE"
		}]
	}`, string(data))

	data, err = json.Marshal(validate(t, v, `{"x": 1}`))
	require.NoError(t, err)
	assert.Equal(t, `{"valid":true,"errors":[]}`, string(data))

	flag := newValidator(t, `{"required": ["x"]}`, WithOutputFormat(Flag))
	data, err = json.Marshal(validate(t, flag, `{}`))
	require.NoError(t, err)
	assert.Equal(t, `{"valid":false}`, string(data))

	annotated := newValidator(t, `{"title": "T"}`, WithAnnotations(true))
	data, err = json.Marshal(validate(t, annotated, `1`))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"valid": true,
		"errors": [],
		"annotations": [{
			"valid": true,
			"instanceLocation": "",
			"keywordLocation": "/title",
			"absoluteKeywordLocation": "https://json-schema.invalid/schema#/title",
			"annotation": "T"
		}]
	}`, string(data))
}

func TestCheck(t *testing.T) {
	v := newValidator(t, `{"properties": {"a": {"type": "string"}}}`, WithOutputFormat(Flag))
	require.NoError(t, v.Check(testutil.MustDecode(t, `{"a": "x"}`)))

	err := v.Check(testutil.MustDecode(t, `{"a": 1}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, schemaerrors.ErrValidation))

	var vErr *schemaerrors.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "/properties/a/type", vErr.KeywordLocation)
	assert.Equal(t, "/a", vErr.InstanceLocation)
	assert.Equal(t, string(ErrorTypeInvalidType), vErr.ErrorType)
	assert.Equal(t, 2, vErr.Count)
	assert.Contains(t, err.Error(), "and 1 more")
}

func TestValidate_Deterministic(t *testing.T) {
	v := newValidator(t, `{
		"properties": {"a": {"type": "string"}, "b": {"minimum": 3}},
		"patternProperties": {"^c": {"type": "boolean"}},
		"anyOf": [{"required": ["z"]}, {"minProperties": 9}]
	}`)
	instance := testutil.MustDecode(t, `{"c1": 1, "b": 1, "a": 2, "c2": "x"}`)

	first, err := v.Validate(instance)
	require.NoError(t, err)
	want, err := json.Marshal(first)
	require.NoError(t, err)
	for range 5 {
		again, err := v.Validate(instance)
		require.NoError(t, err)
		got, err := json.Marshal(again)
		require.NoError(t, err)
		assert.Equal(t, string(want), string(got))
	}
}

func TestValidate_Concurrent(t *testing.T) {
	v := newValidator(t, `{
		"type": "object",
		"properties": {"name": {"type": "string", "pattern": "^[a-z]+$"}, "tags": {"type": "array", "uniqueItems": true}},
		"required": ["name"]
	}`)
	good := testutil.MustDecode(t, `{"name": "abc", "tags": [1, 2]}`)
	bad := testutil.MustDecode(t, `{"name": "ABC", "tags": [1, 1]}`)

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := range 32 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			instance, want := good, true
			if i%2 == 1 {
				instance, want = bad, false
			}
			result, err := v.Validate(instance)
			if err != nil {
				errs <- err
				return
			}
			if result.Valid != want {
				errs <- errors.New("unexpected verdict")
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestNew_Errors(t *testing.T) {
	table, doc := testutil.Dereferenced(t, `{"type": "string"}`, "")

	_, err := New(nil, doc)
	assert.True(t, errors.Is(err, schemaerrors.ErrConfig))

	_, err = New(table, testutil.MustDecode(t, `{"type": "string"}`))
	assert.True(t, errors.Is(err, schemaerrors.ErrConfig), "undereferenced schema must be rejected")

	_, err = New(table, "string")
	assert.True(t, errors.Is(err, schemaerrors.ErrConfig))

	_, err = New(table, doc, WithDraft(schema.DraftUnknown))
	assert.True(t, errors.Is(err, schemaerrors.ErrConfig))

	_, err = New(table, doc, WithAnnotations(true), WithOutputFormat(Flag))
	assert.True(t, errors.Is(err, schemaerrors.ErrConfig))

	_, err = New(table, doc, WithFormats(nil))
	assert.True(t, errors.Is(err, schemaerrors.ErrConfig))

	_, err = New(table, doc, WithRootURI("relative.json"))
	assert.True(t, errors.Is(err, schemaerrors.ErrConfig))

	v, err := New(table, true)
	require.NoError(t, err)
	assert.Equal(t, schema.DefaultDraft, v.Draft())
}

func TestWithFormats(t *testing.T) {
	formats := format.New()
	formats.Register("even", func(s string) bool { return len(s)%2 == 0 })

	v := newValidator(t, `{"format": "even"}`, WithFormats(formats), WithFormatAssertion(true))
	assert.True(t, validate(t, v, `"ab"`).Valid)
	result := validate(t, v, `"abc"`)
	assert.False(t, result.Valid)
	assert.Equal(t, ErrorTypeInvalidFormat, result.Errors[0].ErrorType)

	// The default table is untouched.
	assert.True(t, validate(t, newValidator(t, `{"format": "even"}`, WithFormatAssertion(true)), `"abc"`).Valid)
}

func TestParseOutputFormat(t *testing.T) {
	f, err := ParseOutputFormat("basic")
	require.NoError(t, err)
	assert.Equal(t, Basic, f)
	assert.Equal(t, "basic", f.String())

	f, err = ParseOutputFormat("flag")
	require.NoError(t, err)
	assert.Equal(t, "flag", f.String())

	_, err = ParseOutputFormat("verbose")
	assert.Error(t, err)
}

func TestValidate_NativeInstances(t *testing.T) {
	v := newValidator(t, `{"type": "object", "properties": {"n": {"type": "integer"}}}`)
	result, err := v.Validate(jsonvalue.FromNative(map[string]any{"n": 3}))
	require.NoError(t, err)
	assert.True(t, result.Valid)
}
