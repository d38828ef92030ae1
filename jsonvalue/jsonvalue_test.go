package jsonvalue

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v4"

	"github.com/erraggy/jsonschema/schemaerrors"
)

func TestDecode_PreservesOrder(t *testing.T) {
	v, err := Decode([]byte(`{"z": 1, "a": [true, null, "x"], "m": {"b": 2, "a": 1}}`))
	require.NoError(t, err)

	obj, ok := v.(*Object)
	require.True(t, ok)
	assert.Equal(t, []string{"z", "a", "m"}, obj.Keys())

	inner, _ := obj.Get("m")
	assert.Equal(t, []string{"b", "a"}, inner.(*Object).Keys())

	arr, _ := obj.Get("a")
	assert.Equal(t, []any{true, nil, "x"}, arr)

	z, _ := obj.Get("z")
	assert.Equal(t, 1.0, z)
}

func TestDecode_DuplicateKeyKeepsFirstPosition(t *testing.T) {
	v, err := Decode([]byte(`{"a": 1, "b": 2, "a": 3}`))
	require.NoError(t, err)
	obj := v.(*Object)
	assert.Equal(t, []string{"a", "b"}, obj.Keys())
	a, _ := obj.Get("a")
	assert.Equal(t, 3.0, a)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "truncated", input: `{"a": `},
		{name: "trailing data", input: `{} {}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, schemaerrors.ErrDecode))
		})
	}
}

func TestDecodeYAML(t *testing.T) {
	v, err := DecodeYAML([]byte(`
type: object
required: [name]
properties:
  name: {type: string, minLength: 1}
  age: {type: integer}
`))
	require.NoError(t, err)
	obj := v.(*Object)
	assert.Equal(t, []string{"type", "required", "properties"}, obj.Keys())

	props, _ := obj.Get("properties")
	assert.Equal(t, []string{"name", "age"}, props.(*Object).Keys())

	name, _ := props.(*Object).Get("name")
	minLength, _ := name.(*Object).Get("minLength")
	assert.Equal(t, 1.0, minLength)
}

func TestDecodeDocument(t *testing.T) {
	tests := []struct {
		name  string
		input string
		keys  []string
	}{
		{"json", `{"b": 1, "a": 2}`, []string{"b", "a"}},
		{"json with leading space", "\n\t {\"x\": true}", []string{"x"}},
		{"json with byte order mark", "\uFEFF{\"x\": true}", []string{"x"}},
		{"yaml", "b: 1\na: 2\n", []string{"b", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := DecodeDocument([]byte(tt.input))
			require.NoError(t, err)
			obj, ok := v.(*Object)
			require.True(t, ok)
			assert.Equal(t, tt.keys, obj.Keys())
		})
	}

	_, err := DecodeDocument([]byte(`{"a": `))
	assert.ErrorIs(t, err, schemaerrors.ErrDecode)
}

func TestEqual(t *testing.T) {
	mustDecode := func(s string) any {
		v, err := Decode([]byte(s))
		require.NoError(t, err)
		return v
	}

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{name: "int and float", a: 1, b: 1.0, want: true},
		{name: "json.Number", a: json.Number("2.5"), b: 2.5, want: true},
		{name: "bool vs number", a: true, b: 1.0, want: false},
		{name: "null", a: nil, b: nil, want: true},
		{name: "arrays order sensitive", a: mustDecode(`[1,2]`), b: mustDecode(`[2,1]`), want: false},
		{name: "objects order insensitive", a: mustDecode(`{"a":1,"b":2}`), b: mustDecode(`{"b":2,"a":1}`), want: true},
		{name: "objects different key sets", a: mustDecode(`{"a":1}`), b: mustDecode(`{"b":1}`), want: false},
		{name: "nested", a: mustDecode(`{"a":[{"x":1}]}`), b: mustDecode(`{"a":[{"x":1.0}]}`), want: true},
		{name: "string vs number", a: "1", b: 1.0, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
		})
	}
}

func TestTypeOfAndIsInteger(t *testing.T) {
	assert.Equal(t, TypeNull, TypeOf(nil))
	assert.Equal(t, TypeNumber, TypeOf(3))
	assert.Equal(t, TypeObject, TypeOf(NewObject(0)))
	assert.Equal(t, "", TypeOf(struct{}{}))

	assert.True(t, IsInteger(4.0))
	assert.False(t, IsInteger(4.5))
	assert.True(t, IsInteger(int64(7)))
	assert.False(t, IsInteger("4"))
}

func TestFromNative(t *testing.T) {
	v := FromNative(map[string]any{
		"b": []any{1, "x"},
		"a": map[string]any{"n": int64(3)},
	})
	obj := v.(*Object)
	assert.Equal(t, []string{"a", "b"}, obj.Keys())
	b, _ := obj.Get("b")
	assert.Equal(t, []any{1.0, "x"}, b)
}

func TestObject_MutationAndClone(t *testing.T) {
	obj := NewObject(2)
	obj.Set("a", 1.0)
	obj.Set("b", []any{2.0})
	obj.Set("a", 3.0)
	assert.Equal(t, []string{"a", "b"}, obj.Keys())

	clone := obj.Clone()
	obj.Delete("a")
	assert.Equal(t, []string{"b"}, obj.Keys())
	assert.Equal(t, []string{"a", "b"}, clone.Keys())
	assert.False(t, obj.Has("a"))

	var nilObj *Object
	assert.Equal(t, 0, nilObj.Len())
	_, ok := nilObj.Get("x")
	assert.False(t, ok)
}

func TestMarshal_PreservesOrder(t *testing.T) {
	v, err := Decode([]byte(`{"z":1,"a":{"y":[1.5,"s"],"b":null}}`))
	require.NoError(t, err)
	data, err := Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":{"y":[1.5,"s"],"b":null}}`, string(data))
}

func TestToYAMLNode_RoundTrip(t *testing.T) {
	v, err := Decode([]byte(`{"name":"x","count":2,"ratio":0.5,"tags":["a"],"ok":true}`))
	require.NoError(t, err)

	data, err := marshalYAMLForTest(v)
	require.NoError(t, err)

	back, err := DecodeYAML(data)
	require.NoError(t, err)
	assert.True(t, Equal(v, back))
	assert.Equal(t, []string{"name", "count", "ratio", "tags", "ok"}, back.(*Object).Keys())
}

func marshalYAMLForTest(v any) ([]byte, error) {
	return yaml.Marshal(ToYAMLNode(v))
}
