package jsonvalue

import (
	"encoding/json"
	"math"
	"sort"
)

// JSON type names as used by the "type" keyword.
const (
	TypeNull    = "null"
	TypeBoolean = "boolean"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeString  = "string"
	TypeArray   = "array"
	TypeObject  = "object"
)

// TypeOf returns the JSON type name of v. Numbers always report "number";
// use [IsInteger] for the integer refinement. Unsupported Go values report "".
func TypeOf(v any) string {
	switch v.(type) {
	case nil:
		return TypeNull
	case bool:
		return TypeBoolean
	case string:
		return TypeString
	case []any:
		return TypeArray
	case *Object:
		return TypeObject
	}
	if _, ok := ToFloat(v); ok {
		return TypeNumber
	}
	return ""
}

// ToFloat converts any Go numeric value (and json.Number) to float64.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// IsInteger reports whether v is a number with a zero fractional part.
// 4.0 is an integer, 4.5 is not.
func IsInteger(v any) bool {
	f, ok := ToFloat(v)
	if !ok || math.IsInf(f, 0) || math.IsNaN(f) {
		return false
	}
	return f == math.Trunc(f)
}

// Equal reports structural equality of two JSON values: arrays compare
// element-wise in order, objects compare by key set and member values, and
// numbers compare by value regardless of their Go representation.
func Equal(a, b any) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case *Object:
		y, ok := b.(*Object)
		if !ok || x.Len() != y.Len() {
			return false
		}
		if x == y {
			return true
		}
		for _, k := range x.Keys() {
			yv, exists := y.Get(k)
			if !exists {
				return false
			}
			xv, _ := x.Get(k)
			if !Equal(xv, yv) {
				return false
			}
		}
		return true
	}
	xf, ok := ToFloat(a)
	if !ok {
		return false
	}
	yf, ok := ToFloat(b)
	return ok && xf == yf
}

// FromNative converts a tree built from Go maps and slices into the value
// model: map[string]any becomes *Object (keys sorted for determinism), []any
// and []string become []any, and every numeric type becomes float64. Values
// already in the model are returned unchanged.
func FromNative(v any) any {
	switch t := v.(type) {
	case nil, bool, string, float64, *Object:
		return v
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := NewObject(len(keys))
		for _, k := range keys {
			obj.Set(k, FromNative(t[k]))
		}
		return obj
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = FromNative(item)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = item
		}
		return out
	}
	return normalizeScalar(v)
}

// normalizeScalar maps Go numeric types to float64 and leaves others alone.
func normalizeScalar(v any) any {
	if _, isString := v.(string); isString {
		return v
	}
	if f, ok := ToFloat(v); ok {
		return f
	}
	return v
}
