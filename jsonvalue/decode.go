package jsonvalue

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	"github.com/erraggy/jsonschema/schemaerrors"
)

// Decode parses a JSON document into the generic value model.
// Object member order is preserved; a duplicated member keeps its first
// position and its last value.
func Decode(data []byte) (any, error) {
	return decode(bytes.NewReader(data), "")
}

// DecodeReader parses a JSON document from r. source names the document in
// error messages and may be empty.
func DecodeReader(r io.Reader, source string) (any, error) {
	return decode(r, source)
}

func decode(r io.Reader, source string) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &schemaerrors.DecodeError{Source: source, Message: "empty document"}
		}
		return nil, &schemaerrors.DecodeError{Source: source, Cause: err}
	}
	v, err := decodeToken(dec, tok)
	if err != nil {
		return nil, &schemaerrors.DecodeError{Source: source, Cause: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &schemaerrors.DecodeError{Source: source, Message: "unexpected data after top-level value"}
	}
	return v, nil
}

func decodeToken(dec *json.Decoder, tok json.Token) (any, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", rune(t))
		}
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", t.String(), err)
		}
		return f, nil
	case float64:
		return t, nil
	case string, bool, nil:
		return t, nil
	default:
		return nil, fmt.Errorf("unexpected token %T", tok)
	}
}

func decodeObject(dec *json.Decoder) (*Object, error) {
	obj := NewObject(4)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("object key must be a string, got %T", keyTok)
		}
		valTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		val, err := decodeToken(dec, valTok)
		if err != nil {
			return nil, err
		}
		obj.Set(key, val)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeArray(dec *json.Decoder) ([]any, error) {
	arr := make([]any, 0, 4)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		v, err := decodeToken(dec, tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}

// DecodeDocument parses data as JSON when its first significant byte opens
// an object or array, and as YAML otherwise.
func DecodeDocument(data []byte) (any, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n\uFEFF")
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return Decode(trimmed)
	}
	return DecodeYAML(data)
}
