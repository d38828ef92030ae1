package jsonvalue

import (
	"fmt"
	"math"
	"strconv"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/jsonschema/schemaerrors"
)

// maxAliasDepth bounds alias expansion to protect against alias bombs.
const maxAliasDepth = 64

// DecodeYAML parses a YAML document into the generic value model.
// Mapping order is preserved. Mapping keys must be scalars; non-string scalar
// keys are converted to their textual form.
func DecodeYAML(data []byte) (any, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, &schemaerrors.DecodeError{Message: "invalid YAML", Cause: err}
	}
	if node.Kind == 0 {
		return nil, &schemaerrors.DecodeError{Message: "empty document"}
	}
	v, err := fromYAMLNode(&node, 0)
	if err != nil {
		return nil, &schemaerrors.DecodeError{Cause: err}
	}
	return v, nil
}

func fromYAMLNode(node *yaml.Node, aliasDepth int) (any, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return fromYAMLNode(node.Content[0], aliasDepth)

	case yaml.MappingNode:
		obj := NewObject(len(node.Content) / 2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode, valNode := node.Content[i], node.Content[i+1]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping key must be a scalar", keyNode.Line)
			}
			val, err := fromYAMLNode(valNode, aliasDepth)
			if err != nil {
				return nil, err
			}
			obj.Set(keyNode.Value, val)
		}
		return obj, nil

	case yaml.SequenceNode:
		arr := make([]any, 0, len(node.Content))
		for _, item := range node.Content {
			v, err := fromYAMLNode(item, aliasDepth)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil

	case yaml.AliasNode:
		if aliasDepth >= maxAliasDepth || node.Alias == nil {
			return nil, fmt.Errorf("line %d: alias nesting too deep", node.Line)
		}
		return fromYAMLNode(node.Alias, aliasDepth+1)

	case yaml.ScalarNode:
		if node.ShortTag() == "!!timestamp" {
			return node.Value, nil
		}
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return normalizeScalar(v), nil
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node kind %v", node.Line, node.Kind)
}

// MarshalYAML renders the object as an ordered YAML mapping.
func (o *Object) MarshalYAML() (any, error) {
	return ToYAMLNode(o), nil
}

// ToYAMLNode converts a JSON value into a yaml.Node tree, preserving object
// member order.
func ToYAMLNode(v any) *yaml.Node {
	switch t := v.(type) {
	case *Object:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		t.Range(func(k string, val any) bool {
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				ToYAMLNode(val))
			return true
		})
		return node
	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range t {
			node.Content = append(node.Content, ToYAMLNode(item))
		}
		return node
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(t)}
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: t}
	}
	if f, ok := ToFloat(v); ok {
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(int64(f), 10)}
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(f, 'g', -1, 64)}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fmt.Sprint(v)}
}
