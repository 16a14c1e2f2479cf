package format

import (
	"strconv"
	"strings"

	"conf_surgeon/value"

	"github.com/cockroachdb/errors"
	gyaml "github.com/goccy/go-yaml"
	"gopkg.in/yaml.v3"
)

// parseYAML returns value tree parsed from <text>.
//
// Scalars tagged as timestamps stay plain strings so dates survive round-trips unmodified. Aliases are resolved
// into copies of their anchor (no alias preservation).
func parseYAML(text string) (value.Value, error) {
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(text), &node); err != nil {
		return nil, errors.Wrap(err, "Parse YAML")
	}
	if node.Kind == 0 || len(node.Content) == 0 {
		return value.Null{}, nil
	}
	return yamlNodeToValue(node.Content[0])
}

// yamlNodeToValue returns value converted from <n>
func yamlNodeToValue(n *yaml.Node) (value.Value, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return yamlNodeToValue(n.Alias)
	case yaml.ScalarNode:
		return yamlScalarToValue(n), nil
	case yaml.SequenceNode:
		out := make(value.List, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := yamlNodeToValue(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		out := make(value.Map, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := yamlNodeToValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			out = out.With(n.Content[i].Value, v)
		}
		return out, nil
	}
	return nil, errors.Errorf("Unexpected YAML node kind: %v", n.Kind)
}

// yamlScalarToValue returns value converted from scalar node <n> according to it's resolved tag
func yamlScalarToValue(n *yaml.Node) value.Value {
	switch n.Tag {
	case "!!null":
		return value.Null{}
	case "!!bool":
		return value.Bool(strings.EqualFold(n.Value, "true"))
	case "!!int":
		if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
			return value.NumberOfInt(i)
		}
		return value.String(n.Value)
	case "!!float":
		if f, err := strconv.ParseFloat(n.Value, 64); err == nil {
			return value.NumberOf(f)
		}
		return value.String(n.Value)
	}
	// Covers !!str, !!timestamp and any custom tags
	return value.String(n.Value)
}

// serializeYAML returns <v> rendered as YAML with 2 space indent, indented sequences, no anchors or aliases and
// original key order preserved
func serializeYAML(v value.Value) (string, error) {
	out, err := gyaml.MarshalWithOptions(toGoYAML(v), gyaml.Indent(2), gyaml.IndentSequence(true))
	if err != nil {
		return "", errors.Wrap(err, "Serialize YAML")
	}
	return string(out), nil
}

// toGoYAML returns <v> converted to the plain Go shape the YAML encoder understands, using an ordered MapSlice
// for maps so key order is never sorted away
func toGoYAML(v value.Value) any {
	switch t := v.(type) {
	case nil, value.Null:
		return nil
	case value.Bool:
		return bool(t)
	case value.Number:
		if i, err := strconv.ParseInt(string(t), 10, 64); err == nil {
			return i
		}
		if f, ok := t.Float64(); ok {
			return f
		}
		return string(t)
	case value.String:
		return string(t)
	case value.List:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = toGoYAML(item)
		}
		return out
	case value.Map:
		out := make(gyaml.MapSlice, 0, len(t))
		for _, field := range t {
			out = append(out, gyaml.MapItem{Key: field.Key, Value: toGoYAML(field.Value)})
		}
		return out
	}
	return nil
}
