package parser

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/mcncl/jsongraph/internal/models"
)

// YAMLDecoder decodes the first document of a YAML stream.
// Mapping order is preserved and aliases are expanded in place.
type YAMLDecoder struct{}

// TryDecode implements Decoder.
func (YAMLDecoder) TryDecode(text string) (models.JSONValue, *Failure) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		// yaml.v3 messages carry "line N" which the offset extractor understands.
		return nil, &Failure{Message: err.Error()}
	}

	value, err := convertYAMLNode(&doc)
	if err != nil {
		return nil, &Failure{Message: err.Error()}
	}
	return value, nil
}

func convertYAMLNode(node *yaml.Node) (models.JSONValue, error) {
	switch node.Kind {
	case 0:
		return nil, nil
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return convertYAMLNode(node.Content[0])
	case yaml.AliasNode:
		if node.Alias == nil {
			return nil, fmt.Errorf("line %d: unresolved alias %q", node.Line, node.Value)
		}
		return convertYAMLNode(node.Alias)
	case yaml.SequenceNode:
		arr := make(models.JSONArray, 0, len(node.Content))
		for _, child := range node.Content {
			value, err := convertYAMLNode(child)
			if err != nil {
				return nil, err
			}
			arr = append(arr, value)
		}
		return arr, nil
	case yaml.MappingNode:
		return convertYAMLMapping(node)
	case yaml.ScalarNode:
		return convertYAMLScalar(node)
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node kind %d", node.Line, node.Kind)
	}
}

func convertYAMLMapping(node *yaml.Node) (models.JSONValue, error) {
	obj := models.JSONObject{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]

		if keyNode.ShortTag() == "!!merge" {
			merged, err := convertYAMLNode(valueNode)
			if err != nil {
				return nil, err
			}
			obj = mergeYAML(obj, merged)
			continue
		}

		value, err := convertYAMLNode(valueNode)
		if err != nil {
			return nil, err
		}
		obj = obj.Set(keyNode.Value, value)
	}
	return obj, nil
}

// mergeYAML applies a "<<" merge: keys already present win.
func mergeYAML(obj models.JSONObject, merged models.JSONValue) models.JSONObject {
	switch m := merged.(type) {
	case models.JSONObject:
		for _, member := range m {
			if _, exists := obj.Get(member.Key); !exists {
				obj = append(obj, member)
			}
		}
	case models.JSONArray:
		for _, item := range m {
			obj = mergeYAML(obj, item)
		}
	}
	return obj
}

func convertYAMLScalar(node *yaml.Node) (models.JSONValue, error) {
	switch node.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return b, nil
	case "!!int":
		var i int64
		if err := node.Decode(&i); err != nil {
			// Out of int64 range; keep the literal.
			return node.Value, nil
		}
		return json.Number(strconv.FormatInt(i, 10)), nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return node.Value, nil
		}
		return json.Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
	default:
		return node.Value, nil
	}
}
