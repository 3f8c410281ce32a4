package codec

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/reoring/revmodel"
)

// DecodeYAML decodes a YAML document and constructs a value of type t under
// the default lifecycle.
func DecodeYAML(t revmodel.Type, data []byte) (any, error) {
	return DecodeYAMLIn(nil, t, data)
}

// DecodeYAMLIn is DecodeYAML under an explicit lifecycle.
func DecodeYAMLIn(lc *revmodel.Lifecycle, t revmodel.Type, data []byte) (any, error) {
	var node any
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("codec: decode yaml: %w", err)
	}
	return revmodel.NewIn(lc, t, normalizeYAML(node))
}

// EncodeYAML renders a managed instance as YAML from its plain form.
func EncodeYAML(inst revmodel.Instance) ([]byte, error) {
	out, err := yaml.Marshal(inst.ToJSON(true))
	if err != nil {
		return nil, fmt.Errorf("codec: encode yaml: %w", err)
	}
	return out, nil
}

// normalizeYAML converts YAML-decoded values into JSON-like ones. Mappings
// whose keys are all strings become map[string]any; other mappings keep
// their keys so that maps with number keys can still be built from them.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = normalizeYAML(vv)
		}
		return out
	case map[any]any:
		allStrings := true
		for k := range t {
			if _, ok := k.(string); !ok {
				allStrings = false
				break
			}
		}
		if allStrings {
			out := make(map[string]any, len(t))
			for k, vv := range t {
				out[k.(string)] = normalizeYAML(vv)
			}
			return out
		}
		out := make(map[any]any, len(t))
		for k, vv := range t {
			out[k] = normalizeYAML(vv)
		}
		return out
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = normalizeYAML(t[i])
		}
		return arr
	default:
		return v
	}
}
