package table

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/fjglira/filecheck/internal/domain"
)

// YAMLDecoder decodes .yaml and .yml test files.
type YAMLDecoder struct{}

// NewYAMLDecoder creates a new YAMLDecoder.
func NewYAMLDecoder() *YAMLDecoder {
	return &YAMLDecoder{}
}

// SupportedExtensions returns the file extensions this decoder handles.
func (d *YAMLDecoder) SupportedExtensions() []string {
	return []string{".yaml", ".yml"}
}

// Decode parses YAML content. Values are normalized to the shapes the TOML
// decoder produces: string keys, int64 integers.
func (d *YAMLDecoder) Decode(filePath string, content []byte) (map[string]any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, domain.NewErrorWithSuggestion("load", filePath, 0, "invalid YAML",
			"check the indentation near the line yaml reports", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return map[string]any{}, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, domain.NewError("load", filePath, root.Line,
			fmt.Sprintf("top level must be a mapping, got %s", nodeKind(root)), nil)
	}
	var raw map[string]any
	if err := root.Decode(&raw); err != nil {
		return nil, domain.NewError("load", filePath, root.Line, "invalid YAML", err)
	}
	if raw == nil {
		return map[string]any{}, nil
	}
	return normalizeYAML(raw).(map[string]any), nil
}

func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.SequenceNode:
		return "a sequence"
	case yaml.ScalarNode:
		return "a scalar"
	case yaml.AliasNode:
		return "an alias"
	default:
		return "an unknown node"
	}
}

func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalizeYAML(e)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = normalizeYAML(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeYAML(e)
		}
		return out
	case int:
		return int64(t)
	case uint64:
		return int64(t)
	default:
		return v
	}
}
