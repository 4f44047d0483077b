package source

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Memory holds a root context value in memory.
type Memory struct {
	root any
}

// NewMemory wraps an existing value.
func NewMemory(root any) *Memory { return &Memory{root: root} }

// LoadFile reads a YAML or JSON document into a memory source.
func LoadFile(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}
	var root any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse data file: %w", err)
	}
	return &Memory{root: normalize(root)}, nil
}

func (m *Memory) Root(context.Context) (any, error) { return m.root, nil }

// normalize rewrites yaml's map[any]any containers into the engine's record
// model.
func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, item := range x {
			x[k] = normalize(item)
		}
		return x
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[fmt.Sprintf("%v", k)] = normalize(item)
		}
		return out
	case []any:
		for i, item := range x {
			x[i] = normalize(item)
		}
		return x
	case int:
		return int64(x)
	default:
		return v
	}
}
