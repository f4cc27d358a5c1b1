package plan

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseTemplate decodes a YAML template and validates it. A document holding a
// list of templates yields the first one.
func ParseTemplate(data []byte) (Template, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return Template{}, fmt.Errorf("parsing template: %w", err)
	}
	if len(node.Content) == 0 {
		return Template{}, fmt.Errorf("parsing template: empty document")
	}

	root := node.Content[0]
	if root.Kind == yaml.SequenceNode {
		if len(root.Content) == 0 {
			return Template{}, fmt.Errorf("parsing template: empty template list")
		}
		root = root.Content[0]
	}

	var t Template
	if err := root.Decode(&t); err != nil {
		return Template{}, fmt.Errorf("decoding template: %w", err)
	}
	for i := range t.Workouts {
		t.Workouts[i].Index = i
	}
	if err := t.Validate(); err != nil {
		return Template{}, err
	}
	return t, nil
}

// FileProvider reads the template from a YAML file on every call, so edits to
// the file take effect without a restart.
type FileProvider struct {
	Path string
}

// Template loads and validates the template file.
func (p FileProvider) Template(_ context.Context) (Template, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return Template{}, fmt.Errorf("reading template file: %w", err)
	}
	return ParseTemplate(data)
}

// Static serves a fixed, already validated template.
type Static struct {
	T Template
}

// Template returns the wrapped template.
func (s Static) Template(_ context.Context) (Template, error) {
	return s.T, nil
}
