// Package document loads YAML documents into generic trees and walks them by key path.
package document

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tree is the root mapping of a loaded document.
type Tree map[string]any

// Path is an ordered sequence of mapping keys.
type Path []string

// String renders the path the way it is written in messages, e.g. "frontend.image.tag".
func (p Path) String() string {
	if len(p) == 0 {
		return "<root>"
	}
	return strings.Join(p, ".")
}

// ParseError reports a document that is not well-formed YAML.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("error parsing %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Load parses data into a Tree. Empty input yields an empty, non-nil Tree.
func Load(source string, data []byte) (Tree, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Tree{}, nil
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}
	if raw == nil {
		// comments only, or an explicit null document
		return Tree{}, nil
	}

	root, ok := normalize(raw).(map[string]any)
	if !ok {
		return nil, &ParseError{Source: source, Err: fmt.Errorf("document root is %T, expected a mapping", raw)}
	}
	return Tree(root), nil
}

// LoadFile reads and parses the document at path.
func LoadFile(path string) (Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	return Load(path, data)
}

// normalize rewrites mappings with non-string keys into map[string]any so that
// every mapping in a Tree has a single concrete type.
func normalize(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		for k, item := range typed {
			typed[k] = normalize(item)
		}
		return typed
	case map[any]any:
		out := make(map[string]any, len(typed))
		for k, item := range typed {
			out[fmt.Sprint(k)] = normalize(item)
		}
		return out
	case []any:
		for i, item := range typed {
			typed[i] = normalize(item)
		}
		return typed
	default:
		return v
	}
}
