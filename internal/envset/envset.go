// Package envset extracts environment variable names from compose services and
// Helm values. Compose and Helm spell the same concept differently, so each
// document family has its own extractor.
package envset

import (
	"fmt"
	"sort"
	"strings"
)

// Set is a set of environment variable names.
type Set map[string]struct{}

// New returns a Set holding names.
func New(names ...string) Set {
	s := make(Set, len(names))
	for _, name := range names {
		s[name] = struct{}{}
	}
	return s
}

// Has reports whether name is in the set.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Minus returns the names of s that are not in other.
func (s Set) Minus(other Set) Set {
	out := make(Set, len(s))
	for name := range s {
		if !other.Has(name) {
			out[name] = struct{}{}
		}
	}
	return out
}

// Sorted returns the names in lexical order.
func (s Set) Sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FromCompose returns the variable names of a compose service's environment.
// A mapping contributes its keys; a sequence contributes the KEY part of each
// "KEY=VALUE" or bare "KEY" string. Anything else yields an empty set.
func FromCompose(node any) Set {
	names := Set{}
	switch env := node.(type) {
	case map[string]any:
		for key := range env {
			names[key] = struct{}{}
		}
	case map[any]any:
		for key := range env {
			names[fmt.Sprint(key)] = struct{}{}
		}
	case []any:
		for _, item := range env {
			entry, ok := item.(string)
			if !ok || entry == "" {
				continue
			}
			name, _, _ := strings.Cut(entry, "=")
			if name != "" {
				names[name] = struct{}{}
			}
		}
	}
	return names
}

// FromValues returns the variable names of a Helm values env block. A mapping
// contributes its keys; a sequence of {name, value} records contributes each
// record's name. Anything else yields an empty set.
func FromValues(node any) Set {
	names := Set{}
	switch env := node.(type) {
	case map[string]any:
		for key := range env {
			names[key] = struct{}{}
		}
	case map[any]any:
		for key := range env {
			names[fmt.Sprint(key)] = struct{}{}
		}
	case []any:
		return RecordNames(env)
	}
	return names
}

// RecordNames returns the name field of every {name, value} record in node.
// Mappings are not records and yield an empty set.
func RecordNames(node any) Set {
	names := Set{}
	items, ok := node.([]any)
	if !ok {
		return names
	}
	for _, item := range items {
		var name any
		var found bool
		switch record := item.(type) {
		case map[string]any:
			name, found = record["name"]
		case map[any]any:
			name, found = record["name"]
		}
		if found {
			names[fmt.Sprint(name)] = struct{}{}
		}
	}
	return names
}
