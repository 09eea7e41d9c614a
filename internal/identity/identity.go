// Package identity checks that two copies of a text resource agree.
package identity

import (
	"bytes"
	"context"
	"fmt"

	"github.com/justmiles/compose-helm-parity/internal/resource"
)

// Pair names a source resource and a copy that must stay identical to it.
type Pair struct {
	Name   string
	Source string
	Copy   string
}

// MismatchError reports a copy that drifted from its source.
type MismatchError struct {
	Name   string
	Source string
	Copy   string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s mismatch: %s and %s must be identical; update %s to reflect changes in %s",
		e.Name, e.Source, e.Copy, e.Copy, e.Source)
}

// Compare returns a *MismatchError when a and b differ after trimming
// surrounding whitespace.
func Compare(name string, a, b resource.Resource) error {
	if bytes.Equal(bytes.TrimSpace(a.Content), bytes.TrimSpace(b.Content)) {
		return nil
	}
	return &MismatchError{Name: name, Source: a.Name, Copy: b.Name}
}

// Check reads both resources of p and compares them.
func Check(ctx context.Context, loader *resource.Loader, p Pair) error {
	src, err := loader.Read(ctx, p.Source)
	if err != nil {
		return fmt.Errorf("missing source for %s: %w", p.Name, err)
	}
	cp, err := loader.Read(ctx, p.Copy)
	if err != nil {
		return fmt.Errorf("missing copy for %s: %w", p.Name, err)
	}
	return Compare(p.Name, src, cp)
}
