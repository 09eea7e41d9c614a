// Package resource reads named text resources from the local filesystem or,
// for s3:// references, from an object store.
package resource

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/justmiles/compose-helm-parity/internal/objectstore"
)

// ErrNoStore is returned for s3:// references when the Loader has no Store.
var ErrNoStore = errors.New("no object store configured")

// Resource is the content of one reference.
type Resource struct {
	Name    string
	Content []byte
}

// Loader resolves references. Relative file paths are joined to Root.
type Loader struct {
	Root  string
	Store objectstore.Store
}

// Path returns the filesystem path for a file reference.
func (l *Loader) Path(ref string) string {
	if filepath.IsAbs(ref) || l.Root == "" {
		return ref
	}
	return filepath.Join(l.Root, ref)
}

// Read returns the content of ref.
func (l *Loader) Read(ctx context.Context, ref string) (Resource, error) {
	if !strings.HasPrefix(ref, "s3://") {
		data, err := os.ReadFile(l.Path(ref))
		if err != nil {
			return Resource{}, fmt.Errorf("error reading %s: %w", ref, err)
		}
		return Resource{Name: ref, Content: data}, nil
	}

	bucket, key, err := splitS3(ref)
	if err != nil {
		return Resource{}, err
	}
	if l.Store == nil {
		return Resource{}, fmt.Errorf("error reading %s: %w", ref, ErrNoStore)
	}
	data, err := l.Store.Get(ctx, bucket, key)
	if err != nil {
		return Resource{}, fmt.Errorf("error reading %s: %w", ref, err)
	}
	return Resource{Name: ref, Content: data}, nil
}

func splitS3(ref string) (bucket, key string, err error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", "", fmt.Errorf("invalid object reference %q: %w", ref, err)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("invalid object reference %q: expected s3://bucket/key", ref)
	}
	return u.Host, key, nil
}
