// Package objectstore reads and writes objects in an S3-compatible bucket.
package objectstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when an object or bucket does not exist.
var ErrNotFound = errors.New("object not found")

// Store is the object-storage surface used by the rest of the module.
type Store interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, content []byte) error
	List(ctx context.Context, bucket, prefix string) ([]string, error)
	Remove(ctx context.Context, bucket, key string) error
}
