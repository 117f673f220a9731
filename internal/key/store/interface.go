// Package store persists raw key secret material in a durable blob bucket
// fronted by an in-memory TTL cache.
package store

import (
	"context"
)

// DurableBackend is the durable copy of the material files.
type DurableBackend interface {
	// Read returns the content at path or ErrMaterialNotFound.
	Read(ctx context.Context, path string) ([]byte, error)

	// Write replaces the content at path.
	Write(ctx context.Context, path string, content []byte) error

	// Delete removes path. Deleting a missing path is not an error.
	Delete(ctx context.Context, path string) error
}

// CacheBackend is the fast, lossy copy of the material lines.
type CacheBackend interface {
	// Get returns the cached line.
	Get(key string) (string, bool)

	// Set stores the line. It is visible to the next Get once Set returns.
	Set(key, value string)

	// Del removes the line.
	Del(key string)
}
