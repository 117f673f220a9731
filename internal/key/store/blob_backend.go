package store

import (
	"context"
	"fmt"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	"github.com/allisson/appconfig/internal/errors"
)

// ErrMaterialNotFound indicates no durable object exists at the path.
var ErrMaterialNotFound = errors.Wrap(errors.ErrNotFound, "material object not found")

// BlobBackend implements DurableBackend on a gocloud blob bucket, so the files
// may live on the local filesystem, in memory or in any bucket provider.
type BlobBackend struct {
	bucket *blob.Bucket
}

// NewBlobBackend creates a BlobBackend over an opened bucket.
func NewBlobBackend(bucket *blob.Bucket) *BlobBackend {
	return &BlobBackend{bucket: bucket}
}

// Read returns the object content at path.
func (b *BlobBackend) Read(ctx context.Context, path string) ([]byte, error) {
	content, err := b.bucket.ReadAll(ctx, path)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, ErrMaterialNotFound
		}
		return nil, fmt.Errorf("failed to read material %s: %w", path, err)
	}
	return content, nil
}

// Write replaces the object at path.
func (b *BlobBackend) Write(ctx context.Context, path string, content []byte) error {
	opts := &blob.WriterOptions{ContentType: "text/plain; charset=utf-8"}
	if err := b.bucket.WriteAll(ctx, path, content, opts); err != nil {
		return fmt.Errorf("failed to write material %s: %w", path, err)
	}
	return nil
}

// Delete removes the object at path.
func (b *BlobBackend) Delete(ctx context.Context, path string) error {
	if err := b.bucket.Delete(ctx, path); err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil
		}
		return fmt.Errorf("failed to delete material %s: %w", path, err)
	}
	return nil
}
