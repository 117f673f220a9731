package store

import (
	"context"
	"fmt"

	"gocloud.dev/blob"

	// Register the bucket drivers accepted by KEY_STORE_URL
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
)

// OpenBucket opens the bucket holding the secret material files.
// Supports: file:///path?create_dir=true and mem://
func OpenBucket(ctx context.Context, bucketURL string) (*blob.Bucket, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open key store bucket: %w", err)
	}
	return bucket, nil
}
