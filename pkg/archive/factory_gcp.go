//go:build gcp

package archive

import (
	"context"
	"fmt"
	"os"
)

func newGCSFromEnv(ctx context.Context) (Store, error) {
	bucket := os.Getenv("KEEL_ARCHIVE_GCS_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("KEEL_ARCHIVE_GCS_BUCKET is required for the gcs backend")
	}
	return NewGCSStore(ctx, GCSConfig{
		Bucket: bucket,
		Prefix: os.Getenv("KEEL_ARCHIVE_GCS_PREFIX"),
	})
}
