package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Backend selects the archive implementation.
type Backend string

const (
	BackendFS  Backend = "fs"
	BackendS3  Backend = "s3"
	BackendGCS Backend = "gcs"
)

// NewFromEnv creates a snapshot archive from environment variables.
//
//   - KEEL_ARCHIVE_BACKEND: "fs" (default), "s3", or "gcs"
//   - KEEL_DATA_DIR: base directory for the fs backend (default "data")
//   - KEEL_ARCHIVE_S3_BUCKET / _REGION / _ENDPOINT / _PREFIX
//   - KEEL_ARCHIVE_GCS_BUCKET / _PREFIX (requires -tags gcp)
func NewFromEnv(ctx context.Context) (Store, error) {
	backend := Backend(os.Getenv("KEEL_ARCHIVE_BACKEND"))
	if backend == "" {
		backend = BackendFS
	}

	switch backend {
	case BackendFS:
		dataDir := os.Getenv("KEEL_DATA_DIR")
		if dataDir == "" {
			dataDir = "data"
		}
		return NewFileStore(filepath.Join(dataDir, "baselines"))

	case BackendS3:
		bucket := os.Getenv("KEEL_ARCHIVE_S3_BUCKET")
		if bucket == "" {
			return nil, fmt.Errorf("KEEL_ARCHIVE_S3_BUCKET is required for the s3 backend")
		}
		region := os.Getenv("KEEL_ARCHIVE_S3_REGION")
		if region == "" {
			region = os.Getenv("AWS_REGION")
		}
		return NewS3Store(ctx, S3Config{
			Bucket:   bucket,
			Region:   region,
			Endpoint: os.Getenv("KEEL_ARCHIVE_S3_ENDPOINT"),
			Prefix:   os.Getenv("KEEL_ARCHIVE_S3_PREFIX"),
		})

	case BackendGCS:
		return newGCSFromEnv(ctx)
	}
	return nil, fmt.Errorf("unknown archive backend %q", backend)
}
