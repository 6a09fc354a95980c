//go:build gcp

package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/meridian-grc/keel/pkg/canonical"
)

// GCSStore archives snapshots in a Google Cloud Storage bucket.
type GCSStore struct {
	client *storage.Client
	bucket string
	prefix string
}

// GCSConfig holds the GCS archive settings.
type GCSConfig struct {
	Bucket string
	Prefix string
}

// NewGCSStore creates a GCS-backed snapshot archive using ambient
// application default credentials.
func NewGCSStore(ctx context.Context, cfg GCSConfig) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("archive gcs client: %w", err)
	}
	return &GCSStore{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (s *GCSStore) object(hash string) *storage.ObjectHandle {
	name := s.prefix + strings.TrimPrefix(hash, "sha256:") + ".json"
	return s.client.Bucket(s.bucket).Object(name)
}

// Put uploads the snapshot unless already archived.
func (s *GCSStore) Put(ctx context.Context, data []byte) (string, error) {
	hash := canonical.HashBytes(data)
	exists, err := s.Exists(ctx, hash)
	if err == nil && exists {
		return hash, nil
	}

	w := s.object(hash).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("archive gcs write: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("archive gcs close: %w", err)
	}
	return hash, nil
}

// Get downloads and integrity-checks the snapshot.
func (s *GCSStore) Get(ctx context.Context, hash string) ([]byte, error) {
	r, err := s.object(hash).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("archive gcs get: %w", err)
	}
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("archive gcs read: %w", err)
	}
	if got := canonical.HashBytes(data); got != hash {
		return nil, fmt.Errorf("archive integrity: snapshot %s hashes to %s", hash, got)
	}
	return data, nil
}

// Exists checks object attributes.
func (s *GCSStore) Exists(ctx context.Context, hash string) (bool, error) {
	_, err := s.object(hash).Attrs(ctx)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("archive gcs attrs: %w", err)
}
