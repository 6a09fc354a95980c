// Package archive provides content-addressed storage for published
// baseline snapshots. Snapshots are canonical JSON; the content hash is
// the baseline's public identity, so a stored snapshot can always be
// re-verified against the baseline row that references it.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/meridian-grc/keel/pkg/canonical"
)

// Store is the contract for snapshot archives.
type Store interface {
	// Put persists a snapshot and returns its content hash.
	Put(ctx context.Context, data []byte) (string, error)
	// Get retrieves a snapshot by content hash.
	Get(ctx context.Context, hash string) ([]byte, error)
	// Exists reports whether a snapshot is archived.
	Exists(ctx context.Context, hash string) (bool, error)
}

// FileStore is the filesystem-backed archive used by single-node
// deployments and tests.
type FileStore struct {
	baseDir string
	mu      sync.RWMutex
}

// NewFileStore creates an archive rooted at baseDir.
func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("archive dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) path(hash string) string {
	name := strings.TrimPrefix(hash, "sha256:")
	return filepath.Join(s.baseDir, name+".json")
}

// Put writes the snapshot idempotently; re-archiving identical bytes is a
// no-op returning the same hash.
func (s *FileStore) Put(ctx context.Context, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hash := canonical.HashBytes(data)
	path := s.path(hash)
	if _, err := os.Stat(path); err == nil {
		return hash, nil
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("archive write: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("archive rename: %w", err)
	}
	return hash, nil
}

// Get returns the archived snapshot, verifying it still matches its hash.
func (s *FileStore) Get(ctx context.Context, hash string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(hash))
	if err != nil {
		return nil, fmt.Errorf("archive read: %w", err)
	}
	if got := canonical.HashBytes(data); got != hash {
		return nil, fmt.Errorf("archive integrity: snapshot %s hashes to %s", hash, got)
	}
	return data, nil
}

// Exists reports whether the snapshot file is present.
func (s *FileStore) Exists(ctx context.Context, hash string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.path(hash))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("archive stat: %w", err)
}
