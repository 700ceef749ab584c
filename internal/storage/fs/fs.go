// Package fs implements the storage facade on the local filesystem. It is the
// default driver for local runs, where no external object store is available.
package fs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kailas-cloud/quizdex/internal/storage"
)

// Compile-time check: Store implements storage.Store.
var _ storage.Store = (*Store)(nil)

// Store persists objects as files under a root directory.
type Store struct {
	root string
}

// NewStore creates a filesystem store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("root dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create root dir: %w", err)
	}
	return &Store{root: dir}, nil
}

// Put writes the object, creating parent directories. The write goes through
// a temp file and rename so a reader never observes partial content.
func (s *Store) Put(_ context.Context, path string, data []byte) error {
	full := s.full(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return &storage.Error{Op: storage.OpPut, Err: err}
	}
	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &storage.Error{Op: storage.OpPut, Err: err}
	}
	if err := os.Rename(tmp, full); err != nil {
		_ = os.Remove(tmp)
		return &storage.Error{Op: storage.OpPut, Err: err}
	}
	return nil
}

// Get reads the object at path.
func (s *Store) Get(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(s.full(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrKeyNotFound
		}
		return nil, &storage.Error{Op: storage.OpGet, Err: err}
	}
	return data, nil
}

// List walks the root and returns slash-separated paths under prefix, sorted.
func (s *Store) List(_ context.Context, prefix string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(p, ".tmp") {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			paths = append(paths, key)
		}
		return nil
	})
	if err != nil {
		return nil, &storage.Error{Op: storage.OpList, Err: err}
	}
	sort.Strings(paths)
	return paths, nil
}

// Delete removes the object at path. Removing a missing object is a no-op.
func (s *Store) Delete(_ context.Context, path string) error {
	if err := os.Remove(s.full(path)); err != nil && !os.IsNotExist(err) {
		return &storage.Error{Op: storage.OpDelete, Err: err}
	}
	return nil
}

// Ping verifies the root directory is accessible.
func (s *Store) Ping(_ context.Context) error {
	if _, err := os.Stat(s.root); err != nil {
		return fmt.Errorf("stat root: %w", err)
	}
	return nil
}

// Close is a no-op for the filesystem driver.
func (s *Store) Close() {}

// WaitForReady checks the root once; the filesystem needs no warm-up.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

func (s *Store) full(path string) string {
	return filepath.Join(s.root, filepath.FromSlash(path))
}
