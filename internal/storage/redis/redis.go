// Package redis implements the storage facade on Redis via rueidis. Object
// paths are mapped to keys as prefix + path.
package redis

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/quizdex/internal/storage"
)

// Compile-time check: Store implements storage.Store.
var _ storage.Store = (*Store)(nil)

// Config holds connection parameters for a Redis store.
type Config struct {
	Addrs     []string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
}

// Store implements storage.Store via rueidis.
type Store struct {
	client rueidis.Client
	prefix string
}

// NewStore creates a Redis object store via rueidis.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client, prefix: cfg.KeyPrefix}, nil
}

// NewStoreForTest wraps an existing client (used with rueidis/mock).
func NewStoreForTest(client rueidis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

// Put stores the object at prefix+path.
func (s *Store) Put(ctx context.Context, path string, data []byte) error {
	cmd := s.client.B().Set().Key(s.prefix + path).Value(rueidis.BinaryString(data)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return &storage.Error{Op: storage.OpPut, Err: err}
	}
	return nil
}

// Get retrieves the object at prefix+path.
func (s *Store) Get(ctx context.Context, path string) ([]byte, error) {
	cmd := s.client.B().Get().Key(s.prefix + path).Build()
	data, err := s.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, storage.ErrKeyNotFound
		}
		return nil, &storage.Error{Op: storage.OpGet, Err: err}
	}
	return data, nil
}

// List scans for keys under prefix+pathPrefix and returns the paths, sorted.
func (s *Store) List(ctx context.Context, pathPrefix string) ([]string, error) {
	var paths []string
	var cursor uint64

	match := s.prefix + pathPrefix + "*"
	for {
		cmd := s.client.B().Scan().Cursor(cursor).Match(match).Count(100).Build()
		res, err := s.client.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, &storage.Error{Op: storage.OpList, Err: err}
		}
		for _, key := range res.Elements {
			paths = append(paths, strings.TrimPrefix(key, s.prefix))
		}
		cursor = res.Cursor
		if cursor == 0 {
			break
		}
	}

	sort.Strings(paths)
	return paths, nil
}

// Delete removes the object at prefix+path. Missing keys are a no-op (DEL semantics).
func (s *Store) Delete(ctx context.Context, path string) error {
	cmd := s.client.B().Del().Key(s.prefix + path).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return &storage.Error{Op: storage.OpDelete, Err: err}
	}
	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady polls Ping until the store responds or the timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for storage: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}
