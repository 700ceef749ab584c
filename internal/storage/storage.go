// Package storage defines the durable object store facade the library
// repository persists through. Keys are "/"-separated paths.
package storage

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for storage operations.
var (
	// ErrKeyNotFound signals a missing object.
	ErrKeyNotFound = errors.New("storage: key not found")
)

// Store is the object store contract: opaque bytes under path keys.
type Store interface {
	Put(ctx context.Context, path string, data []byte) error
	Get(ctx context.Context, path string) ([]byte, error)
	// List returns the paths of all objects under the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, path string) error
	Ping(ctx context.Context) error
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Op constants name the failed operation for error context.
const (
	OpPut    = "PUT"
	OpGet    = "GET"
	OpList   = "LIST"
	OpDelete = "DELETE"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
