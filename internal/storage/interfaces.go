// Package storage provides the device key-value storage the client keeps its
// session and suggestion lists in.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been set.
var ErrNotFound = errors.New("storage: key not found")

// Store is an opaque get/set capability. Values never expire.
// This abstraction allows swapping between an on-device SQLite file,
// a shared SQL or Redis instance, and memory (tests) without changing
// the flows built on top.
type Store interface {
	// Get retrieves a value by key. Returns ErrNotFound if absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value, replacing any previous one.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes a value by key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend connection.
	Close() error
}
