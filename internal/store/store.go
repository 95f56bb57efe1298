// internal/store/store.go
//
// Durable key-value storage for hunt progress.
// Defines:
//   - Backend: the read/write contract every storage driver implements.
//   - OpenBackend: picks a Backend by driver name (memory | file | sqlite).
//
// Values are opaque strings; Persistent[T] layers JSON encoding on top.

package store

import (
	"context"
	"errors"
	"fmt"
)

// Backend is a string key-value store. One entry per Persistent value.
// Implementations must be safe for concurrent use.
type Backend interface {
	// Read returns the value stored under key. ok is false when the key is absent.
	Read(ctx context.Context, key string) (value string, ok bool, err error)

	// Write stores value under key, replacing any previous value.
	Write(ctx context.Context, key, value string) error

	// Close releases underlying resources.
	Close() error
}

// ErrUnknownDriver is returned by OpenBackend for an unsupported driver name.
var ErrUnknownDriver = errors.New("store: unknown driver")

// OpenBackend constructs a Backend for driver. location is the database path for
// "sqlite", the directory for "file" and ignored for "memory".
func OpenBackend(driver, location string) (Backend, error) {
	switch driver {
	case "memory":
		return NewMemory(), nil
	case "file":
		return NewFile(location)
	case "sqlite", "":
		return OpenSQLite(location)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
