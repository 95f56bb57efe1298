// internal/store/persistent.go
//
// Persistent keeps one typed value in sync with a Backend entry.
//
// Behavior:
//   - Open starts from the default and overlays the stored JSON, if any.
//   - Set encodes and writes synchronously before replacing the in-memory
//     value (write-through, no batching).
//   - Stored data that does not decode is logged and ignored; the default is
//     kept and the bad entry is replaced on the next Set.

package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Persistent is a typed value mirrored under a fixed key.
// It is not safe for concurrent use; callers serialize access.
type Persistent[T any] struct {
	backend Backend
	key     string
	value   T
}

// Open loads key from backend, falling back to def when absent or malformed.
// The only error is a failing backend read.
func Open[T any](ctx context.Context, backend Backend, key string, def T) (*Persistent[T], error) {
	p := &Persistent[T]{backend: backend, key: key, value: def}

	raw, ok, err := backend.Read(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return p, nil
	}

	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("ignoring malformed stored value")
		return p, nil
	}
	p.value = v
	return p, nil
}

// Key returns the storage key.
func (p *Persistent[T]) Key() string { return p.key }

// Get returns the current value. Reference types must not be mutated in place.
func (p *Persistent[T]) Get() T { return p.value }

// Set writes v to the backend and, on success, makes it the current value.
func (p *Persistent[T]) Set(ctx context.Context, v T) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", p.key, err)
	}
	if err := p.backend.Write(ctx, p.key, string(b)); err != nil {
		return err
	}
	p.value = v
	return nil
}
