// internal/game/types.go
//
// Core type definitions for the hunt engine.
// Defines:
//   - Kind: the closed set of validation outcomes.
//   - Result: outcome kind plus the message shown to the player.
//   - Snapshot: progress as the UI renders it.
//   - Option/Picker: construction-time knobs for a Hunt.

package game

import (
	"errors"
	"fmt"
)

// Kind is the outcome of ValidateCode.
type Kind int

const (
	KindWrongCode Kind = iota + 1
	KindAlreadyFound
	KindCheating
	KindSuccess
	KindCompleted
)

// String returns the wire name used by the HTTP API.
func (k Kind) String() string {
	switch k {
	case KindWrongCode:
		return "wrong_code"
	case KindAlreadyFound:
		return "already_found"
	case KindCheating:
		return "cheating"
	case KindSuccess:
		return "success"
	case KindCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// MarshalText lets Kind appear by name in JSON.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText parses a wire name back into a Kind.
func (k *Kind) UnmarshalText(b []byte) error {
	for c := KindWrongCode; c <= KindCompleted; c++ {
		if c.String() == string(b) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("game: unknown result kind %q", b)
}

// Result is what the player sees after submitting a code.
type Result struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// OK reports whether the submission was accepted (new or repeated valid code,
// or completion).
func (r Result) OK() bool {
	return r.Kind == KindSuccess || r.Kind == KindCompleted
}

// Snapshot is a consistent view of a Hunt's progress, read under one lock.
type Snapshot struct {
	Found          []string
	FoundCodes     int
	FoundCodesWord string
	MaxCodes       int
	Riddle         string // <br>-joined; empty when HasRiddle is false
	HasRiddle      bool
	HasTreasure    bool
	State          string
}

// Player-facing texts.
const (
	MsgWrongCode    = "To není správný kód 😱"
	MsgCheating     = "Nepodváděj! 👮‍♂️"
	MsgAlreadyFound = "Tenhle kód už máš 😉"
	MsgConfirmed    = "Správně, kód platí! ✅"
	MsgCompleted    = "Poklad je tvůj! 🏆"
)

// ErrPersistenceUnavailable wraps any failure to load or store progress.
var ErrPersistenceUnavailable = errors.New("game: progress storage unavailable")

// Picker returns a uniformly random index in [0, n). n is always > 0.
type Picker func(n int) int

// Option configures a Hunt.
type Option func(*Hunt)

// WithPicker replaces the compliment picker (tests use a fixed one).
func WithPicker(p Picker) Option {
	return func(h *Hunt) { h.pick = p }
}

// WithStrictRepeats makes a repeated valid code return KindAlreadyFound
// instead of another compliment.
func WithStrictRepeats() Option {
	return func(h *Hunt) { h.strictRepeats = true }
}
