// internal/game/engine.go
//
// Core hunt engine for a single player.
// Responsibilities:
//   - Restore progress (found codes, treasure flag) from a store.Backend.
//   - Validate submitted codes and apply the resulting state transition.
//   - Answer the queries the UI renders: counts, current riddle, treasure.
//
// State transitions:
//   - valid new code                 → found codes grow by one.
//   - final code with all codes found → treasure found (completed).
//   - anything else                  → no change, only a message.
//   - Reset                          → back to empty progress.
//
// Every mutation is written through to the backend before the call returns.
package game

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"

	"github.com/robalobadob/treasure-hunt/apps/go-server/internal/puzzle"
	"github.com/robalobadob/treasure-hunt/apps/go-server/internal/store"
)

// Storage keys, relative to the prefix given to Load.
const (
	KeyCodes    = "codes"
	KeyTreasure = "treasure"
)

// Hunt is one player's progress through a shared puzzle definition.
// It is safe for concurrent use.
type Hunt struct {
	mu            sync.Mutex
	def           *puzzle.Definition
	codes         *store.Persistent[[]string]
	treasure      *store.Persistent[bool]
	pick          Picker
	strictRepeats bool
}

// Load restores progress stored under prefix+KeyCodes and prefix+KeyTreasure.
// Stored codes that are not part of def are dropped, and a treasure flag
// without full progress is cleared.
func Load(ctx context.Context, def *puzzle.Definition, backend store.Backend, prefix string, opts ...Option) (*Hunt, error) {
	codes, err := store.Open(ctx, backend, prefix+KeyCodes, []string{})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)
	}
	treasure, err := store.Open(ctx, backend, prefix+KeyTreasure, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)
	}

	h := &Hunt{def: def, codes: codes, treasure: treasure, pick: cryptoPick}
	for _, o := range opts {
		o(h)
	}
	if err := h.repair(ctx); err != nil {
		return nil, err
	}
	return h, nil
}

// repair enforces foundCodes ⊆ codes, no duplicates, and treasure ⇒ all found.
func (h *Hunt) repair(ctx context.Context) error {
	stored := h.codes.Get()
	clean := make([]string, 0, len(stored))
	for _, c := range stored {
		if h.def.Has(c) && !slices.Contains(clean, c) {
			clean = append(clean, c)
		}
	}
	if len(clean) != len(stored) {
		log.Warn().Str("key", h.codes.Key()).Int("stored", len(stored)).Int("kept", len(clean)).
			Msg("dropping unknown or repeated stored codes")
		if err := h.codes.Set(ctx, clean); err != nil {
			return fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)
		}
	}
	if h.treasure.Get() && len(clean) != h.def.Len() {
		log.Warn().Str("key", h.treasure.Key()).Msg("clearing treasure flag without full progress")
		if err := h.treasure.Set(ctx, false); err != nil {
			return fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)
		}
	}
	return nil
}

// ValidateCode checks candidate against the puzzle and applies the transition.
// Player mistakes are reported through Result; the error is non-nil only when
// progress could not be persisted (ErrPersistenceUnavailable).
func (h *Hunt) ValidateCode(ctx context.Context, candidate string) (Result, error) {
	candidate = strings.TrimSpace(candidate)

	h.mu.Lock()
	defer h.mu.Unlock()

	found := h.codes.Get()

	if final, ok := h.def.Final(); ok && candidate == final.Code {
		if len(found) != h.def.Len() {
			return Result{Kind: KindCheating, Message: MsgCheating}, nil
		}
		if err := h.treasure.Set(ctx, true); err != nil {
			return Result{}, fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)
		}
		return Result{Kind: KindCompleted, Message: h.finalMessage()}, nil
	}

	if !h.def.Has(candidate) {
		return Result{Kind: KindWrongCode, Message: MsgWrongCode}, nil
	}

	if slices.Contains(found, candidate) {
		if h.strictRepeats {
			return Result{Kind: KindAlreadyFound, Message: MsgAlreadyFound}, nil
		}
		return h.success(), nil
	}

	next := append(slices.Clone(found), candidate)
	if err := h.codes.Set(ctx, next); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)
	}
	return h.success(), nil
}

// Reset clears found codes and the treasure flag.
func (h *Hunt) Reset(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Treasure first: a failure between the two writes leaves a consistent state.
	if err := h.treasure.Set(ctx, false); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)
	}
	if err := h.codes.Set(ctx, []string{}); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)
	}
	return nil
}

// FoundCodes returns the number of distinct valid codes found.
func (h *Hunt) FoundCodes() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.codes.Get())
}

// Found returns the found codes in the order they were found.
func (h *Hunt) Found() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.codes.Get())
}

// FoundCodesWord returns the word for "code" agreeing with FoundCodes.
func (h *Hunt) FoundCodesWord() string { return CodesWord(h.FoundCodes()) }

// MaxCodes returns the total number of codes in the puzzle.
func (h *Hunt) MaxCodes() int { return h.def.Len() }

// RiddleText returns the riddle unlocked by the current progress, or false
// once every riddle has been used up.
func (h *Hunt) RiddleText() (string, bool) {
	return h.def.Riddle(h.FoundCodes())
}

// Riddle is RiddleText with line breaks turned into <br> for HTML display.
func (h *Hunt) Riddle() (string, bool) {
	return htmlRiddle(h.RiddleText())
}

func htmlRiddle(r string, ok bool) (string, bool) {
	if !ok {
		return "", false
	}
	return strings.ReplaceAll(r, "\n", "<br>"), true
}

// Snapshot reads the whole progress view under a single lock, so the counts,
// riddle and state always agree with each other.
func (h *Hunt) Snapshot() Snapshot {
	h.mu.Lock()
	found := slices.Clone(h.codes.Get())
	treasure := h.treasure.Get()
	h.mu.Unlock()

	riddle, hasRiddle := htmlRiddle(h.def.Riddle(len(found)))
	return Snapshot{
		Found:          found,
		FoundCodes:     len(found),
		FoundCodesWord: CodesWord(len(found)),
		MaxCodes:       h.def.Len(),
		Riddle:         riddle,
		HasRiddle:      hasRiddle,
		HasTreasure:    treasure,
		State:          stateOf(treasure),
	}
}

// HasFinal reports whether the puzzle has a final code.
func (h *Hunt) HasFinal() bool {
	_, ok := h.def.Final()
	return ok
}

// HasTreasure reports whether the hunt has been completed.
func (h *Hunt) HasTreasure() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.treasure.Get()
}

// FinalMessage returns the completion text ("" when there is no final code).
func (h *Hunt) FinalMessage() string {
	if !h.HasFinal() {
		return ""
	}
	return h.finalMessage()
}

// State reports "completed" once the treasure is found, else "in_progress".
func (h *Hunt) State() string {
	return stateOf(h.HasTreasure())
}

func stateOf(treasure bool) string {
	if treasure {
		return "completed"
	}
	return "in_progress"
}

func (h *Hunt) finalMessage() string {
	if final, ok := h.def.Final(); ok && final.Message != "" {
		return final.Message
	}
	return MsgCompleted
}

// success returns a random compliment, or the fixed confirmation when the
// puzzle has none.
func (h *Hunt) success() Result {
	pool := h.def.Compliments()
	if len(pool) == 0 {
		return Result{Kind: KindSuccess, Message: MsgConfirmed}
	}
	return Result{Kind: KindSuccess, Message: pool[h.pick(len(pool))]}
}

// CodesWord picks the Czech form of "kód" for n using CLDR plural rules:
// one → "kód", few (2–4) → "kódy", everything else → "kódů".
func CodesWord(n int) string {
	switch plural.Cardinal.MatchPlural(language.Czech, n, 0, 0, 0, 0) {
	case plural.One:
		return "kód"
	case plural.Few:
		return "kódy"
	default:
		return "kódů"
	}
}

// cryptoPick draws an index with crypto/rand.
func cryptoPick(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}
