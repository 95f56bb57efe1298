// internal/puzzle/puzzle.go
//
// Static hunt definition: the ordered codes, their riddles, the optional
// final code and the optional compliment pool.
//
// A Definition is built once at startup and never mutated, so it can be
// shared read-only between every player's hunt.

package puzzle

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoSteps means the source contained no usable (code, riddle) pair.
	ErrNoSteps = errors.New("puzzle: no steps defined")
	// ErrDuplicateCode means two steps (or a step and the final code) share a code.
	ErrDuplicateCode = errors.New("puzzle: duplicate code")
)

// Step is one (code, riddle) pair. Riddles[i] is shown once i codes are found.
type Step struct {
	Code   string `yaml:"code"`
	Riddle string `yaml:"riddle"`
}

// Final is the distinguished code that completes the hunt.
type Final struct {
	Code    string `yaml:"code"`
	Message string `yaml:"message"`
}

// Definition is the immutable puzzle.
type Definition struct {
	codes       []string
	riddles     []string
	index       map[string]int
	final       *Final
	compliments []string
}

// New validates and builds a Definition.
//
//   - Codes and riddles are trimmed; steps with an empty code are skipped.
//   - Duplicate codes are rejected.
//   - A final with an empty code disables the final-code feature.
//   - Empty compliments are dropped; an empty pool disables compliments.
func New(steps []Step, final *Final, compliments []string) (*Definition, error) {
	d := &Definition{index: make(map[string]int, len(steps))}

	for _, s := range steps {
		code := strings.TrimSpace(s.Code)
		if code == "" {
			continue
		}
		if _, dup := d.index[code]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCode, code)
		}
		d.index[code] = len(d.codes)
		d.codes = append(d.codes, code)
		d.riddles = append(d.riddles, strings.TrimSpace(s.Riddle))
	}
	if len(d.codes) == 0 {
		return nil, ErrNoSteps
	}

	if final != nil {
		if code := strings.TrimSpace(final.Code); code != "" {
			if _, dup := d.index[code]; dup {
				return nil, fmt.Errorf("%w: final code %q is also a step", ErrDuplicateCode, code)
			}
			d.final = &Final{Code: code, Message: strings.TrimSpace(final.Message)}
		}
	}

	for _, c := range compliments {
		if c = strings.TrimSpace(c); c != "" {
			d.compliments = append(d.compliments, c)
		}
	}
	return d, nil
}

// Len returns the number of codes (== number of riddles).
func (d *Definition) Len() int { return len(d.codes) }

// Codes returns a copy of the ordered codes.
func (d *Definition) Codes() []string { return append([]string(nil), d.codes...) }

// Has reports whether code is one of the step codes.
func (d *Definition) Has(code string) bool {
	_, ok := d.index[code]
	return ok
}

// Riddle returns riddles[i], or false when i is out of range.
func (d *Definition) Riddle(i int) (string, bool) {
	if i < 0 || i >= len(d.riddles) {
		return "", false
	}
	return d.riddles[i], true
}

// Final returns the final code pair, or false when the feature is disabled.
func (d *Definition) Final() (Final, bool) {
	if d.final == nil {
		return Final{}, false
	}
	return *d.final, true
}

// Compliments returns a copy of the compliment pool (possibly empty).
func (d *Definition) Compliments() []string { return append([]string(nil), d.compliments...) }
