// internal/puzzle/load.go
//
// Puzzle sources, in order of precedence (Resolve):
//   1. PUZZLE_FILE: a YAML document (see assets/puzzle.yaml for the shape).
//   2. Environment: STEP_<n>=code:riddle, ordered by n, plus
//      FINAL_STEP=code:message and COMPLIMENTS=first:second:third.
//      The PUBLIC_ prefix (PUBLIC_STEP_1, ...) is accepted as well.
//   3. The embedded default hunt.
//
// Malformed step variables are skipped with a warning.

package puzzle

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/robalobadob/treasure-hunt/apps/go-server/assets"
)

// Source names where a Definition came from.
type Source string

const (
	SourceFile     Source = "file"
	SourceEnv      Source = "env"
	SourceEmbedded Source = "embedded"
)

// document is the YAML shape of a puzzle file.
type document struct {
	Steps       []Step   `yaml:"steps"`
	Final       *Final   `yaml:"final"`
	Compliments []string `yaml:"compliments"`
}

// Parse decodes a YAML puzzle document.
func Parse(b []byte) (*Definition, error) {
	var doc document
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse puzzle: %w", err)
	}
	return New(doc.Steps, doc.Final, doc.Compliments)
}

// LoadFile reads and parses the YAML puzzle at path.
func LoadFile(path string) (*Definition, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read puzzle: %w", err)
	}
	return Parse(b)
}

// Default returns the embedded default hunt.
func Default() (*Definition, error) {
	b, err := assets.DefaultPuzzle()
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

type envStep struct {
	n    int
	name string
	step Step
}

const publicPrefix = "PUBLIC_"

// envVars collects environ into a map, stripping the PUBLIC_ prefix. When both
// NAME and PUBLIC_NAME are set, NAME wins whatever the order of environ.
func envVars(environ []string) map[string]string {
	vars := make(map[string]string, len(environ))
	public := make(map[string]string)
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if bare, ok := strings.CutPrefix(name, publicPrefix); ok {
			public[bare] = value
			continue
		}
		vars[name] = value
	}
	for name, value := range public {
		if _, shadowed := vars[name]; shadowed {
			log.Warn().Str("var", publicPrefix+name).Str("using", name).Msg("ignoring prefixed duplicate")
			continue
		}
		vars[name] = value
	}
	return vars
}

// FromEnv builds a Definition from KEY=value pairs (os.Environ format).
// found is false when no step variable is present at all.
func FromEnv(environ []string) (def *Definition, found bool, err error) {
	vars := envVars(environ)
	var steps []envStep

	for name, value := range vars {
		suffix, isStep := strings.CutPrefix(name, "STEP_")
		if !isStep {
			continue
		}
		found = true
		n, err := strconv.Atoi(suffix)
		if err != nil {
			log.Warn().Str("var", name).Msg("skipping step: suffix is not a number")
			continue
		}
		code, riddle, ok := strings.Cut(value, ":")
		if !ok {
			log.Warn().Str("var", name).Msg("skipping step: expected code:riddle")
			continue
		}
		steps = append(steps, envStep{n: n, name: name, step: Step{Code: code, Riddle: riddle}})
	}
	if !found {
		return nil, false, nil
	}

	sort.Slice(steps, func(i, j int) bool {
		if steps[i].n != steps[j].n {
			return steps[i].n < steps[j].n
		}
		return steps[i].name < steps[j].name
	})
	ordered := make([]Step, len(steps))
	for i, s := range steps {
		ordered[i] = s.step
	}

	var final *Final
	if v, ok := vars["FINAL_STEP"]; ok {
		code, msg, _ := strings.Cut(v, ":")
		final = &Final{Code: code, Message: msg}
	}

	var compliments []string
	if v := vars["COMPLIMENTS"]; v != "" {
		compliments = strings.Split(v, ":")
	}

	def, err = New(ordered, final, compliments)
	return def, true, err
}

// Resolve picks the first configured source: path, then environ, then the
// embedded default.
func Resolve(path string, environ []string) (*Definition, Source, error) {
	if path != "" {
		d, err := LoadFile(path)
		return d, SourceFile, err
	}
	if d, found, err := FromEnv(environ); found {
		return d, SourceEnv, err
	}
	d, err := Default()
	return d, SourceEmbedded, err
}
