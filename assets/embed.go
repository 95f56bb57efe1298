// assets/embed.go
//
// Files compiled into the binary:
//   - puzzle.yaml: the default hunt, used when no other puzzle source is configured.
//   - sql/*.sql:   migrations for the SQLite progress backend.

package assets

import (
	"embed"
	"io/fs"
)

//go:embed puzzle.yaml sql/*.sql
var FS embed.FS

// DefaultPuzzle returns the raw YAML of the embedded default hunt.
func DefaultPuzzle() ([]byte, error) {
	return FS.ReadFile("puzzle.yaml")
}

// Migrations returns the migration directory as its own filesystem root.
func Migrations() fs.FS {
	sub, err := fs.Sub(FS, "sql")
	if err != nil {
		// "sql" is embedded above; Sub only fails on an invalid path.
		panic(err)
	}
	return sub
}
