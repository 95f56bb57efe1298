// internal/cli/root.go
//
// Command tree:
//   treasure            → same as "treasure serve"
//   treasure serve      → HTTP API
//   treasure play       → play the hunt in the terminal
//   treasure check      → validate the configured puzzle
//   treasure hash-pin   → bcrypt a reset PIN for RESET_PIN_HASH

package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/treasure-hunt/apps/go-server/internal/config"
	"github.com/robalobadob/treasure-hunt/apps/go-server/internal/game"
	"github.com/robalobadob/treasure-hunt/apps/go-server/internal/puzzle"
)

// Root builds the treasure command.
func Root() *cobra.Command {
	cfg := &config.Config{}

	root := &cobra.Command{
		Use:           "treasure",
		Short:         "Treasure hunt game server",
		Long:          "Serve a QR-code treasure hunt: players collect codes, unlock riddles and finally find the treasure.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			*cfg = loaded
			if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
				zerolog.SetGlobalLevel(lvl)
			}
			return nil
		},
	}

	serve := serveCmd(cfg)
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	root.AddCommand(serve)
	root.AddCommand(playCmd(cfg))
	root.AddCommand(checkCmd(cfg))
	root.AddCommand(hashPinCmd())
	return root
}

// loadPuzzle resolves the puzzle from PUZZLE_FILE, STEP_* variables or the embedded default.
func loadPuzzle(cfg *config.Config) (*puzzle.Definition, puzzle.Source, error) {
	def, src, err := puzzle.Resolve(cfg.PuzzleFile, os.Environ())
	if err != nil {
		return nil, src, err
	}
	log.Info().Str("source", string(src)).Int("codes", def.Len()).Msg("puzzle loaded")
	return def, src, nil
}

// huntOptions maps configuration onto game options.
func huntOptions(cfg *config.Config) []game.Option {
	var opts []game.Option
	if cfg.StrictRepeats {
		opts = append(opts, game.WithStrictRepeats())
	}
	return opts
}
