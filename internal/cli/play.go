package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/treasure-hunt/apps/go-server/internal/config"
	"github.com/robalobadob/treasure-hunt/apps/go-server/internal/game"
	"github.com/robalobadob/treasure-hunt/apps/go-server/internal/store"
)

var (
	okColor       = color.New(color.FgGreen)
	failColor     = color.New(color.FgRed)
	warnColor     = color.New(color.FgYellow)
	treasureColor = color.New(color.FgYellow, color.Bold)
	riddleColor   = color.New(color.FgCyan)
)

func playCmd(cfg *config.Config) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play the hunt in the terminal (progress kept in a local directory)",
		Long: `Play the hunt in the terminal. Type a code and press enter.
":reset" starts over, ":quit" (or end of input) leaves; progress is kept.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = cfg.DataDir
			}
			return runPlay(cmd, cfg, dir)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "progress directory (defaults to DATA_DIR)")
	return cmd
}

func runPlay(cmd *cobra.Command, cfg *config.Config, dir string) error {
	log.Logger = log.Output(zerologConsole(cmd.ErrOrStderr()))

	def, _, err := loadPuzzle(cfg)
	if err != nil {
		return err
	}
	backend, err := store.NewFile(dir)
	if err != nil {
		return err
	}
	defer backend.Close()

	ctx := cmd.Context()
	h, err := game.Load(ctx, def, backend, "", huntOptions(cfg)...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	in := bufio.NewScanner(cmd.InOrStdin())
	for {
		printStatus(out, h)
		fmt.Fprint(out, "> ")
		if !in.Scan() {
			fmt.Fprintln(out)
			return in.Err()
		}

		switch line := strings.TrimSpace(in.Text()); line {
		case "":
			continue
		case ":quit", ":q":
			return nil
		case ":reset":
			if err := h.Reset(ctx); err != nil {
				return err
			}
			warnColor.Fprintln(out, "Hra byla resetována.")
		default:
			res, err := h.ValidateCode(ctx, line)
			if err != nil {
				return err
			}
			printResult(out, res)
			if res.Kind == game.KindCompleted {
				return nil
			}
		}
	}
}

func printStatus(out io.Writer, h *game.Hunt) {
	fmt.Fprintf(out, "\nNašel jsi %d %s z %d.\n", h.FoundCodes(), h.FoundCodesWord(), h.MaxCodes())
	if h.HasTreasure() {
		treasureColor.Fprintln(out, h.FinalMessage())
		return
	}
	if r, ok := h.RiddleText(); ok {
		riddleColor.Fprintln(out, r)
	} else if h.HasFinal() {
		fmt.Fprintln(out, "Máš všechny kódy. Zadej finální kód!")
	}
}

func printResult(out io.Writer, res game.Result) {
	switch res.Kind {
	case game.KindSuccess:
		okColor.Fprintln(out, res.Message)
	case game.KindCompleted:
		treasureColor.Fprintln(out, res.Message)
	case game.KindWrongCode:
		failColor.Fprintln(out, res.Message)
	default:
		warnColor.Fprintln(out, res.Message)
	}
}

// zerologConsole is a human-readable log writer for interactive commands.
func zerologConsole(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: w, NoColor: !isTerminal(w)}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
