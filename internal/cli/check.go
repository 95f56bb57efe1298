package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robalobadob/treasure-hunt/apps/go-server/internal/config"
)

func checkCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configured puzzle and print a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			def, src, err := loadPuzzle(cfg)
			if err != nil {
				failColor.Fprintf(out, "✗ puzzle (%s): %v\n", src, err)
				return err
			}

			okColor.Fprintf(out, "✓ puzzle loaded from %s: %d codes\n", src, def.Len())
			for i, code := range def.Codes() {
				r, _ := def.Riddle(i)
				first, _, _ := strings.Cut(r, "\n")
				fmt.Fprintf(out, "  %2d. %-16s %s\n", i+1, code, first)
			}
			if final, ok := def.Final(); ok {
				okColor.Fprintf(out, "✓ final code %q\n", final.Code)
			} else {
				warnColor.Fprintln(out, "! no final code: the hunt ends with the last riddle")
			}
			if n := len(def.Compliments()); n > 0 {
				okColor.Fprintf(out, "✓ %d compliments\n", n)
			} else {
				warnColor.Fprintln(out, "! no compliments: a fixed confirmation is shown")
			}
			return nil
		},
	}
}
