package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/relnote/internal/notes"
	"github.com/dshills/relnote/internal/release"
)

var contributorsCmd = &cobra.Command{
	Use:   "contributors <version>",
	Short: "Tally authors and reviewers for a version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		asm, err := assemble(args[0])
		if err != nil {
			return err
		}
		defer asm.cache.Flush()

		counter := release.NewCounter(asm.gh)
		for _, id := range asm.pulls {
			if err := counter.Add(ctx, id); err != nil {
				return err
			}
		}

		users, err := notes.NewUserCache(asm.gh, asm.cfg.UserFile)
		if err != nil {
			return err
		}

		contribs := counter.Sorted()
		fmt.Fprintf(os.Stdout, "Contributors to v%s (%d pull requests)\n\n", asm.meta.Release, len(asm.pulls))
		for _, section := range []struct {
			title   string
			credits []release.Credit
		}{
			{"Authors", contribs.Authors},
			{"Reviewers", contribs.Reviewers},
		} {
			fmt.Fprintf(os.Stdout, "%s:\n", section.title)
			for _, credit := range section.credits {
				info, err := users.Lookup(ctx, credit.Login)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "  %-24s (@%s): %d\n", info.Name, credit.Login, credit.Count)
			}
			fmt.Fprintln(os.Stdout)
		}
		return nil
	},
}
