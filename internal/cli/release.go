package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/relnote/internal/release"
)

var releaseBody string

var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Manage tracker releases",
}

var releaseCreateCmd = &cobra.Command{
	Use:   "create <version>",
	Short: "Create a draft tracker release with generated notes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		asm, err := assemble(args[0])
		if err != nil {
			return err
		}
		defer asm.cache.Flush()

		text, err := renderNotes(ctx, asm, "markdown", releaseBody)
		if err != nil {
			var cerr *release.ClassificationError
			if errors.As(err, &cerr) {
				fmt.Fprintln(os.Stderr, cerr)
				exitCode = ExitUnlabeled
				return nil
			}
			return err
		}

		rel, err := asm.gh.CreateRelease(ctx, asm.meta.Release, asm.meta.TargetBranch, text)
		if err != nil {
			return fmt.Errorf("creating release v%s: %w", asm.meta.Release, err)
		}
		fmt.Fprintf(os.Stdout, "Created draft release %s: %s\n", rel.TagName, rel.HTMLURL)
		return nil
	},
}

func init() {
	addRangeFlags(releaseCreateCmd)
	releaseCreateCmd.Flags().StringVar(&releaseBody, "body", "", "introductory body text")
	releaseCmd.AddCommand(releaseCreateCmd)
}
