package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

// Exit codes.
const (
	ExitSuccess      = 0
	ExitUnlabeled    = 1
	ExitUsageError   = 2
	ExitAuthError    = 3
	ExitRuntimeError = 4
)

var rootCmd = &cobra.Command{
	Use:   "relnote",
	Short: "Release note assembly for GitHub projects",
	Long:  "Relnote resolves the pull requests belonging to a release from git history,\ncategorizes them by label, and renders release notes, tracker releases, and\narchival depositions.",
}

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.AddCommand(notesCmd)
	rootCmd.AddCommand(contributorsCmd)
	rootCmd.AddCommand(releaseCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print relnote version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "relnote version %s\n", version)
	},
}
