package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/relnote/internal/apicache"
	"github.com/dshills/relnote/internal/config"
	"github.com/dshills/relnote/internal/githist"
	"github.com/dshills/relnote/internal/notes"
	"github.com/dshills/relnote/internal/release"
	"github.com/dshills/relnote/internal/tracker"
)

var (
	notesTarget     string
	notesMergeBases []string
	notesFormat     string
	notesOut        string
	notesBody       string
)

var notesCmd = &cobra.Command{
	Use:   "notes <version>",
	Short: "Render release notes for a version",
	Long:  "Notes resolves the pull requests merged into a release from the local git\nhistory, files them by category label, and renders release notes.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		asm, err := assemble(args[0])
		if err != nil {
			return err
		}
		defer asm.cache.Flush()

		text, err := renderNotes(ctx, asm, notesFormat, notesBody)
		if err != nil {
			var cerr *release.ClassificationError
			if errors.As(err, &cerr) {
				fmt.Fprintln(os.Stderr, cerr)
				exitCode = ExitUnlabeled
				return nil
			}
			return err
		}

		if notesOut == "" {
			fmt.Fprint(os.Stdout, text)
			return nil
		}
		if err := os.WriteFile(notesOut, []byte(text), 0o644); err != nil {
			return fmt.Errorf("writing notes: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %s notes for v%s to %s\n", notesFormat, asm.meta.Release, notesOut)
		return nil
	},
}

// addRangeFlags registers the pull-range overrides on a command that
// resolves a release from git history.
func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&notesTarget, "target", "", "branch or tag being released (default v<version>)")
	cmd.Flags().StringArrayVar(&notesMergeBases, "merge-base", nil, "prior cut points whose pulls are excluded (repeatable)")
}

func init() {
	addRangeFlags(notesCmd)
	notesCmd.Flags().StringVar(&notesFormat, "format", "markdown", "output format: markdown or rst")
	notesCmd.Flags().StringVar(&notesOut, "out", "", "write notes to a file instead of stdout")
	notesCmd.Flags().StringVar(&notesBody, "body", "", "introductory body text")
}

// assembly carries everything the note-generating commands share: the
// effective config, the open cache, the tracker client, and the resolved
// pull set for one release.
type assembly struct {
	cfg   config.Config
	cache *apicache.Cache
	gh    *tracker.Client
	meta  release.Meta
	pulls []int
}

// assemble loads configuration, opens the cache, and resolves the release's
// pull requests from the local git history.
func assemble(versionArg string) (*assembly, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	meta, err := parseVersion(versionArg)
	if err != nil {
		return nil, err
	}
	if notesTarget != "" {
		meta.TargetBranch = notesTarget
	}
	if len(notesMergeBases) > 0 {
		meta.MergeBases = notesMergeBases
	}

	cache, err := openCache(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	repo := &githist.Repo{Dir: cfg.RepoDir}
	pulls, err := release.ResolvePulls(repo, meta, cfg.SubjectOverrides)
	if err != nil {
		cache.Flush()
		return nil, fmt.Errorf("resolving pulls for v%s: %w", meta.Release, err)
	}

	return &assembly{
		cfg:   cfg,
		cache: cache,
		gh:    newTracker(cfg, cache),
		meta:  meta,
		pulls: pulls,
	}, nil
}

// renderNotes categorizes the release's pulls and renders them with the
// contributor tallies appended.
func renderNotes(ctx context.Context, asm *assembly, format, body string) (string, error) {
	sorted := release.NewSortedPulls(asm.gh)
	counter := release.NewCounter(asm.gh)
	for _, id := range asm.pulls {
		if err := sorted.Add(ctx, id); err != nil {
			return "", err
		}
		if err := counter.Add(ctx, id); err != nil {
			return "", err
		}
	}

	users, err := notes.NewUserCache(asm.gh, asm.cfg.UserFile)
	if err != nil {
		return "", err
	}

	var b *notes.Builder
	switch format {
	case "markdown":
		b = notes.NewMarkdown(body)
	case "rst":
		b = notes.NewRST(asm.meta, asm.cfg.Repo, body, time.Now())
	default:
		return "", fmt.Errorf("unknown format %q (want markdown or rst)", format)
	}

	b.SortedPulls(sorted)
	if err := b.Reviewers(ctx, counter.Sorted().Reviewers, users); err != nil {
		return "", err
	}
	if format == "markdown" {
		b.ChangelogLine(asm.cfg.Owner, asm.cfg.Repo, asm.meta)
	}
	return b.String(), nil
}
