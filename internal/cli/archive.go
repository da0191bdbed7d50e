package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/relnote/internal/archive"
	"github.com/dshills/relnote/internal/config"
	"github.com/dshills/relnote/internal/notes"
	"github.com/dshills/relnote/internal/release"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Manage archival depositions",
}

var archivePushCmd = &cobra.Command{
	Use:   "push <version>",
	Short: "Push a published release and its tarball to the archive",
	Long:  "Push finds the tracker release for a version, ensures its source tarball is\nattached, and creates or updates the matching archival deposition with the\nrelease's contributor metadata.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		asm, err := assemble(args[0])
		if err != nil {
			return err
		}
		defer asm.cache.Flush()

		rel, err := asm.gh.FindRelease(ctx, asm.meta.Release)
		if err != nil {
			return err
		}
		if rel == nil {
			return fmt.Errorf("no tracker release found for v%s", asm.meta.Release)
		}

		tarball, err := asm.gh.GetOrUploadTarball(ctx, rel)
		if err != nil {
			return err
		}
		if tarball == nil {
			return fmt.Errorf("release %s has no usable tarball", rel.TagName)
		}

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
		builder := &notes.ZenodoMetaBuilder{
			Project:   asm.cfg.Repo,
			Org:       asm.cfg.Owner,
			Community: asm.cfg.Community,
			RepoURL:   fmt.Sprintf("https://github.com/%s/%s", asm.cfg.Owner, asm.cfg.Repo),
			Users:     users,
			Teams:     asm.gh,
		}
		metadata, err := builder.Build(ctx, asm.meta, counter.Sorted(), rel)
		if err != nil {
			return err
		}

		zen := archive.New(asm.cfg.ArchiveURL, config.ZenodoToken())
		if id, ok := metadata["license"].(string); ok {
			if err := zen.ValidateLicense(ctx, id); err != nil {
				return err
			}
		}
		dep, err := depositionFor(ctx, zen, metadata)
		if err != nil {
			return err
		}

		if err := replaceFile(ctx, dep, tarball.Name, tarball.Content); err != nil {
			return err
		}
		if err := dep.Update(ctx, metadata); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Deposition ready for review: %s\n", dep.Links.HTML)
		return nil
	},
}

// depositionFor locates the deposition for this release title, creating one
// when none exists and bumping a published one to a new draft version.
func depositionFor(ctx context.Context, zen *archive.Client, metadata map[string]any) (*archive.Deposition, error) {
	title, _ := metadata["title"].(string)
	dep, err := zen.FindDeposition(ctx, title)
	if err != nil {
		return nil, err
	}
	if dep == nil {
		return zen.CreateDeposition(ctx, metadata)
	}
	next, err := dep.NewVersion(ctx)
	if err != nil {
		return nil, err
	}
	if next != nil {
		return next, nil
	}
	return dep, nil
}

// replaceFile uploads content under name, deleting any stale copy first.
func replaceFile(ctx context.Context, dep *archive.Deposition, name string, content []byte) error {
	files, err := dep.Files(ctx)
	if err != nil {
		return err
	}
	for i := range files {
		if files[i].Filename == name {
			if err := files[i].Delete(ctx); err != nil {
				return err
			}
		}
	}
	return dep.Upload(ctx, name, content)
}

func init() {
	addRangeFlags(archivePushCmd)
	archiveCmd.AddCommand(archivePushCmd)
}
