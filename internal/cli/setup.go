package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/relnote/internal/apicache"
	"github.com/dshills/relnote/internal/config"
	"github.com/dshills/relnote/internal/release"
	"github.com/dshills/relnote/internal/tracker"
)

var (
	flagOwner   string
	flagRepo    string
	flagRepoDir string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagOwner, "owner", "", "repository owner (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagRepo, "repo", "", "repository name (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagRepoDir, "repo-dir", "", "local clone to read history from (default from config)")
}

// loadConfig builds the effective config from defaults, file, environment,
// and the global flags.
func loadConfig() (config.Config, error) {
	return config.Load(map[string]string{
		"owner":   flagOwner,
		"repo":    flagRepo,
		"repoDir": flagRepoDir,
	})
}

// openCache opens the memoizing API cache for the configured repository.
// Callers must defer Flush.
func openCache(cfg config.Config) (*apicache.Cache, error) {
	path, err := cfg.EffectiveCacheFile()
	if err != nil {
		return nil, err
	}
	downloads, err := cfg.EffectiveDownloadsDir()
	if err != nil {
		return nil, err
	}
	return apicache.Open(path, downloads)
}

// newTracker creates the GitHub client for the configured repository.
func newTracker(cfg config.Config, cache *apicache.Cache) *tracker.Client {
	return tracker.New(cfg.Owner, cfg.Repo, config.GitHubToken(), cache)
}

// parseVersion converts "major.minor.patch" to release metadata. The
// two-component form "major.minor" names a development release.
func parseVersion(s string) (release.Meta, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 && len(parts) != 3 {
		return release.Meta{}, fmt.Errorf("version must be major.minor.patch or major.minor: %q", s)
	}
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return release.Meta{}, fmt.Errorf("version component %q is not a number", p)
		}
		nums[i] = n
	}
	if len(nums) == 2 {
		return release.FromVersion(nums[0], nums[1], -1), nil
	}
	return release.FromVersion(nums[0], nums[1], nums[2]), nil
}
