package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// Config represents the relnote configuration.
type Config struct {
	Owner        string `json:"owner"`
	Repo         string `json:"repo"`
	TargetBranch string `json:"targetBranch"`
	RepoDir      string `json:"repoDir,omitempty"`
	CacheFile    string `json:"cacheFile,omitempty"`
	DownloadsDir string `json:"downloadsDir,omitempty"`
	UserFile     string `json:"userFile,omitempty"`
	ArchiveURL   string `json:"archiveURL,omitempty"`
	Community    string `json:"community,omitempty"`
	// SubjectOverrides maps commit subjects that predate the squash-merge
	// convention to their pull-request numbers.
	SubjectOverrides map[string]int `json:"subjectOverrides,omitempty"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Owner:        "celeritas-project",
		Repo:         "celeritas",
		TargetBranch: "develop",
		RepoDir:      ".",
	}
}

// ConfigDir returns the platform-appropriate config directory for relnote.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "relnote"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "relnote"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "relnote"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "relnote"), nil
	default:
		return filepath.Join(home, ".config", "relnote"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// CacheDir returns the platform-appropriate cache directory for relnote.
func CacheDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "relnote"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "relnote"), nil
	case "windows":
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, "relnote"), nil
		}
		return filepath.Join(home, "AppData", "Local", "relnote"), nil
	default:
		return filepath.Join(home, ".cache", "relnote"), nil
	}
}

// EffectiveCacheFile resolves the API cache path, defaulting to a per-repo
// file under the cache directory.
func (c Config) EffectiveCacheFile() (string, error) {
	if c.CacheFile != "" {
		return c.CacheFile, nil
	}
	dir, err := CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fmt.Sprintf("relnote-%s-%s.json", c.Owner, c.Repo)), nil
}

// EffectiveDownloadsDir resolves the blob-store directory, defaulting to a
// downloads subdirectory beside the cache file.
func (c Config) EffectiveDownloadsDir() (string, error) {
	if c.DownloadsDir != "" {
		return c.DownloadsDir, nil
	}
	dir, err := CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "downloads"), nil
}

// LoadFile loads config from the config file. Returns zero Config and nil error if file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)

	return cfg, nil
}

func mergeFile(dst *Config, src Config) {
	if src.Owner != "" {
		dst.Owner = src.Owner
	}
	if src.Repo != "" {
		dst.Repo = src.Repo
	}
	if src.TargetBranch != "" {
		dst.TargetBranch = src.TargetBranch
	}
	if src.RepoDir != "" {
		dst.RepoDir = src.RepoDir
	}
	if src.CacheFile != "" {
		dst.CacheFile = src.CacheFile
	}
	if src.DownloadsDir != "" {
		dst.DownloadsDir = src.DownloadsDir
	}
	if src.UserFile != "" {
		dst.UserFile = src.UserFile
	}
	if src.ArchiveURL != "" {
		dst.ArchiveURL = src.ArchiveURL
	}
	if src.Community != "" {
		dst.Community = src.Community
	}
	if len(src.SubjectOverrides) > 0 {
		dst.SubjectOverrides = src.SubjectOverrides
	}
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("RELNOTE_OWNER"); v != "" {
		cfg.Owner = v
	}
	if v := os.Getenv("RELNOTE_REPO"); v != "" {
		cfg.Repo = v
	}
	if v := os.Getenv("RELNOTE_TARGET_BRANCH"); v != "" {
		cfg.TargetBranch = v
	}
	if v := os.Getenv("RELNOTE_REPO_DIR"); v != "" {
		cfg.RepoDir = v
	}
	if v := os.Getenv("RELNOTE_CACHE_FILE"); v != "" {
		cfg.CacheFile = v
	}
	if v := os.Getenv("RELNOTE_USER_FILE"); v != "" {
		cfg.UserFile = v
	}
	if v := os.Getenv("RELNOTE_ARCHIVE_URL"); v != "" {
		cfg.ArchiveURL = v
	}
	if v := os.Getenv("RELNOTE_COMMUNITY"); v != "" {
		cfg.Community = v
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["owner"]; ok && v != "" {
		cfg.Owner = v
	}
	if v, ok := overrides["repo"]; ok && v != "" {
		cfg.Repo = v
	}
	if v, ok := overrides["targetBranch"]; ok && v != "" {
		cfg.TargetBranch = v
	}
	if v, ok := overrides["repoDir"]; ok && v != "" {
		cfg.RepoDir = v
	}
	if v, ok := overrides["cacheFile"]; ok && v != "" {
		cfg.CacheFile = v
	}
	if v, ok := overrides["userFile"]; ok && v != "" {
		cfg.UserFile = v
	}
	if v, ok := overrides["archiveURL"]; ok && v != "" {
		cfg.ArchiveURL = v
	}
	if v, ok := overrides["community"]; ok && v != "" {
		cfg.Community = v
	}
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "owner":
		cfg.Owner = value
	case "repo":
		cfg.Repo = value
	case "targetBranch":
		cfg.TargetBranch = value
	case "repoDir":
		cfg.RepoDir = value
	case "cacheFile":
		cfg.CacheFile = value
	case "downloadsDir":
		cfg.DownloadsDir = value
	case "userFile":
		cfg.UserFile = value
	case "archiveURL":
		cfg.ArchiveURL = value
	case "community":
		cfg.Community = value
	case "subjectOverride":
		// "subject=123" adds one override entry.
		subject, num, ok := strings.Cut(value, "=")
		if !ok {
			return fmt.Errorf("subjectOverride must be subject=number")
		}
		n, err := strconv.Atoi(num)
		if err != nil {
			return fmt.Errorf("subjectOverride number: %w", err)
		}
		if cfg.SubjectOverrides == nil {
			cfg.SubjectOverrides = make(map[string]int)
		}
		cfg.SubjectOverrides[subject] = n
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// GitHubToken resolves the tracker API token: the GITHUB_TOKEN environment
// variable, then a token file in the config directory. An empty string means
// unauthenticated access.
func GitHubToken() string {
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		return v
	}
	dir, err := ConfigDir()
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(filepath.Join(dir, "github-token"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// ZenodoToken resolves the archive API token from the environment.
func ZenodoToken() string {
	return os.Getenv("ZENODO_TOKEN")
}
