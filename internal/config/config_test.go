package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Owner != "celeritas-project" {
		t.Errorf("Default owner = %q, want %q", cfg.Owner, "celeritas-project")
	}
	if cfg.Repo != "celeritas" {
		t.Errorf("Default repo = %q, want %q", cfg.Repo, "celeritas")
	}
	if cfg.TargetBranch != "develop" {
		t.Errorf("Default targetBranch = %q, want %q", cfg.TargetBranch, "develop")
	}
	if cfg.RepoDir != "." {
		t.Errorf("Default repoDir = %q, want %q", cfg.RepoDir, ".")
	}
}

func TestMergeEnv(t *testing.T) {
	t.Setenv("RELNOTE_OWNER", "acme")
	t.Setenv("RELNOTE_REPO", "rockets")
	t.Setenv("RELNOTE_TARGET_BRANCH", "main")
	t.Setenv("RELNOTE_USER_FILE", "/tmp/users.yaml")

	cfg := Default()
	mergeEnv(&cfg)

	if cfg.Owner != "acme" {
		t.Errorf("Owner = %q, want %q", cfg.Owner, "acme")
	}
	if cfg.Repo != "rockets" {
		t.Errorf("Repo = %q, want %q", cfg.Repo, "rockets")
	}
	if cfg.TargetBranch != "main" {
		t.Errorf("TargetBranch = %q, want %q", cfg.TargetBranch, "main")
	}
	if cfg.UserFile != "/tmp/users.yaml" {
		t.Errorf("UserFile = %q, want %q", cfg.UserFile, "/tmp/users.yaml")
	}
}

func TestMergeOverrides(t *testing.T) {
	cfg := Default()
	mergeOverrides(&cfg, map[string]string{
		"owner":        "acme",
		"repo":         "rockets",
		"targetBranch": "main",
	})

	if cfg.Owner != "acme" {
		t.Errorf("Owner = %q, want %q", cfg.Owner, "acme")
	}
	if cfg.Repo != "rockets" {
		t.Errorf("Repo = %q, want %q", cfg.Repo, "rockets")
	}
	if cfg.TargetBranch != "main" {
		t.Errorf("TargetBranch = %q, want %q", cfg.TargetBranch, "main")
	}
}

func TestMergeOverrides_Nil(t *testing.T) {
	cfg := Default()
	mergeOverrides(&cfg, nil)
	if cfg.Owner != "celeritas-project" {
		t.Errorf("Owner changed with nil overrides")
	}
}

func TestConfigPrecedence(t *testing.T) {
	// overrides > env > defaults
	t.Setenv("RELNOTE_OWNER", "env-owner")

	cfg := Default()
	mergeEnv(&cfg)
	if cfg.Owner != "env-owner" {
		t.Errorf("After env merge, Owner = %q, want %q", cfg.Owner, "env-owner")
	}

	mergeOverrides(&cfg, map[string]string{"owner": "flag-owner"})
	if cfg.Owner != "flag-owner" {
		t.Errorf("After override, Owner = %q, want %q", cfg.Owner, "flag-owner")
	}
}

func TestMergeFile_AllFields(t *testing.T) {
	dst := Default()
	src := Config{
		Owner:            "acme",
		Repo:             "rockets",
		TargetBranch:     "main",
		RepoDir:          "/src/rockets",
		CacheFile:        "/tmp/cache.json",
		DownloadsDir:     "/tmp/downloads",
		UserFile:         "/tmp/users.yaml",
		ArchiveURL:       "https://zenodo.org/api",
		Community:        "hep",
		SubjectOverrides: map[string]int{"Old subject": 42},
	}
	mergeFile(&dst, src)

	if dst.Owner != "acme" || dst.Repo != "rockets" || dst.TargetBranch != "main" {
		t.Errorf("identity fields = %q/%q/%q", dst.Owner, dst.Repo, dst.TargetBranch)
	}
	if dst.CacheFile != "/tmp/cache.json" || dst.DownloadsDir != "/tmp/downloads" {
		t.Errorf("cache fields = %q/%q", dst.CacheFile, dst.DownloadsDir)
	}
	if dst.ArchiveURL != "https://zenodo.org/api" || dst.Community != "hep" {
		t.Errorf("archive fields = %q/%q", dst.ArchiveURL, dst.Community)
	}
	if dst.SubjectOverrides["Old subject"] != 42 {
		t.Errorf("SubjectOverrides = %v", dst.SubjectOverrides)
	}
}

func TestMergeFile_EmptyPreservesDefaults(t *testing.T) {
	dst := Default()
	mergeFile(&dst, Config{})
	if dst.TargetBranch != "develop" {
		t.Errorf("TargetBranch = %q, want default preserved", dst.TargetBranch)
	}
}

func TestSetField(t *testing.T) {
	cfg := Default()

	tests := []struct {
		key   string
		value string
	}{
		{"owner", "acme"},
		{"repo", "rockets"},
		{"targetBranch", "main"},
		{"cacheFile", "/tmp/cache.json"},
		{"community", "hep"},
	}
	for _, tt := range tests {
		if err := SetField(&cfg, tt.key, tt.value); err != nil {
			t.Errorf("SetField(%q, %q) error: %v", tt.key, tt.value, err)
		}
	}

	if cfg.Owner != "acme" {
		t.Errorf("Owner = %q, want %q", cfg.Owner, "acme")
	}
	if cfg.Community != "hep" {
		t.Errorf("Community = %q, want %q", cfg.Community, "hep")
	}
}

func TestSetField_SubjectOverride(t *testing.T) {
	cfg := Default()
	if err := SetField(&cfg, "subjectOverride", "Old subject=42"); err != nil {
		t.Fatalf("SetField error: %v", err)
	}
	if cfg.SubjectOverrides["Old subject"] != 42 {
		t.Errorf("SubjectOverrides = %v", cfg.SubjectOverrides)
	}

	if err := SetField(&cfg, "subjectOverride", "no-number"); err == nil {
		t.Error("expected error for malformed override")
	}
	if err := SetField(&cfg, "subjectOverride", "subject=abc"); err == nil {
		t.Error("expected error for non-integer override")
	}
}

func TestSetField_UnknownKey(t *testing.T) {
	cfg := Default()
	if err := SetField(&cfg, "nonexistent", "value"); err == nil {
		t.Error("Expected error for unknown key")
	}
}

func TestConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir error: %v", err)
	}
	if dir != "/tmp/xdg-test/relnote" {
		t.Errorf("ConfigDir = %q, want %q", dir, "/tmp/xdg-test/relnote")
	}
}

func TestEffectiveCacheFile(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	cfg := Default()
	path, err := cfg.EffectiveCacheFile()
	if err != nil {
		t.Fatalf("EffectiveCacheFile error: %v", err)
	}
	want := "/tmp/xdg-cache/relnote/relnote-celeritas-project-celeritas.json"
	if path != want {
		t.Errorf("EffectiveCacheFile = %q, want %q", path, want)
	}

	cfg.CacheFile = "/explicit/cache.json"
	path, err = cfg.EffectiveCacheFile()
	if err != nil {
		t.Fatalf("EffectiveCacheFile error: %v", err)
	}
	if path != "/explicit/cache.json" {
		t.Errorf("EffectiveCacheFile = %q, want explicit path", path)
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.Owner = "acme"
	cfg.Repo = "rockets"

	if err := Save(cfg); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	loaded, err := LoadFile()
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if loaded.Owner != "acme" || loaded.Repo != "rockets" {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestLoadFile_NoFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadFile()
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	// Zero config, not defaults.
	if cfg.Owner != "" {
		t.Errorf("Owner should be empty for missing file, got %q", cfg.Owner)
	}
}

func TestLoad_Integration(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("RELNOTE_OWNER", "")

	cfg, err := Load(map[string]string{"owner": "acme"})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Owner != "acme" {
		t.Errorf("Owner = %q, want %q", cfg.Owner, "acme")
	}
	if cfg.TargetBranch != "develop" {
		t.Errorf("TargetBranch = %q, want default preserved", cfg.TargetBranch)
	}
}

func TestGitHubToken_File(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("GITHUB_TOKEN", "")

	tokenDir := filepath.Join(dir, "relnote")
	if err := os.MkdirAll(tokenDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tokenDir, "github-token"), []byte("ghp_file\n"), 0o600); err != nil {
		t.Fatalf("writing token file: %v", err)
	}

	if got := GitHubToken(); got != "ghp_file" {
		t.Errorf("GitHubToken = %q, want trimmed file token", got)
	}

	t.Setenv("GITHUB_TOKEN", "ghp_env")
	if got := GitHubToken(); got != "ghp_env" {
		t.Errorf("GitHubToken = %q, env should win", got)
	}
}
