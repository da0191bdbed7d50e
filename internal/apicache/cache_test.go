package apicache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	dir := t.TempDir()
	c, err := Open(filepath.Join(dir, "cache.json"), filepath.Join(dir, "downloads"))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	return c
}

func TestFetch_InvokesOnce(t *testing.T) {
	c := newTestCache(t)

	calls := 0
	call := func() (any, error) {
		calls++
		return map[string]any{"title": "Fix X", "number": 10}, nil
	}

	key := Key([]any{10}, nil)
	first, err := c.Fetch("pull", key, call)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	second, err := c.Fetch("pull", key, call)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if calls != 1 {
		t.Errorf("remote call invoked %d times, want 1", calls)
	}
	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("second result %s != first %s", b, a)
	}
}

func TestFetch_DistinctKeysFetchIndependently(t *testing.T) {
	c := newTestCache(t)

	calls := 0
	call := func() (any, error) {
		calls++
		return calls, nil
	}

	if _, err := c.Fetch("pull", Key([]any{1}, nil), call); err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if _, err := c.Fetch("pull", Key([]any{2}, nil), call); err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if calls != 2 {
		t.Errorf("remote call invoked %d times, want 2", calls)
	}
}

func TestFetch_ErrorNotStored(t *testing.T) {
	c := newTestCache(t)

	calls := 0
	fail := true
	call := func() (any, error) {
		calls++
		if fail {
			return nil, os.ErrDeadlineExceeded
		}
		return "ok", nil
	}

	key := Key([]any{"x"}, nil)
	if _, err := c.Fetch("issue", key, call); err == nil {
		t.Fatal("expected error from failing call")
	}

	// A failed call must be retried, not memoized.
	fail = false
	got, err := c.Fetch("issue", key, call)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if got != "ok" {
		t.Errorf("got %v, want ok", got)
	}
	if calls != 2 {
		t.Errorf("remote call invoked %d times, want 2", calls)
	}
}

func TestKey_Stability(t *testing.T) {
	k1 := Key([]any{1, "a"}, map[string]any{"owner": "x", "repo": "y"})
	k2 := Key([]any{1, "a"}, map[string]any{"repo": "y", "owner": "x"})
	k3 := Key([]any{1, "b"}, map[string]any{"owner": "x", "repo": "y"})
	k4 := Key([]any{1, "a"}, map[string]any{"owner": "x", "repo": "z"})

	if k1 != k2 {
		t.Errorf("keyword order changed key: %q vs %q", k1, k2)
	}
	if k1 == k3 {
		t.Error("different positional args should produce different keys")
	}
	if k1 == k4 {
		t.Error("different keyword values should produce different keys")
	}
}

func TestKey_Empty(t *testing.T) {
	if Key(nil, nil) != Key([]any{}, nil) {
		t.Error("nil and empty argument lists should produce the same key")
	}
}

func TestOpen_CorruptFileFallsBackEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	c, err := Open(path, filepath.Join(dir, "downloads"))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	stats := c.GetStats()
	if len(stats.Categories) != 0 || stats.Files != 0 {
		t.Errorf("corrupt cache should load empty, got %+v", stats)
	}
}

func TestOpen_NullCategoriesLoadUsable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")
	if err := os.WriteFile(path, []byte(`{"pull": null, "files": null}`), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	c, err := Open(path, filepath.Join(dir, "downloads"))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}

	// Both a memoized fetch and a file store must work on the null-valued
	// categories instead of panicking on a nil inner map.
	got, err := c.Fetch("pull", Key([]any{1}, nil), func() (any, error) {
		return "fresh", nil
	})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if got != "fresh" {
		t.Errorf("got %v, want fresh", got)
	}
	if err := c.StoreFile([]byte("bytes"), "http://example.com/f.txt", ""); err != nil {
		t.Fatalf("StoreFile error: %v", err)
	}
	if _, ok := c.FileName("http://example.com/f.txt"); !ok {
		t.Error("stored URL not mapped")
	}
}

func TestFlush_Roundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")
	downloads := filepath.Join(dir, "downloads")

	c, err := Open(path, downloads)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	key := Key([]any{42}, nil)
	if _, err := c.Fetch("pull", key, func() (any, error) {
		return map[string]any{"number": 42}, nil
	}); err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	c.Flush()

	reopened, err := Open(path, downloads)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	got, err := reopened.Fetch("pull", key, func() (any, error) {
		t.Fatal("remote call invoked despite persisted entry")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	m, ok := got.(map[string]any)
	if !ok || m["number"] != float64(42) {
		t.Errorf("reloaded entry = %v", got)
	}
}

func TestPurge_DeletesBackingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")

	c, err := Open(path, filepath.Join(dir, "downloads"))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if _, err := c.Fetch("user", Key([]any{"octocat"}, nil), func() (any, error) {
		return "data", nil
	}); err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	c.Flush()

	c.Purge()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("backing file should be deleted after purge")
	}

	// Purged state still guarantees the files category.
	if _, ok := c.FileName("http://example.com/a"); ok {
		t.Error("purged cache should have no file mappings")
	}
}

func TestOpen_EnsuresFilesCategory(t *testing.T) {
	c := newTestCache(t)
	stats := c.GetStats()
	if stats.Files != 0 {
		t.Errorf("Files = %d, want 0", stats.Files)
	}
	if !stats.Dirty {
		t.Error("creating the files category should mark the cache dirty")
	}
}
