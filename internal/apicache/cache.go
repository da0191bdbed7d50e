package apicache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// filesCategory is the reserved category mapping source URLs to
// content-addressed filenames in the downloads directory.
const filesCategory = "files"

// Cache memoizes remote API responses in a category -> key -> response map
// persisted as a single JSON file.
type Cache struct {
	path         string
	downloadsDir string
	data         map[string]map[string]any
	dirty        bool
}

// Open loads the cache from path, falling back to an empty cache if the
// file is missing or corrupt. The downloads directory is created if absent.
func Open(path, downloadsDir string) (*Cache, error) {
	if err := os.MkdirAll(downloadsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating downloads directory: %w", err)
	}
	c := &Cache{
		path:         path,
		downloadsDir: downloadsDir,
		data:         make(map[string]map[string]any),
	}
	c.load()
	if _, ok := c.data[filesCategory]; !ok {
		c.data[filesCategory] = make(map[string]any)
		c.dirty = true
	}
	return c, nil
}

func (c *Cache) load() {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: cannot read cache file %s: %v\n", c.path, err)
		}
		return
	}
	if err := json.Unmarshal(data, &c.data); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: discarding corrupt cache file %s: %v\n", c.path, err)
		c.data = make(map[string]map[string]any)
		return
	}
	// A null category value decodes to a nil map; writes into it would panic.
	for cat, entries := range c.data {
		if entries == nil {
			c.data[cat] = make(map[string]any)
		}
	}
}

// Key builds the canonical cache key for a positional argument list and a
// keyword mapping. The encoding is deterministic: the same arguments always
// produce the same key, and keyword order does not matter. If the arguments
// cannot be encoded as JSON the key falls back to a best-effort string form,
// which loses the distinctness guarantee but never fails.
func Key(args []any, kw map[string]any) string {
	names := make([]string, 0, len(kw))
	for k := range kw {
		names = append(names, k)
	}
	sort.Strings(names)
	pairs := make([][2]any, 0, len(kw))
	for _, k := range names {
		pairs = append(pairs, [2]any{k, kw[k]})
	}
	if args == nil {
		args = []any{}
	}
	data, err := json.Marshal([2]any{args, pairs})
	if err != nil {
		return fmt.Sprint(args, kw)
	}
	return string(data)
}

// Fetch returns the cached response for (category, key), invoking call on
// the first miss. The response is normalized to plain JSON-equivalent data
// before storage so that the cached and fresh forms are identical. Errors
// from call propagate unmodified and leave the cache untouched.
func (c *Cache) Fetch(category, key string, call func() (any, error)) (any, error) {
	cat, ok := c.data[category]
	if !ok {
		cat = make(map[string]any)
		c.data[category] = cat
	}
	if v, ok := cat[key]; ok {
		return v, nil
	}
	resp, err := call()
	if err != nil {
		return nil, err
	}
	plain, err := normalize(resp)
	if err != nil {
		return nil, fmt.Errorf("normalizing %s response: %w", category, err)
	}
	cat[key] = plain
	c.dirty = true
	return plain, nil
}

// normalize converts an arbitrary response into plain maps, slices, and
// scalars via a JSON round-trip.
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var plain any
	if err := json.Unmarshal(data, &plain); err != nil {
		return nil, err
	}
	return plain, nil
}

// Flush writes the cache to its backing file if anything changed since the
// last flush. Write failures are reported on stderr, not returned: a stale
// cache only costs extra API calls on the next run.
func (c *Cache) Flush() {
	if !c.dirty {
		return
	}
	data, err := json.Marshal(c.data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode cache: %v\n", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save cache: %v\n", err)
		return
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save cache: %v\n", err)
		return
	}
	c.dirty = false
}

// Purge discards all in-memory state and deletes the backing file. A file
// that cannot be deleted is reported, not raised.
func (c *Cache) Purge() {
	c.data = map[string]map[string]any{filesCategory: {}}
	c.dirty = false
	if err := os.Remove(c.path); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Failed to delete cache file: %v\n", err)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "Deleted cache file: %s\n", c.path)
}

// Path returns the backing file path.
func (c *Cache) Path() string {
	return c.path
}

// DownloadsDir returns the content-addressed downloads directory.
func (c *Cache) DownloadsDir() string {
	return c.downloadsDir
}

// Stats summarizes cache contents for display.
type Stats struct {
	Path       string         `json:"path"`
	Categories map[string]int `json:"categories"`
	Files      int            `json:"files"`
	Dirty      bool           `json:"dirty"`
}

// GetStats returns per-category entry counts.
func (c *Cache) GetStats() Stats {
	stats := Stats{
		Path:       c.path,
		Categories: make(map[string]int),
		Dirty:      c.dirty,
	}
	for cat, entries := range c.data {
		if cat == filesCategory {
			stats.Files = len(entries)
			continue
		}
		stats.Categories[cat] = len(entries)
	}
	return stats
}
