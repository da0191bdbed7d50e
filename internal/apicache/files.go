package apicache

import (
	"crypto/sha1"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FileName returns the content-addressed filename mapped to url, if any.
func (c *Cache) FileName(url string) (string, bool) {
	name, ok := c.data[filesCategory][url].(string)
	return name, ok
}

// StoreFile writes content into the downloads directory under a name derived
// from its SHA-1 digest and records the url -> filename mapping. The write
// is idempotent: an existing file with the same digest is left alone, so two
// URLs resolving to identical bytes share one file.
func (c *Cache) StoreFile(content []byte, url, ext string) error {
	digest := ""
	if name, ok := c.FileName(url); ok {
		digest = strings.TrimSuffix(name, path.Ext(name))
	} else {
		digest = fmt.Sprintf("%x", sha1.Sum(content))
	}

	name := digest + fileExt(url, ext)
	p := filepath.Join(c.downloadsDir, name)
	if _, err := os.Stat(p); err != nil {
		if err := os.WriteFile(p, content, 0o644); err != nil {
			return fmt.Errorf("writing download %s: %w", name, err)
		}
	}

	c.data[filesCategory][url] = name
	c.dirty = true
	return nil
}

// DownloadFile returns the bytes for url, reading from the content-addressed
// store when the url is already mapped and its backing file exists, and
// invoking fetch otherwise. Once a local file is confirmed present, the same
// url is never fetched again, even across runs.
func (c *Cache) DownloadFile(url string, fetch func(url string) ([]byte, error), ext string) ([]byte, error) {
	if name, ok := c.FileName(url); ok {
		p := filepath.Join(c.downloadsDir, name)
		if data, err := os.ReadFile(p); err == nil {
			fmt.Fprintf(os.Stderr, "Loading %s from cached file %s\n", url, p)
			return data, nil
		}
	}

	fmt.Fprintf(os.Stderr, "Downloading %s\n", url)
	content, err := fetch(url)
	if err != nil {
		return nil, err
	}
	if err := c.StoreFile(content, url, ext); err != nil {
		return nil, err
	}
	return content, nil
}

// fileExt resolves the stored file's extension: an explicit override
// (normalized to a single trailing suffix) wins, then the suffix of the URL
// path with any query string stripped, then empty.
func fileExt(url, override string) string {
	if override != "" {
		parts := strings.Split(override, ".")
		return "." + parts[len(parts)-1]
	}
	trimmed, _, _ := strings.Cut(url, "?")
	return path.Ext(trimmed)
}
