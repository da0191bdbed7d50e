package apicache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStoreFile_ContentAddressing(t *testing.T) {
	c := newTestCache(t)

	content := []byte("identical bytes")
	if err := c.StoreFile(content, "http://a.example/file.txt", ""); err != nil {
		t.Fatalf("StoreFile error: %v", err)
	}
	if err := c.StoreFile(content, "http://b.example/other.txt", ""); err != nil {
		t.Fatalf("StoreFile error: %v", err)
	}

	nameA, ok := c.FileName("http://a.example/file.txt")
	if !ok {
		t.Fatal("first URL not mapped")
	}
	nameB, ok := c.FileName("http://b.example/other.txt")
	if !ok {
		t.Fatal("second URL not mapped")
	}
	if nameA != nameB {
		t.Errorf("identical content stored under two names: %q, %q", nameA, nameB)
	}

	entries, err := os.ReadDir(c.DownloadsDir())
	if err != nil {
		t.Fatalf("ReadDir error: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("downloads dir has %d files, want 1", len(entries))
	}
}

func TestDownloadFile_SkipsFetchWhenCached(t *testing.T) {
	c := newTestCache(t)

	fetches := 0
	fetch := func(url string) ([]byte, error) {
		fetches++
		return []byte("payload"), nil
	}

	url := "http://example.com/artifact.tar.gz?token=abc"
	first, err := c.DownloadFile(url, fetch, "")
	if err != nil {
		t.Fatalf("DownloadFile error: %v", err)
	}
	second, err := c.DownloadFile(url, fetch, "")
	if err != nil {
		t.Fatalf("DownloadFile error: %v", err)
	}

	if fetches != 1 {
		t.Errorf("fetch invoked %d times, want 1", fetches)
	}
	if string(first) != "payload" || string(second) != "payload" {
		t.Errorf("payload mismatch: %q, %q", first, second)
	}

	// Query string must not leak into the stored extension.
	name, _ := c.FileName(url)
	if filepath.Ext(name) != ".gz" {
		t.Errorf("stored name = %q, want .gz suffix", name)
	}
}

func TestDownloadFile_RefetchesWhenFileMissing(t *testing.T) {
	c := newTestCache(t)

	fetches := 0
	fetch := func(url string) ([]byte, error) {
		fetches++
		return []byte("data"), nil
	}

	url := "http://example.com/blob"
	if _, err := c.DownloadFile(url, fetch, ""); err != nil {
		t.Fatalf("DownloadFile error: %v", err)
	}

	// Simulate a pruned downloads directory: the mapping survives but the
	// backing file is gone, so the fetch must run again.
	name, _ := c.FileName(url)
	if err := os.Remove(filepath.Join(c.DownloadsDir(), name)); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	if _, err := c.DownloadFile(url, fetch, ""); err != nil {
		t.Fatalf("DownloadFile error: %v", err)
	}
	if fetches != 2 {
		t.Errorf("fetch invoked %d times, want 2", fetches)
	}
}

func TestFileExt(t *testing.T) {
	cases := []struct {
		url, override, want string
	}{
		{"http://x/file.txt", "", ".txt"},
		{"http://x/file.txt?sig=1", "", ".txt"},
		{"http://x/file", "", ""},
		{"http://x/file", "tar.gz", ".gz"},
		{"http://x/file", ".tar.gz", ".gz"},
		{"http://x/file.bin", "json", ".json"},
	}
	for _, tc := range cases {
		if got := fileExt(tc.url, tc.override); got != tc.want {
			t.Errorf("fileExt(%q, %q) = %q, want %q", tc.url, tc.override, got, tc.want)
		}
	}
}
