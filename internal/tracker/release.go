package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/google/go-github/v74/github"

	"github.com/dshills/relnote/internal/apicache"
)

// Releases lists the repository's releases.
func (c *Client) Releases(ctx context.Context) ([]Release, error) {
	var releases []Release
	err := c.fetchInto("releases", apicache.Key(nil, nil), func() (any, error) {
		rs, _, err := c.gh.Repositories.ListReleases(ctx, c.owner, c.repo, nil)
		return rs, err
	}, &releases)
	if err != nil {
		return nil, err
	}
	return releases, nil
}

// Release fetches one release by id.
func (c *Client) Release(ctx context.Context, id int64) (*Release, error) {
	var rel Release
	err := c.fetchInto("release", apicache.Key([]any{id}, nil), func() (any, error) {
		r, _, err := c.gh.Repositories.GetRelease(ctx, c.owner, c.repo, id)
		return r, err
	}, &rel)
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

// freshRelease re-reads a release directly, bypassing the cache. Used when
// checking whether assets have appeared since the cached snapshot.
func (c *Client) freshRelease(ctx context.Context, id int64) (*Release, error) {
	r, _, err := c.gh.Repositories.GetRelease(ctx, c.owner, c.repo, id)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encoding release: %w", err)
	}
	var rel Release
	if err := json.Unmarshal(data, &rel); err != nil {
		return nil, fmt.Errorf("decoding release: %w", err)
	}
	return &rel, nil
}

// FindRelease looks up a release by version number, matching either the tag
// "v<version>" or the name "Version <version>". Returns nil when no release
// matches.
func (c *Client) FindRelease(ctx context.Context, version string) (*Release, error) {
	releases, err := c.Releases(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching releases: %w", err)
	}
	for i := range releases {
		if releases[i].TagName == "v"+version || releases[i].Name == "Version "+version {
			return &releases[i], nil
		}
	}
	fmt.Fprintf(os.Stderr, "No release found for version: %s\n", version)
	return nil, nil
}

// CreateRelease creates a draft release so the notes can be reviewed before
// publishing. Not cached: releases are mutating, not memoizable.
func (c *Client) CreateRelease(ctx context.Context, version, targetBranch, notes string) (*Release, error) {
	rel, _, err := c.gh.Repositories.CreateRelease(ctx, c.owner, c.repo, &github.RepositoryRelease{
		TagName:         github.Ptr("v" + version),
		TargetCommitish: github.Ptr(targetBranch),
		Name:            github.Ptr("Version " + version),
		Body:            github.Ptr(notes),
		Draft:           github.Ptr(true),
		Prerelease:      github.Ptr(false),
	})
	if err != nil {
		return nil, fmt.Errorf("creating release v%s: %w", version, err)
	}
	data, err := json.Marshal(rel)
	if err != nil {
		return nil, fmt.Errorf("encoding release: %w", err)
	}
	var created Release
	if err := json.Unmarshal(data, &created); err != nil {
		return nil, fmt.Errorf("decoding release: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Draft release %s created: %s\n", version, created.HTMLURL)
	return &created, nil
}

// UploadReleaseAsset posts content to a release's templated upload URL.
func (c *Client) UploadReleaseAsset(ctx context.Context, uploadURL, name, contentType string, content []byte) (*Asset, error) {
	u := expandUploadURL(uploadURL, name)
	req, err := http.NewRequestWithContext(ctx, "POST", u, bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("creating upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return nil, fmt.Errorf("uploading asset %s: %w", name, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading upload response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("uploading asset %s: status %d: %s", name, resp.StatusCode, body)
	}

	var asset Asset
	if err := json.Unmarshal(body, &asset); err != nil {
		return nil, fmt.Errorf("decoding uploaded asset: %w", err)
	}
	return &asset, nil
}

// Tarball is a release source archive held in memory.
type Tarball struct {
	Name    string
	URL     string
	Content []byte
}

const tarballSuffix = ".tar.gz"

// GetTarball returns the tarball attached to a release's assets, or nil if
// none (or more than one) is attached. A release with no matching asset is
// re-read once, bypassing the cache, in case an asset was attached after the
// cached snapshot was taken.
func (c *Client) GetTarball(ctx context.Context, rel *Release) (*Tarball, error) {
	asset, multiple := tarballAsset(rel)
	if multiple {
		fmt.Fprintln(os.Stderr, "Multiple tarballs found in release assets")
		return nil, nil
	}
	if asset == nil {
		fmt.Fprintln(os.Stderr, "No tarball found in release assets: reloading from GitHub")
		fresh, err := c.freshRelease(ctx, rel.ID)
		if err != nil {
			return nil, err
		}
		asset, multiple = tarballAsset(fresh)
		if multiple {
			fmt.Fprintln(os.Stderr, "Multiple tarballs found in release assets")
			return nil, nil
		}
		if asset == nil {
			fmt.Fprintln(os.Stderr, "Still no tarball found in release assets")
			return nil, nil
		}
	}

	content, err := c.DownloadFile(ctx, asset.BrowserDownloadURL, "", "")
	if err != nil {
		return nil, err
	}
	return &Tarball{Name: asset.Name, URL: asset.BrowserDownloadURL, Content: content}, nil
}

// tarballAsset finds the single tarball asset on a release. The second
// return reports an ambiguous release carrying more than one.
func tarballAsset(rel *Release) (*Asset, bool) {
	var found *Asset
	for i := range rel.Assets {
		if strings.HasSuffix(rel.Assets[i].Name, tarballSuffix) {
			if found != nil {
				return nil, true
			}
			found = &rel.Assets[i]
		}
	}
	return found, false
}

// GetOrUploadTarball manages the release artifact: an already-attached
// tarball is downloaded into memory; otherwise the automatic source tarball
// is downloaded, uploaded as a release asset, and its published URL mapped
// into the content-addressed store.
func (c *Client) GetOrUploadTarball(ctx context.Context, rel *Release) (*Tarball, error) {
	found, err := c.GetTarball(ctx, rel)
	if err != nil || found != nil {
		if found != nil {
			fmt.Fprintln(os.Stderr, "Found tarball in release assets")
		}
		return found, err
	}

	fmt.Fprintln(os.Stderr, "Downloading release tarball")
	content, err := c.DownloadFile(ctx, rel.TarballURL, "", "")
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(os.Stderr, "Uploading release tarball")
	name := fmt.Sprintf("%s-%s%s", c.repo, strings.TrimPrefix(rel.TagName, "v"), tarballSuffix)
	asset, err := c.UploadReleaseAsset(ctx, rel.UploadURL, name, "application/gzip", content)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(os.Stderr, "Uploaded artifact: %s\n", asset.BrowserDownloadURL)
	if err := c.cache.StoreFile(content, asset.BrowserDownloadURL, tarballSuffix); err != nil {
		return nil, err
	}
	return &Tarball{Name: name, URL: asset.BrowserDownloadURL, Content: content}, nil
}
