package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
)

// DepositionMeta is the slice of deposition metadata the tooling reads
// back; the full metadata payload is written as an opaque mapping.
type DepositionMeta struct {
	Title string `json:"title"`
}

// DepositionLinks are the hypermedia links a deposition exposes.
type DepositionLinks struct {
	Self        string `json:"self"`
	HTML        string `json:"html"`
	Bucket      string `json:"bucket"`
	Files       string `json:"files"`
	Latest      string `json:"latest"`
	LatestDraft string `json:"latest_draft"`
	NewVersion  string `json:"newversion"`
}

// Deposition is one archival deposition.
type Deposition struct {
	client *Client

	ID          int64           `json:"id"`
	State       string          `json:"state"`
	Metadata    DepositionMeta  `json:"metadata"`
	Links       DepositionLinks `json:"links"`
	FileRecords []File          `json:"files"`
}

// File is a file attached to a deposition.
type File struct {
	client *Client

	Filename string `json:"filename"`
	Links    struct {
		Self   string `json:"self"`
		Bucket string `json:"bucket"`
	} `json:"links"`
}

// Delete removes this file from its deposition.
func (f *File) Delete(ctx context.Context) error {
	if err := f.client.request(ctx, "DELETE", f.Links.Self, nil, nil, "", nil); err != nil {
		return fmt.Errorf("deleting %s: %w", f.Filename, err)
	}
	fmt.Fprintf(os.Stderr, "Deleted %s from %s\n", f.Filename, f.Links.Bucket)
	return nil
}

// Upload attaches content to the deposition under name. New-style
// depositions get a direct bucket PUT; older ones fall back to the
// multipart file API.
func (d *Deposition) Upload(ctx context.Context, name string, content []byte) error {
	if d.Links.Bucket != "" {
		var uploaded struct {
			Key       string `json:"key"`
			VersionID string `json:"version_id"`
		}
		err := d.client.request(ctx, "PUT", d.Links.Bucket+"/"+name,
			nil, bytes.NewReader(content), "application/octet-stream", &uploaded)
		if err != nil {
			return fmt.Errorf("uploading %s: %w", name, err)
		}
		fmt.Fprintf(os.Stderr, "Uploaded %s: version %s\n", uploaded.Key, uploaded.VersionID)
		return nil
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("name", name); err != nil {
		return err
	}
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, bytes.NewReader(content)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	var uploaded map[string]any
	err = d.client.request(ctx, "POST", d.Links.Self+"/files",
		nil, &body, w.FormDataContentType(), &uploaded)
	if err != nil {
		return fmt.Errorf("uploading %s: %w", name, err)
	}
	fmt.Fprintf(os.Stderr, "Uploaded %v\n", uploaded["filename"])
	return nil
}

// Files returns the files attached to the deposition, listing them
// remotely when the embedded records are empty.
func (d *Deposition) Files(ctx context.Context) ([]File, error) {
	files := d.FileRecords
	if len(files) == 0 && d.Links.Files != "" {
		if err := d.client.request(ctx, "GET", d.Links.Files, nil, nil, "", &files); err != nil {
			return nil, fmt.Errorf("listing deposition files: %w", err)
		}
	}
	for i := range files {
		files[i].client = d.client
	}
	return files, nil
}

// NewVersion creates a new version of a published deposition. A draft has
// no versions to bump, so nil is returned.
func (d *Deposition) NewVersion(ctx context.Context) (*Deposition, error) {
	if d.State == "draft" {
		return nil, nil
	}
	var next Deposition
	err := d.client.requestJSON(ctx, "POST", d.Links.NewVersion, map[string]any{}, &next)
	if err != nil {
		return nil, fmt.Errorf("creating new version: %w", err)
	}
	next.client = d.client
	fmt.Fprintf(os.Stderr, "Created new version %d: %s\n", next.ID, next.Links.HTML)
	return &next, nil
}

// LatestDraft fetches the latest draft of this deposition.
func (d *Deposition) LatestDraft(ctx context.Context) (*Deposition, error) {
	var draft Deposition
	if err := d.client.request(ctx, "GET", d.Links.LatestDraft, nil, nil, "", &draft); err != nil {
		return nil, fmt.Errorf("fetching latest draft: %w", err)
	}
	draft.client = d.client
	return &draft, nil
}

// LatestVersion fetches the latest published version of this deposition.
func (d *Deposition) LatestVersion(ctx context.Context) (*Deposition, error) {
	var latest Deposition
	if err := d.client.request(ctx, "GET", d.Links.Latest, nil, nil, "", &latest); err != nil {
		return nil, fmt.Errorf("fetching latest version: %w", err)
	}
	latest.client = d.client
	return &latest, nil
}

// Update replaces the deposition's metadata and refreshes the local copy.
func (d *Deposition) Update(ctx context.Context, metadata map[string]any) error {
	var updated Deposition
	err := d.client.requestJSON(ctx, "PUT", d.Links.Self,
		map[string]any{"metadata": metadata}, &updated)
	if err != nil {
		return fmt.Errorf("updating deposition %d: %w", d.ID, err)
	}
	updated.client = d.client
	*d = updated
	fmt.Fprintf(os.Stderr, "Updated deposition at %s : %s\n", d.Links.HTML, d.Metadata.Title)
	return nil
}

// Refresh reloads the deposition's state from the API.
func (d *Deposition) Refresh(ctx context.Context) error {
	var fresh *Deposition
	var err error
	if d.State == "draft" {
		fresh = &Deposition{}
		err = d.client.request(ctx, "GET", d.Links.Self, nil, nil, "", fresh)
	} else {
		fresh, err = d.client.GetDeposition(ctx, d.ID)
	}
	if err != nil {
		return fmt.Errorf("refreshing deposition %d: %w", d.ID, err)
	}
	fresh.client = d.client
	*d = *fresh
	return nil
}
