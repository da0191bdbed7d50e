package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// defaultAPIURL targets the Zenodo sandbox; point at the production API via
// configuration once a release workflow has been rehearsed.
const defaultAPIURL = "https://sandbox.zenodo.org/api"

// Client talks to the Zenodo REST API.
type Client struct {
	apiURL  string
	token   string
	httpCli *http.Client
}

// New creates a Zenodo client. An empty apiURL targets the sandbox.
func New(apiURL, token string) *Client {
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	return &Client{
		apiURL:  strings.TrimRight(apiURL, "/"),
		token:   token,
		httpCli: &http.Client{Timeout: 120 * time.Second},
	}
}

// request performs one authenticated call. The access token travels as a
// query parameter, per the Zenodo API. Non-2xx responses become errors
// carrying the status and body.
func (c *Client) request(ctx context.Context, method, rawURL string, query url.Values, body io.Reader, contentType string, out any) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parsing URL %s: %w", rawURL, err)
	}
	q := u.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("access_token", c.token)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, rawURL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("zenodo API error (status %d): %s", resp.StatusCode, data)
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// requestJSON performs a call with a JSON payload.
func (c *Client) requestJSON(ctx context.Context, method, rawURL string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	return c.request(ctx, method, rawURL, nil, bytes.NewReader(data), "application/json", out)
}

// CreateDeposition creates a new deposition with the given metadata.
func (c *Client) CreateDeposition(ctx context.Context, metadata map[string]any) (*Deposition, error) {
	var d Deposition
	err := c.requestJSON(ctx, "POST", c.apiURL+"/deposit/depositions",
		map[string]any{"metadata": metadata}, &d)
	if err != nil {
		return nil, fmt.Errorf("creating deposition: %w", err)
	}
	d.client = c
	fmt.Fprintf(os.Stderr, "Created deposition %d at %s : %s\n", d.ID, d.Links.HTML, d.Metadata.Title)
	return &d, nil
}

// GetDeposition fetches a deposition by id.
func (c *Client) GetDeposition(ctx context.Context, id int64) (*Deposition, error) {
	var d Deposition
	err := c.request(ctx, "GET", fmt.Sprintf("%s/deposit/depositions/%d", c.apiURL, id),
		nil, nil, "", &d)
	if err != nil {
		return nil, fmt.Errorf("fetching deposition %d: %w", id, err)
	}
	d.client = c
	return &d, nil
}

// FindDeposition searches depositions by title. Only an exact title match
// is returned; inexact candidates are each reported with their link so the
// operator can pick one manually, and nil is returned rather than a guess.
func (c *Client) FindDeposition(ctx context.Context, title string) (*Deposition, error) {
	query := url.Values{}
	query.Set("q", title)
	query.Set("page", "1")
	query.Set("size", "100")

	var depositions []Deposition
	err := c.request(ctx, "GET", c.apiURL+"/deposit/depositions", query, nil, "", &depositions)
	if err != nil {
		return nil, fmt.Errorf("searching depositions: %w", err)
	}
	if len(depositions) == 0 {
		return nil, nil
	}

	for i := range depositions {
		if depositions[i].Metadata.Title == title {
			depositions[i].client = c
			return &depositions[i], nil
		}
	}

	fmt.Fprintf(os.Stderr, "No exact match for %s: found titles:\n", title)
	for _, d := range depositions {
		fmt.Fprintf(os.Stderr, "- %s: %s\n", d.Metadata.Title, d.Links.HTML)
	}
	return nil, nil
}

// Licenses returns the license records Zenodo reports, keyed by id. Only
// the first page is returned.
func (c *Client) Licenses(ctx context.Context) (map[string]any, error) {
	var hits struct {
		Hits struct {
			Hits []map[string]any `json:"hits"`
		} `json:"hits"`
	}
	if err := c.request(ctx, "GET", c.apiURL+"/licenses/", nil, nil, "", &hits); err != nil {
		return nil, fmt.Errorf("fetching licenses: %w", err)
	}
	licenses := make(map[string]any, len(hits.Hits.Hits))
	for _, item := range hits.Hits.Hits {
		if id, ok := item["id"].(string); ok {
			licenses[id] = item
		}
	}
	return licenses, nil
}

// ValidateLicense checks that Zenodo knows the license id before it is sent
// in deposition metadata, where a bad id only fails at publish time.
func (c *Client) ValidateLicense(ctx context.Context, id string) error {
	licenses, err := c.Licenses(ctx)
	if err != nil {
		return err
	}
	if _, ok := licenses[id]; !ok {
		return fmt.Errorf("unknown license %q", id)
	}
	return nil
}
