package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v74/github"

	"github.com/dshills/relnote/internal/apicache"
)

// Client reads from the GitHub API for one owner/repo, memoizing every read
// through the response cache.
type Client struct {
	gh      *github.Client
	httpCli *http.Client
	cache   *apicache.Cache
	owner   string
	repo    string
	token   string
}

// New creates a tracker client. An empty token makes unauthenticated
// requests, which is enough for public repositories (at a lower rate limit).
func New(owner, repo, token string, cache *apicache.Cache) *Client {
	gh := github.NewClient(nil)
	if token != "" {
		gh = gh.WithAuthToken(token)
	}
	return &Client{
		gh:      gh,
		httpCli: &http.Client{Timeout: 60 * time.Second},
		cache:   cache,
		owner:   owner,
		repo:    repo,
		token:   token,
	}
}

// Owner returns the repository owner.
func (c *Client) Owner() string { return c.owner }

// Repo returns the repository name.
func (c *Client) Repo() string { return c.repo }

// fetchInto runs call through the cache and decodes the stored plain-data
// response into out.
func (c *Client) fetchInto(category, key string, call func() (any, error), out any) error {
	raw, err := c.cache.Fetch(category, key, call)
	if err != nil {
		return err
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("re-encoding cached %s response: %w", category, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding cached %s response: %w", category, err)
	}
	return nil
}

// Issue fetches one issue.
func (c *Client) Issue(ctx context.Context, id int) (*Issue, error) {
	var issue Issue
	err := c.fetchInto("issue", apicache.Key([]any{id}, nil), func() (any, error) {
		is, _, err := c.gh.Issues.Get(ctx, c.owner, c.repo, id)
		return is, err
	}, &issue)
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

// Pull fetches one pull request.
func (c *Client) Pull(ctx context.Context, id int) (*Pull, error) {
	var pull Pull
	err := c.fetchInto("pull", apicache.Key([]any{id}, nil), func() (any, error) {
		pr, _, err := c.gh.PullRequests.Get(ctx, c.owner, c.repo, id)
		return pr, err
	}, &pull)
	if err != nil {
		return nil, err
	}
	return &pull, nil
}

// Reviews fetches all reviews on a pull request.
func (c *Client) Reviews(ctx context.Context, id int) ([]Review, error) {
	var reviews []Review
	err := c.fetchInto("reviews", apicache.Key([]any{id}, nil), func() (any, error) {
		rs, _, err := c.gh.PullRequests.ListReviews(ctx, c.owner, c.repo, id, nil)
		return rs, err
	}, &reviews)
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// User fetches a user by login.
func (c *Client) User(ctx context.Context, login string) (*User, error) {
	var user User
	err := c.fetchInto("user", apicache.Key([]any{login}, nil), func() (any, error) {
		u, _, err := c.gh.Users.Get(ctx, login)
		return u, err
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// TeamMembers fetches the members of an organization team by slug. An empty
// org defaults to the repository owner.
func (c *Client) TeamMembers(ctx context.Context, slug, org string) ([]User, error) {
	if org == "" {
		org = c.owner
	}
	var members []User
	err := c.fetchInto("team", apicache.Key([]any{slug}, map[string]any{"org": org}), func() (any, error) {
		us, _, err := c.gh.Teams.ListTeamMembersBySlug(ctx, org, slug, nil)
		return us, err
	}, &members)
	if err != nil {
		return nil, err
	}
	return members, nil
}

// Teams lists the organization's teams.
func (c *Client) Teams(ctx context.Context, org string) ([]Team, error) {
	if org == "" {
		org = c.owner
	}
	var teams []Team
	err := c.fetchInto("teams", apicache.Key([]any{org}, nil), func() (any, error) {
		ts, _, err := c.gh.Teams.ListTeams(ctx, org, nil)
		return ts, err
	}, &teams)
	if err != nil {
		return nil, err
	}
	return teams, nil
}

// Labels fetches the labels on an issue or pull request.
func (c *Client) Labels(ctx context.Context, id int) ([]Label, error) {
	var labels []Label
	key := apicache.Key([]any{id}, map[string]any{"owner": c.owner, "repo": c.repo})
	err := c.fetchInto("labels", key, func() (any, error) {
		ls, _, err := c.gh.Issues.ListLabelsByIssue(ctx, c.owner, c.repo, id, nil)
		return ls, err
	}, &labels)
	if err != nil {
		return nil, err
	}
	return labels, nil
}

// OrgMembers lists the members of an organization. An empty org defaults to
// the repository owner.
func (c *Client) OrgMembers(ctx context.Context, org string) ([]User, error) {
	if org == "" {
		org = c.owner
	}
	var members []User
	err := c.fetchInto("org_members", apicache.Key([]any{org}, nil), func() (any, error) {
		us, _, err := c.gh.Organizations.ListMembers(ctx, org, nil)
		return us, err
	}, &members)
	if err != nil {
		return nil, err
	}
	return members, nil
}

// Get performs a generic authenticated GET against an arbitrary API path,
// memoized like every other read.
func (c *Client) Get(ctx context.Context, path string) (any, error) {
	return c.cache.Fetch("get", apicache.Key([]any{path}, nil), func() (any, error) {
		req, err := c.gh.NewRequest("GET", path, nil)
		if err != nil {
			return nil, err
		}
		var out any
		if _, err := c.gh.Do(ctx, req, &out); err != nil {
			return nil, err
		}
		return out, nil
	})
}

// DownloadFile fetches a binary artifact through the content-addressed
// store: a URL already mapped to an existing local file is never fetched
// again.
func (c *Client) DownloadFile(ctx context.Context, fileURL, contentType, ext string) ([]byte, error) {
	return c.cache.DownloadFile(fileURL, func(u string) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
		if err != nil {
			return nil, err
		}
		if contentType != "" {
			req.Header.Set("Accept", contentType)
		}
		resp, err := c.httpCli.Do(req)
		if err != nil {
			return nil, fmt.Errorf("downloading %s: %w", u, err)
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("reading download: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("downloading %s: status %d: %s", u, resp.StatusCode, body)
		}
		return body, nil
	}, ext)
}

// expandUploadURL expands the {?name,label} URI template GitHub returns as
// a release's upload URL.
func expandUploadURL(tmpl, name string) string {
	if i := strings.IndexByte(tmpl, '{'); i >= 0 {
		tmpl = tmpl[:i]
	}
	return tmpl + "?name=" + url.QueryEscape(name)
}
