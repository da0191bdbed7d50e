package tracker

import "time"

// User is a GitHub account.
type User struct {
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Label is an issue or pull-request label.
type Label struct {
	Name string `json:"name"`
}

// Pull is a pull request as returned by the tracker.
type Pull struct {
	Number         int       `json:"number"`
	Title          string    `json:"title"`
	User           User      `json:"user"`
	Labels         []Label   `json:"labels"`
	MergedAt       time.Time `json:"merged_at"`
	MergeCommitSHA string    `json:"merge_commit_sha"`
}

// Author returns the login of the pull request author.
func (p *Pull) Author() string {
	return p.User.Login
}

// LabelNames returns the names of all labels on the pull request.
func (p *Pull) LabelNames() []string {
	names := make([]string, len(p.Labels))
	for i, l := range p.Labels {
		names[i] = l.Name
	}
	return names
}

// Review is a single pull-request review.
type Review struct {
	User  User   `json:"user"`
	State string `json:"state"`
}

// Issue is a tracker issue.
type Issue struct {
	Number int     `json:"number"`
	Title  string  `json:"title"`
	State  string  `json:"state"`
	User   User    `json:"user"`
	Labels []Label `json:"labels"`
}

// Team is an organization team.
type Team struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Asset is a file attached to a release.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Release is a tracker release.
type Release struct {
	ID          int64     `json:"id"`
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	Body        string    `json:"body"`
	Draft       bool      `json:"draft"`
	HTMLURL     string    `json:"html_url"`
	TarballURL  string    `json:"tarball_url"`
	UploadURL   string    `json:"upload_url"`
	PublishedAt time.Time `json:"published_at"`
	Assets      []Asset   `json:"assets"`
}
