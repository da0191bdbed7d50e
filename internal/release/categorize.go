package release

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Category pairs a recognized tracker label with its section heading.
type Category struct {
	Label string
	Title string
}

// Categories is the fixed, ordered list of recognized content categories.
// A pull request carrying two recognized labels is filed once, under
// whichever label appears first here.
var Categories = []Category{
	{"enhancement", "New features"},
	{"bug", "Bug fixes"},
	{"documentation", "Documentation improvements"},
	{"minor", "Minor internal changes"},
	{"removal", "Deprecation and removal"},
}

// PullSummary is the slice of pull-request detail the release notes need.
type PullSummary struct {
	ID       int
	Title    string
	Labels   []string
	Author   string
	MergedAt time.Time
	SHA      string
}

// ClassificationError reports a pull request whose labels match no
// recognized category. An unlabeled pull must block note generation rather
// than be silently omitted.
type ClassificationError struct {
	ID     int
	Title  string
	Labels []string
}

func (e *ClassificationError) Error() string {
	labels := "(no labels)"
	if len(e.Labels) > 0 {
		labels = strings.Join(e.Labels, ", ")
	}
	return fmt.Sprintf("missing category label on #%d (%s): %s", e.ID, e.Title, labels)
}

// SortedPulls buckets pull requests into content categories, preserving
// insertion order within each bucket.
type SortedPulls struct {
	src   PullSource
	pulls map[string][]PullSummary
}

// NewSortedPulls creates an index reading pull detail from src.
func NewSortedPulls(src PullSource) *SortedPulls {
	return &SortedPulls{src: src, pulls: make(map[string][]PullSummary)}
}

// Add fetches one pull request and files its summary under the first
// matching category. A pull with no recognized label is a hard error.
func (s *SortedPulls) Add(ctx context.Context, id int) error {
	p, err := s.src.Pull(ctx, id)
	if err != nil {
		return err
	}

	summary := PullSummary{
		ID: id,
		// Escape literal backticks so titles survive RST markup.
		Title:    strings.ReplaceAll(p.Title, "`", "``"),
		Labels:   p.LabelNames(),
		Author:   p.Author(),
		MergedAt: p.MergedAt,
		SHA:      shortSHA(p.MergeCommitSHA),
	}

	labels := make(map[string]bool, len(summary.Labels))
	for _, l := range summary.Labels {
		labels[l] = true
	}
	for _, cat := range Categories {
		if labels[cat.Label] {
			s.pulls[cat.Label] = append(s.pulls[cat.Label], summary)
			return nil
		}
	}
	return &ClassificationError{ID: id, Title: p.Title, Labels: summary.Labels}
}

// ByLabel returns the summaries filed under one category label.
func (s *SortedPulls) ByLabel(label string) []PullSummary {
	return s.pulls[label]
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
