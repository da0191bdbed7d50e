package notes

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dshills/relnote/internal/release"
	"github.com/dshills/relnote/internal/tracker"
)

// fakePulls serves canned pull requests by number.
type fakePulls map[int]*tracker.Pull

func (f fakePulls) Pull(_ context.Context, id int) (*tracker.Pull, error) {
	return f[id], nil
}

func (f fakePulls) Reviews(context.Context, int) ([]tracker.Review, error) {
	return nil, nil
}

func labeled(title, author string, labels ...string) *tracker.Pull {
	p := &tracker.Pull{Title: title, User: tracker.User{Login: author}}
	for _, l := range labels {
		p.Labels = append(p.Labels, tracker.Label{Name: l})
	}
	return p
}

func sortedPulls(t *testing.T, src fakePulls, ids ...int) *release.SortedPulls {
	t.Helper()
	pulls := release.NewSortedPulls(src)
	for _, id := range ids {
		if err := pulls.Add(context.Background(), id); err != nil {
			t.Fatalf("Add(%d): %v", id, err)
		}
	}
	return pulls
}

func TestMarkdownSortedPulls(t *testing.T) {
	src := fakePulls{
		10: labeled("Add widget", "alice", "enhancement"),
		11: labeled("Fix crash", "bob", "bug"),
		12: labeled("Speed up widget", "alice", "enhancement"),
	}

	b := NewMarkdown("Release body.")
	b.SortedPulls(sortedPulls(t, src, 10, 11, 12))
	got := b.String()

	want := `Release body.
## New features

* Add widget *(@alice, #10)*
* Speed up widget *(@alice, #12)*

## Bug fixes

* Fix crash *(@bob, #11)*

`
	if got != want {
		t.Errorf("notes mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestMarkdownSkipsEmptyCategories(t *testing.T) {
	src := fakePulls{10: labeled("Fix docs", "alice", "documentation")}

	b := NewMarkdown("")
	b.SortedPulls(sortedPulls(t, src, 10))

	got := b.String()
	if strings.Contains(got, "New features") || strings.Contains(got, "Bug fixes") {
		t.Errorf("empty categories rendered:\n%s", got)
	}
	if !strings.Contains(got, "## Documentation improvements") {
		t.Errorf("missing documentation section:\n%s", got)
	}
}

func TestRSTPreamble(t *testing.T) {
	meta := release.Meta{Release: "2.0.0", MergeBases: []string{"abc"}}
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	got := NewRST(meta, "celeritas", "Body text.", day).String()

	for _, want := range []string{
		"Series 2.0\n==========\n",
		":cite:t:`celeritas-2-0`",
		".. _release_v2.0.0:",
		"Version 2.0.0\n-------------\n",
		"*Released 2026/03/14*",
		"Body text.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("notes should contain %q:\n%s", want, got)
		}
	}
}

func TestRSTPatchReleaseHasNoSeriesHeading(t *testing.T) {
	meta := release.Meta{Release: "2.1.3"}
	got := NewRST(meta, "celeritas", "", time.Now()).String()

	if strings.Contains(got, "Series") {
		t.Errorf("patch release should not start a series:\n%s", got)
	}
}

func TestRSTCategoryUnderline(t *testing.T) {
	src := fakePulls{10: labeled("Fix crash", "bob", "bug")}

	b := NewRST(release.Meta{Release: "1.0.1"}, "celeritas", "", time.Now())
	b.SortedPulls(sortedPulls(t, src, 10))

	if got := b.String(); !strings.Contains(got, "Bug fixes\n^^^^^^^^^\n") {
		t.Errorf("category heading not underlined:\n%s", got)
	}
}

func TestReviewers(t *testing.T) {
	users, err := NewUserCache(fakeUsers{
		"carol": {Login: "carol", Name: "Carol Jones"},
		"dave":  {Login: "dave"},
	}, "")
	if err != nil {
		t.Fatalf("NewUserCache: %v", err)
	}

	b := NewMarkdown("")
	err = b.Reviewers(context.Background(), []release.Credit{
		{Login: "carol", Count: 3},
		{Login: "dave", Count: 1},
	}, users)
	if err != nil {
		t.Fatalf("Reviewers: %v", err)
	}

	got := b.String()
	for _, want := range []string{
		"## Reviewers",
		"* Carol Jones *(@carol)*: 3",
		"* dave *(@dave)*: 1",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("notes should contain %q:\n%s", want, got)
		}
	}
}

func TestChangelogLine(t *testing.T) {
	b := NewMarkdown("")
	b.ChangelogLine("celeritas-project", "celeritas",
		release.Meta{Release: "1.2.0", MergeBases: []string{"v1.1.0-dev^"}})

	want := "**Full Changelog**: https://github.com/celeritas-project/celeritas/compare/v1.1.0-dev^...v1.2.0"
	if got := b.String(); !strings.Contains(got, want) {
		t.Errorf("notes should contain %q:\n%s", want, got)
	}
}
