package notes

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dshills/relnote/internal/release"
)

// headingStyle renders a section title at a given level.
type headingStyle func(title string, level int) []string

func markdownHeading(title string, level int) []string {
	return []string{strings.Repeat("#", level) + " " + title}
}

// rstHeading underlines the title with the character for its level
// (series, version, category).
func rstHeading(title string, level int) []string {
	char := "=-^~"[level]
	return []string{title, strings.Repeat(string(char), len(title)), ""}
}

// Builder accumulates release-note lines in one output format.
type Builder struct {
	heading headingStyle
	lines   []string
}

// NewMarkdown creates a Markdown note builder seeded with the release body
// text. Suitable for uploading as a tracker release description.
func NewMarkdown(body string) *Builder {
	b := &Builder{heading: markdownHeading}
	b.lines = append(b.lines, body)
	return b
}

// NewRST creates a reStructuredText note builder with the version preamble:
// a series heading for major releases, the release anchor, the version
// heading, and the release date. The project name keys the series citation.
func NewRST(meta release.Meta, project, body string, today time.Time) *Builder {
	b := &Builder{heading: rstHeading}

	if meta.IsMajor() {
		version := meta.AsVersion()
		major, minor := version[0], version[1]
		b.Title(fmt.Sprintf("Series %d.%d", major, minor), 0)
		b.Paragraph(fmt.Sprintf(
			"Major development version %d.%d can be referenced at :cite:t:`%s-%d-%d`.",
			major, minor, project, major, minor))
	}

	b.lines = append(b.lines,
		fmt.Sprintf(".. _release_v%s:", meta.Release),
		"",
	)
	b.Title("Version "+meta.Release, 1)
	b.lines = append(b.lines,
		fmt.Sprintf("*Released %s*", today.Format("2006/01/02")),
		body,
	)
	return b
}

// Title adds a section heading followed by a blank line.
func (b *Builder) Title(title string, level int) {
	b.lines = append(b.lines, b.heading(title, level)...)
	b.lines = append(b.lines, "")
}

// Paragraph adds text line by line, trimmed, followed by a blank line.
func (b *Builder) Paragraph(text string) {
	for _, line := range strings.Split(text, "\n") {
		b.lines = append(b.lines, strings.TrimSpace(line))
	}
	b.lines = append(b.lines, "")
}

// Itemize adds one bullet per item followed by a blank line.
func (b *Builder) Itemize(items []string, bullet string) {
	for _, item := range items {
		b.lines = append(b.lines, bullet+" "+item)
	}
	b.lines = append(b.lines, "")
}

// SortedPulls adds one section per non-empty category, in the fixed
// category order, crediting each pull's author and number.
func (b *Builder) SortedPulls(pulls *release.SortedPulls) {
	for _, cat := range release.Categories {
		prs := pulls.ByLabel(cat.Label)
		if len(prs) == 0 {
			continue
		}
		b.Title(cat.Title, 2)
		items := make([]string, len(prs))
		for i, pr := range prs {
			items[i] = fmt.Sprintf("%s *(@%s, #%d)*", pr.Title, pr.Author, pr.ID)
		}
		b.Itemize(items, "*")
	}
}

// Reviewers adds the reviewer tally with display names resolved through the
// user cache.
func (b *Builder) Reviewers(ctx context.Context, reviewers []release.Credit, users *UserCache) error {
	b.Title("Reviewers", 2)
	items := make([]string, 0, len(reviewers))
	for _, credit := range reviewers {
		info, err := users.Lookup(ctx, credit.Login)
		if err != nil {
			return err
		}
		items = append(items, fmt.Sprintf("%s *(@%s)*: %d", info.Name, credit.Login, credit.Count))
	}
	b.Itemize(items, "*")
	return nil
}

// ChangelogLine links the full compare view on the tracker.
func (b *Builder) ChangelogLine(owner, repo string, meta release.Meta) {
	b.lines = append(b.lines, fmt.Sprintf(
		"**Full Changelog**: https://github.com/%s/%s/compare/%s...v%s",
		owner, repo, meta.MergeBases[0], meta.Release))
}

// Write writes the accumulated notes to w.
func (b *Builder) Write(w io.Writer) error {
	for _, line := range b.lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) String() string {
	var sb strings.Builder
	_ = b.Write(&sb)
	return sb.String()
}
