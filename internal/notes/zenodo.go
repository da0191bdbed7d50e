package notes

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/dshills/relnote/internal/release"
	"github.com/dshills/relnote/internal/tracker"
)

// TeamRole maps an organization team slug to its archival contributor role.
type TeamRole struct {
	Slug string
	Role string
}

// TeamRoles lists the organization teams credited in the deposition,
// ordered by seniority.
var TeamRoles = []TeamRole{
	{Slug: "code-lead", Role: "ProjectManager"},
	{Slug: "core-advisor", Role: "ProjectLeader"},
	{Slug: "core", Role: "ProjectMember"},
}

// TeamSource lists organization teams and their members.
type TeamSource interface {
	Teams(ctx context.Context, org string) ([]tracker.Team, error)
	TeamMembers(ctx context.Context, slug, org string) ([]tracker.User, error)
}

// ZenodoMetaBuilder assembles the deposition metadata for one release.
type ZenodoMetaBuilder struct {
	Project   string
	Org       string
	Community string
	RepoURL   string
	Users     *UserCache
	Teams     TeamSource
}

// person renders one contributor entry, attaching affiliation and ORCID
// when the user file provides them.
func person(info UserInfo, role string) map[string]any {
	entry := map[string]any{"name": info.Name}
	if info.Institute != "" {
		entry["affiliation"] = info.Institute
	}
	if info.ORCID != "" {
		entry["orcid"] = info.ORCID
	}
	if role != "" {
		entry["type"] = role
	}
	return entry
}

// descriptionHTML renders the release body Markdown as HTML for the
// deposition description field.
func descriptionHTML(body string) (string, error) {
	src := strings.ReplaceAll(body, "\r\n", "\n")
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("rendering description: %w", err)
	}
	return buf.String(), nil
}

// Build produces the deposition metadata for a published release: the
// pull-request authors as creators, the reviewers and organization teams
// as contributors, and the release body as the description.
func (zb *ZenodoMetaBuilder) Build(ctx context.Context, meta release.Meta, contribs release.Contributions, rel *tracker.Release) (map[string]any, error) {
	creators := make([]map[string]any, 0, len(contribs.Authors))
	for _, credit := range contribs.Authors {
		info, err := zb.Users.Lookup(ctx, credit.Login)
		if err != nil {
			return nil, err
		}
		creators = append(creators, person(info, ""))
	}

	contributors := make([]map[string]any, 0, len(contribs.Reviewers))
	for _, credit := range contribs.Reviewers {
		info, err := zb.Users.Lookup(ctx, credit.Login)
		if err != nil {
			return nil, err
		}
		contributors = append(contributors, person(info, "Editor"))
	}

	teamRoles, err := zb.teamContributors(ctx)
	if err != nil {
		return nil, err
	}
	contributors = append(contributors, teamRoles...)

	description, err := descriptionHTML(rel.Body)
	if err != nil {
		return nil, err
	}

	metadata := map[string]any{
		"upload_type":       "software",
		"title":             fmt.Sprintf("%s v%s", zb.Project, meta.Release),
		"version":           meta.Release,
		"description":       description,
		"creators":          creators,
		"contributors":      contributors,
		"imprint_publisher": "Github",
		"license":           "apache2.0",
		"custom": map[string]any{
			"code:codeRepository": zb.RepoURL,
		},
	}
	if zb.Community != "" {
		metadata["communities"] = []map[string]any{{"identifier": zb.Community}}
	}
	if !rel.PublishedAt.IsZero() {
		metadata["publication_date"] = rel.PublishedAt.Format(time.DateOnly)
	}
	return metadata, nil
}

// teamContributors credits the members of each role-bearing organization
// team, in role order.
func (zb *ZenodoMetaBuilder) teamContributors(ctx context.Context) ([]map[string]any, error) {
	if zb.Teams == nil || zb.Org == "" {
		return nil, nil
	}
	teams, err := zb.Teams.Teams(ctx, zb.Org)
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	known := make(map[string]bool, len(teams))
	for _, team := range teams {
		known[team.Slug] = true
	}

	var entries []map[string]any
	for _, tr := range TeamRoles {
		if !known[tr.Slug] {
			continue
		}
		members, err := zb.Teams.TeamMembers(ctx, tr.Slug, zb.Org)
		if err != nil {
			return nil, fmt.Errorf("listing %s members: %w", tr.Slug, err)
		}
		for _, member := range members {
			info, err := zb.Users.Lookup(ctx, member.Login)
			if err != nil {
				return nil, err
			}
			entries = append(entries, person(info, tr.Role))
		}
	}
	return entries, nil
}
