// Package release turns raw commit history into the set of merged pull
// requests that belong to a release, and aggregates per-contributor credit
// and per-category summaries over that set.
//
// The resolver walks first-parent history between a release's merge base
// and its target branch, extracting pull request numbers from commit
// subjects (squash-merge and merge-commit conventions, plus a manual
// override table for hand-edited subjects). Pull requests already released
// through an earlier cut point are excluded.
package release
