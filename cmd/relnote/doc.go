// Relnote assembles release notes for GitHub projects from git history and
// tracker metadata.
//
// It resolves the pull requests merged into a release, categorizes them by
// label, renders Markdown or reStructuredText notes, creates draft tracker
// releases, and pushes published releases to a Zenodo archive.
//
// Usage:
//
//	relnote notes 1.2.0                  # render Markdown notes
//	relnote notes 1.2.0 --format rst     # render documentation appendix
//	relnote contributors 1.2.0           # tally authors and reviewers
//	relnote release create 1.2.0         # create a draft tracker release
//	relnote archive push 1.2.0           # deposit the release archive
//	relnote cache show                   # inspect the API response cache
//
// See https://github.com/dshills/relnote for full documentation.
package main
