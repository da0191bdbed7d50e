package release

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
)

// History is the slice of version-control queries the resolver needs.
type History interface {
	// MergeBase returns the most recent common ancestor of two refs.
	MergeBase(a, b string) (string, error)
	// LogSubjects returns first-parent commit subjects in start..stop,
	// newest first.
	LogSubjects(start, stop string) ([]string, error)
}

var (
	squashSubjectRe = regexp.MustCompile(`\(#(\d+)\)$`)
	mergeSubjectRe  = regexp.MustCompile(`^Merge pull request #(\d+)`)
)

// SubjectPR extracts a pull request number from a commit subject: the
// trailing "(#N)" squash-merge convention first, then the leading
// "Merge pull request #N" form, then an exact-subject override table for
// hand-edited subjects.
func SubjectPR(subject string, overrides map[string]int) (int, bool) {
	for _, re := range []*regexp.Regexp{squashSubjectRe, mergeSubjectRe} {
		if m := re.FindStringSubmatch(subject); m != nil {
			id, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			return id, true
		}
	}
	if id, ok := overrides[subject]; ok {
		return id, true
	}
	return 0, false
}

// parsePulls extracts pull request numbers from log subjects, preserving
// order. Subjects with no resolvable number are reported and skipped: merge
// commits and direct pushes can legitimately lack one.
func parsePulls(subjects []string, overrides map[string]int) []int {
	var ids []int
	for _, s := range subjects {
		if s == "" {
			continue
		}
		id, ok := SubjectPR(s, overrides)
		if !ok {
			fmt.Fprintf(os.Stderr, "Cannot match log subject to a pull request: %s\n", s)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// ResolvePulls computes the pull requests belonging to a release, oldest
// first, with every pull already released through a merge-base cut point
// removed and duplicates dropped.
func ResolvePulls(h History, meta Meta, overrides map[string]int) ([]int, error) {
	if len(meta.MergeBases) == 0 {
		return nil, fmt.Errorf("release %s has no merge-base references", meta.Release)
	}

	exclude := make(map[int]bool)
	for _, ref := range meta.MergeBases {
		mb, err := h.MergeBase(meta.TargetBranch, ref)
		if err != nil {
			return nil, err
		}
		subjects, err := h.LogSubjects(mb, ref)
		if err != nil {
			return nil, err
		}
		for _, id := range parsePulls(subjects, overrides) {
			exclude[id] = true
		}
	}

	lower, err := h.MergeBase(meta.TargetBranch, meta.MergeBases[0])
	if err != nil {
		return nil, err
	}
	subjects, err := h.LogSubjects(lower, meta.TargetBranch)
	if err != nil {
		return nil, err
	}
	ids := parsePulls(subjects, overrides)

	// The log is newest-first: walk it backwards for chronological order.
	seen := make(map[int]bool)
	var pulls []int
	for i := len(ids) - 1; i >= 0; i-- {
		id := ids[i]
		if exclude[id] || seen[id] {
			continue
		}
		seen[id] = true
		pulls = append(pulls, id)
	}
	return pulls, nil
}
