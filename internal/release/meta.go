package release

import (
	"fmt"
	"strconv"
	"strings"
)

// Meta identifies a release and the history range that defines it: the
// branch being released and the prior cut points whose pull requests must
// not be re-attributed.
type Meta struct {
	Release      string
	MergeBases   []string
	TargetBranch string
}

// FromVersion builds comprehensive release metadata for major.minor.patch,
// including every author since the previous release split off. A negative
// patch marks a development release 0.major.minor.
func FromVersion(major, minor, patch int) Meta {
	var prev string
	if patch < 0 {
		prev = fmt.Sprintf("0.%d.0", major)
		major, minor, patch = 0, major, minor
	} else {
		prev = fmt.Sprintf("%d.%d.0", major, minor)
	}
	rel := fmt.Sprintf("%d.%d.%d", major, minor, patch)
	return Meta{
		Release:      rel,
		MergeBases:   []string{"v" + prev + "-dev^"},
		TargetBranch: "v" + rel,
	}
}

// AsVersion returns the release string as an integer tuple, or nil when no
// release is set.
func (m Meta) AsVersion() []int {
	if m.Release == "" {
		return nil
	}
	parts := strings.Split(m.Release, ".")
	version := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil
		}
		version[i] = n
	}
	return version
}

// IsMajor reports whether the release starts a new series (all trailing
// components zero). A leading zero marks a development series and is
// stripped before the check.
func (m Meta) IsMajor() bool {
	version := m.AsVersion()
	if version == nil {
		return false
	}
	if version[0] == 0 {
		version = version[1:]
	}
	for _, x := range version[1:] {
		if x != 0 {
			return false
		}
	}
	return true
}
