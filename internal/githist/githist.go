package githist

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Repo queries the history of a local git checkout. An empty Dir uses the
// current working directory.
type Repo struct {
	Dir string
}

// LogSubjects returns the first-parent commit subject lines in start..stop,
// newest first as emitted by git log. An empty start spans the whole
// history reachable from stop.
func (r *Repo) LogSubjects(start, stop string) ([]string, error) {
	span := stop
	if start != "" {
		span = start + ".." + stop
	}
	out, err := r.git("log", "--first-parent", "--format=%s", span)
	if err != nil {
		return nil, fmt.Errorf("git log %s: %w", span, err)
	}
	out = strings.TrimRight(out, "\n")
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// MergeBase returns the most recent common ancestor of two refs.
func (r *Repo) MergeBase(a, b string) (string, error) {
	out, err := r.git("merge-base", a, b)
	if err != nil {
		return "", fmt.Errorf("git merge-base %s %s: %w", a, b, err)
	}
	return strings.TrimSpace(out), nil
}

// RevParse resolves a ref to its full commit hash.
func (r *Repo) RevParse(ref string) (string, error) {
	out, err := r.git("rev-parse", ref)
	if err != nil {
		return "", fmt.Errorf("git rev-parse %s: %w", ref, err)
	}
	return strings.TrimSpace(out), nil
}

// Renames returns the (old, new) path pairs renamed between two refs.
// Non-rename entries in the diff are reported and skipped.
func (r *Repo) Renames(oldRef, newRef string) ([][2]string, error) {
	fields, err := r.gitz("diff", "--name-status", oldRef, newRef)
	if err != nil {
		return nil, fmt.Errorf("git diff --name-status %s %s: %w", oldRef, newRef, err)
	}

	var pairs [][2]string
	for i := 0; i < len(fields); {
		status := fields[i]
		if strings.HasPrefix(status, "R") && i+2 < len(fields) {
			pairs = append(pairs, [2]string{fields[i+1], fields[i+2]})
			i += 3
			continue
		}
		if i+1 < len(fields) {
			fmt.Fprintf(os.Stderr, "Warning: not a rename: %s, %s\n", status, fields[i+1])
		}
		i += 2
	}
	return pairs, nil
}

// LsTree returns every path in the tree at ref, recursively.
func (r *Repo) LsTree(ref string) ([]string, error) {
	names, err := r.gitz("ls-tree", "-r", "--name-only", ref)
	if err != nil {
		return nil, fmt.Errorf("git ls-tree %s: %w", ref, err)
	}
	return names, nil
}

func (r *Repo) git(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), fmt.Errorf("%s: %s", err, string(exitErr.Stderr))
		}
		return "", err
	}
	return string(out), nil
}

// gitz runs a git subcommand with NUL-delimited output and returns the
// non-empty fields.
func (r *Repo) gitz(subcommand string, args ...string) ([]string, error) {
	out, err := r.git(append([]string{subcommand, "-z"}, args...)...)
	if err != nil {
		return nil, err
	}
	var fields []string
	for _, f := range strings.Split(out, "\x00") {
		if f != "" {
			fields = append(fields, f)
		}
	}
	return fields, nil
}
