package release

import (
	"context"
	"sort"

	"github.com/dshills/relnote/internal/tracker"
)

// PullSource supplies pull-request detail for aggregation. *tracker.Client
// satisfies it.
type PullSource interface {
	Pull(ctx context.Context, id int) (*tracker.Pull, error)
	Reviews(ctx context.Context, id int) ([]tracker.Review, error)
}

// Credit is one contributor's tally.
type Credit struct {
	Login string
	Count int
}

// Contributions holds authoring and reviewing tallies, each ordered by
// descending count.
type Contributions struct {
	Authors   []Credit
	Reviewers []Credit
}

// tally counts per-login events, remembering first-appearance order so that
// equal counts sort stably.
type tally struct {
	counts map[string]int
	order  []string
}

func newTally() *tally {
	return &tally{counts: make(map[string]int)}
}

func (t *tally) add(login string) {
	if _, ok := t.counts[login]; !ok {
		t.order = append(t.order, login)
	}
	t.counts[login]++
}

func (t *tally) sorted() []Credit {
	credits := make([]Credit, 0, len(t.order))
	for _, login := range t.order {
		credits = append(credits, Credit{Login: login, Count: t.counts[login]})
	}
	sort.SliceStable(credits, func(i, j int) bool {
		return credits[i].Count > credits[j].Count
	})
	return credits
}

// Counter accumulates author and reviewer credit across pull requests.
// Callers must pass each pull request once; the resolved pull set already
// guarantees uniqueness.
type Counter struct {
	src       PullSource
	authors   *tally
	reviewers *tally
}

// NewCounter creates a Counter reading pull detail from src.
func NewCounter(src PullSource) *Counter {
	return &Counter{src: src, authors: newTally(), reviewers: newTally()}
}

// Add folds one pull request's author and approving reviewers into the
// tallies. A reviewer is any distinct login with an APPROVED review, minus
// the author reviewing their own pull.
func (c *Counter) Add(ctx context.Context, id int) error {
	p, err := c.src.Pull(ctx, id)
	if err != nil {
		return err
	}
	reviews, err := c.src.Reviews(ctx, id)
	if err != nil {
		return err
	}

	author := p.Author()
	c.authors.add(author)

	counted := make(map[string]bool)
	for _, r := range reviews {
		if r.State != "APPROVED" {
			continue
		}
		login := r.User.Login
		if login == author || counted[login] {
			continue
		}
		counted[login] = true
		c.reviewers.add(login)
	}
	return nil
}

// Sorted returns both tallies ordered by descending count.
func (c *Counter) Sorted() Contributions {
	return Contributions{
		Authors:   c.authors.sorted(),
		Reviewers: c.reviewers.sorted(),
	}
}
