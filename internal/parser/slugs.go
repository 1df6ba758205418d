package parser

import "sort"

// SlugTracker records the slugs produced by one parse. A tracker is never
// shared between parses.
type SlugTracker struct {
	count map[string]int
}

// NewSlugTracker returns an empty tracker.
func NewSlugTracker() *SlugTracker {
	return &SlugTracker{count: map[string]int{}}
}

// Register records slug.
func (t *SlugTracker) Register(slug string) {
	t.count[slug]++
}

// Duplicates returns, sorted, every slug registered more than once.
func (t *SlugTracker) Duplicates() []string {
	var dups []string
	for slug, n := range t.count {
		if n > 1 {
			dups = append(dups, slug)
		}
	}
	sort.Strings(dups)
	return dups
}
