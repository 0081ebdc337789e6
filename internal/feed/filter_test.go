package feed

import (
	"slices"
	"testing"
	"time"

	"postdigest/internal/domain"
)

type setChecker map[string]bool

func (s setChecker) Contains(id string) bool { return s[id] }

func ids(posts []domain.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

func TestFilterWindowBoundaryInclusive(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	window := 200 * time.Hour

	posts := []domain.Post{
		{ID: "boundary", PostedAt: now.Add(-window)},
		{ID: "too-old", PostedAt: now.Add(-window - time.Second)},
		{ID: "now", PostedAt: now},
		{ID: "future", PostedAt: now.Add(time.Second)},
		{ID: "recent", PostedAt: now.Add(-time.Hour)},
	}

	got := ids(FilterWindow(posts, now, window))
	want := []string{"boundary", "now", "recent"}

	if !slices.Equal(got, want) {
		t.Fatalf("FilterWindow = %v, want %v", got, want)
	}
}

func TestFilterWindowDefaultsWindow(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	posts := []domain.Post{
		{ID: "a", PostedAt: now.Add(-199 * time.Hour)},
		{ID: "b", PostedAt: now.Add(-201 * time.Hour)},
	}

	if got := ids(FilterWindow(posts, now, 0)); !slices.Equal(got, []string{"a"}) {
		t.Fatalf("FilterWindow = %v", got)
	}
}

func TestFilterExcludedIdempotent(t *testing.T) {
	posts := []domain.Post{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	excluded := setChecker{"b": true}

	once := FilterExcluded(posts, excluded)
	twice := FilterExcluded(once, excluded)

	if !slices.Equal(ids(once), []string{"a", "c"}) {
		t.Fatalf("FilterExcluded = %v", ids(once))
	}

	if !slices.Equal(ids(once), ids(twice)) {
		t.Fatalf("second pass changed result: %v vs %v", ids(once), ids(twice))
	}
}

func TestFilterExcludedNilChecker(t *testing.T) {
	posts := []domain.Post{{ID: "a"}}

	if got := FilterExcluded(posts, nil); len(got) != 1 {
		t.Fatalf("expected nil checker to keep everything, got %v", ids(got))
	}
}
