package feed

import (
	"slices"
	"testing"

	"postdigest/internal/domain"
)

func TestGroupByPublisherFirstAppearanceOrder(t *testing.T) {
	posts := []domain.Post{
		{ID: "A", Publisher: "pub1"},
		{ID: "B", Publisher: "pub2"},
		{ID: "C", Publisher: "pub1"},
	}

	groups := GroupByPublisher(posts)

	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}

	if groups[0].Publisher != "pub1" || !slices.Equal(ids(groups[0].Posts), []string{"A", "C"}) {
		t.Fatalf("first group = %s %v", groups[0].Publisher, ids(groups[0].Posts))
	}

	if groups[1].Publisher != "pub2" || !slices.Equal(ids(groups[1].Posts), []string{"B"}) {
		t.Fatalf("second group = %s %v", groups[1].Publisher, ids(groups[1].Posts))
	}
}

func TestGroupByPublisherDoesNotSort(t *testing.T) {
	posts := []domain.Post{
		{ID: "1", Publisher: "Zeta"},
		{ID: "2", Publisher: "Alpha"},
	}

	groups := GroupByPublisher(posts)
	if groups[0].Publisher != "Zeta" || groups[1].Publisher != "Alpha" {
		t.Fatalf("groups were reordered: %s, %s", groups[0].Publisher, groups[1].Publisher)
	}
}

func TestGroupByPublisherBlankName(t *testing.T) {
	groups := GroupByPublisher([]domain.Post{{ID: "1", Publisher: "  "}})
	if groups[0].Publisher != domain.UnknownPublisher {
		t.Fatalf("Publisher = %q", groups[0].Publisher)
	}
}

func TestGroupByPublisherEmpty(t *testing.T) {
	if groups := GroupByPublisher(nil); len(groups) != 0 {
		t.Fatalf("expected no groups, got %d", len(groups))
	}
}
