package feed

import (
	"strings"

	"postdigest/internal/domain"
)

// GroupByPublisher buckets posts by publisher. Groups follow the order in
// which each publisher first appears and posts keep their input order.
func GroupByPublisher(posts []domain.Post) []domain.Group {
	var groups []domain.Group
	index := make(map[string]int)

	for _, post := range posts {
		publisher := strings.TrimSpace(post.Publisher)
		if publisher == "" {
			publisher = domain.UnknownPublisher
		}

		i, ok := index[publisher]
		if !ok {
			i = len(groups)
			index[publisher] = i
			groups = append(groups, domain.Group{Publisher: publisher})
		}

		groups[i].Posts = append(groups[i].Posts, post)
	}

	return groups
}
