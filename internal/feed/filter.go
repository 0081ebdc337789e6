package feed

import (
	"time"

	"postdigest/internal/domain"
)

const DefaultWindow = 200 * time.Hour

type ExclusionChecker interface {
	Contains(id string) bool
}

// FilterWindow keeps posts published within [now-window, now], both ends
// inclusive.
func FilterWindow(posts []domain.Post, now time.Time, window time.Duration) []domain.Post {
	if window <= 0 {
		window = DefaultWindow
	}

	cutoff := now.Add(-window)
	kept := make([]domain.Post, 0, len(posts))

	for _, post := range posts {
		if post.PostedAt.Before(cutoff) || post.PostedAt.After(now) {
			continue
		}

		kept = append(kept, post)
	}

	return kept
}

func FilterExcluded(posts []domain.Post, excluded ExclusionChecker) []domain.Post {
	kept := make([]domain.Post, 0, len(posts))

	for _, post := range posts {
		if excluded != nil && excluded.Contains(post.ID) {
			continue
		}

		kept = append(kept, post)
	}

	return kept
}
