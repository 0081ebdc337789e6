package session

import (
	"errors"
	"maps"
	"time"

	"postdigest/internal/domain"
)

var ErrUnknownPost = errors.New("unknown post")

// State is the operator session: the visible posts, the operator's
// inclusion decisions, the exclusion set and the summaries of the current
// posts. It is not safe for concurrent use; callers serialize access.
type State struct {
	posts     []domain.Post
	index     map[string]int
	excluded  *ExclusionSet
	summaries map[string]domain.Summary
	// included holds every inclusion decision of the session by post ID.
	// It outlives the visible posts, so an empty or failed fetch does not
	// reset it.
	included    map[string]bool
	refreshedAt time.Time
}

func New() *State {
	return &State{
		index:     make(map[string]int),
		excluded:  NewExclusionSet(),
		summaries: make(map[string]domain.Summary),
		included:  make(map[string]bool),
	}
}

// Replace swaps the visible posts for a freshly fetched batch. Each post
// takes the operator's decision recorded for its ID, IDs never toggled
// start included. Summaries of posts that are gone or whose text changed
// are dropped.
func (s *State) Replace(posts []domain.Post, at time.Time) {
	next := make([]domain.Post, 0, len(posts))
	index := make(map[string]int, len(posts))
	summaries := make(map[string]domain.Summary, len(posts))

	for _, post := range posts {
		if s.excluded.Contains(post.ID) {
			continue
		}

		if _, dup := index[post.ID]; dup {
			continue
		}

		post.Included = true
		if included, ok := s.included[post.ID]; ok {
			post.Included = included
		}

		if i, ok := s.index[post.ID]; ok {
			if summary, found := s.summaries[post.ID]; found && s.posts[i].Text == post.Text {
				summaries[post.ID] = summary
			}
		}

		index[post.ID] = len(next)
		next = append(next, post)
	}

	s.posts = next
	s.index = index
	s.summaries = summaries
	s.refreshedAt = at
}

// Posts returns a copy of the visible posts in fetch order.
func (s *State) Posts() []domain.Post {
	out := make([]domain.Post, len(s.posts))
	copy(out, s.posts)

	return out
}

func (s *State) Post(id string) (domain.Post, bool) {
	i, ok := s.index[id]
	if !ok {
		return domain.Post{}, false
	}

	return s.posts[i], true
}

func (s *State) SetIncluded(id string, included bool) error {
	i, ok := s.index[id]
	if !ok {
		return ErrUnknownPost
	}

	s.posts[i].Included = included
	s.included[id] = included

	return nil
}

// Exclude adds id to the exclusion set and removes the post from the view.
// It reports whether the ID was newly excluded.
func (s *State) Exclude(id string) bool {
	added := s.excluded.Add(id)

	if _, ok := s.index[id]; ok {
		s.Replace(s.posts, s.refreshedAt)
	}

	return added
}

func (s *State) Excluded() *ExclusionSet {
	return s.excluded
}

func (s *State) SetSummary(id string, summary domain.Summary) {
	if _, ok := s.index[id]; !ok {
		return
	}

	s.summaries[id] = summary
}

func (s *State) Summary(id string) (domain.Summary, bool) {
	summary, ok := s.summaries[id]

	return summary, ok
}

// Summaries returns a copy of the summaries keyed by post ID.
func (s *State) Summaries() map[string]domain.Summary {
	return maps.Clone(s.summaries)
}

func (s *State) IncludedCount() int {
	n := 0
	for _, post := range s.posts {
		if post.Included {
			n++
		}
	}

	return n
}

func (s *State) RefreshedAt() time.Time {
	return s.refreshedAt
}
