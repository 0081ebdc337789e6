package monitor

import (
	"time"

	"postdigest/internal/feed"
)

type PostView struct {
	ID       string    `json:"id"`
	Text     string    `json:"text"`
	Image    string    `json:"image,omitempty"`
	Link     string    `json:"link,omitempty"`
	PostedAt time.Time `json:"postedAt"`
	Included bool      `json:"included"`
	Title    string    `json:"title"`
	Synopsis string    `json:"synopsis"`
}

type GroupView struct {
	Publisher string     `json:"publisher"`
	Posts     []PostView `json:"posts"`
}

// View is a snapshot of the session for rendering.
type View struct {
	Groups        []GroupView `json:"groups"`
	PostCount     int         `json:"postCount"`
	IncludedCount int         `json:"includedCount"`
	ExcludedCount int         `json:"excludedCount"`
	ExcludedIDs   []string    `json:"excludedIds"`
	RefreshedAt   time.Time   `json:"refreshedAt"`
	WindowHours   float64     `json:"windowHours"`
}

func (m *Monitor) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()

	posts := m.state.Posts()
	groups := feed.GroupByPublisher(posts)

	view := View{
		Groups:        make([]GroupView, 0, len(groups)),
		PostCount:     len(posts),
		IncludedCount: m.state.IncludedCount(),
		ExcludedCount: m.state.Excluded().Len(),
		ExcludedIDs:   m.state.Excluded().IDs(),
		RefreshedAt:   m.state.RefreshedAt(),
		WindowHours:   m.fetcher.Window().Hours(),
	}

	for _, group := range groups {
		gv := GroupView{
			Publisher: group.Publisher,
			Posts:     make([]PostView, 0, len(group.Posts)),
		}

		for _, post := range group.Posts {
			summary, _ := m.state.Summary(post.ID)

			gv.Posts = append(gv.Posts, PostView{
				ID:       post.ID,
				Text:     post.Text,
				Image:    post.Image,
				Link:     post.Link,
				PostedAt: post.PostedAt,
				Included: post.Included,
				Title:    summary.Title,
				Synopsis: summary.Synopsis,
			})
		}

		view.Groups = append(view.Groups, gv)
	}

	return view
}
