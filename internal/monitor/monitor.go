package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"postdigest/internal/domain"
	"postdigest/internal/feed"
	"postdigest/internal/newsletter"
	"postdigest/internal/session"
)

// Notifier delivers a generated newsletter somewhere outside the process.
type Notifier interface {
	SendNewsletter(ctx context.Context, n domain.Newsletter) error
}

// Monitor owns the operator session and runs every operator action to
// completion before the next one starts.
type Monitor struct {
	mu sync.Mutex

	fetcher   *feed.Fetcher
	summaries *feed.Summaries
	generator *newsletter.Generator
	notifier  Notifier
	state     *session.State
	last      *domain.Newsletter
	now       func() time.Time
	log       *slog.Logger
}

// New builds a monitor with an empty session. notifier may be nil.
func New(
	fetcher *feed.Fetcher,
	summaries *feed.Summaries,
	generator *newsletter.Generator,
	notifier Notifier,
	log *slog.Logger,
) *Monitor {
	return &Monitor{
		fetcher:   fetcher,
		summaries: summaries,
		generator: generator,
		notifier:  notifier,
		state:     session.New(),
		now:       func() time.Time { return time.Now().UTC() },
		log:       log,
	}
}

type RefreshResult struct {
	feed.Report

	Excluded int
	Visible  int
}

// Empty reports whether the refresh left nothing to show.
func (r RefreshResult) Empty() bool {
	return r.Visible == 0
}

// Refresh fetches the dataset, replaces the visible posts and summarizes
// them. An unavailable source leaves an empty view.
func (m *Monitor) Refresh(ctx context.Context) RefreshResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	posts, report := m.fetcher.Fetch(ctx)
	visible := feed.FilterExcluded(posts, m.state.Excluded())

	m.state.Replace(visible, m.now())

	result := RefreshResult{
		Report:   report,
		Excluded: len(posts) - len(visible),
		Visible:  len(visible),
	}

	if result.Empty() {
		m.log.InfoContext(ctx, "No posts found",
			"fetched", report.Fetched,
			"excluded", result.Excluded,
			"sourceErr", report.SourceErr)

		return result
	}

	m.summarizeMissingLocked(ctx, m.state.Posts())

	return result
}

// Summarize fills in summaries for visible posts that have none yet and
// returns how many posts were sent to the summarizer.
func (m *Monitor) Summarize(ctx context.Context) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.summarizeMissingLocked(ctx, m.state.Posts())
}

func (m *Monitor) summarizeMissingLocked(ctx context.Context, posts []domain.Post) int {
	var pending []domain.Post
	for _, post := range posts {
		if summary, ok := m.state.Summary(post.ID); ok && !summary.IsEmpty() {
			continue
		}

		pending = append(pending, post)
	}

	if len(pending) == 0 {
		return 0
	}

	results := m.summaries.SummarizeAll(ctx, pending)
	for i, post := range pending {
		m.state.SetSummary(post.ID, results[i])
	}

	return len(pending)
}

func (m *Monitor) SetIncluded(id string, included bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state.SetIncluded(id, included)
}

// Exclude hides the post for the rest of the session. It reports whether
// the ID was newly excluded.
func (m *Monitor) Exclude(ctx context.Context, id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	added := m.state.Exclude(id)
	if added {
		m.log.InfoContext(ctx, "Post is excluded",
			"postID", id,
			"excludedCount", m.state.Excluded().Len())
	}

	return added
}

// GenerateNewsletter compiles the included posts and synthesizes the
// newsletter. Included posts without a summary are summarized first.
func (m *Monitor) GenerateNewsletter(ctx context.Context) (domain.Newsletter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var included []domain.Post
	for _, post := range m.state.Posts() {
		if post.Included {
			included = append(included, post)
		}
	}

	if len(included) == 0 {
		return domain.Newsletter{}, newsletter.ErrEmptySelection
	}

	m.summarizeMissingLocked(ctx, included)

	n, err := m.generator.Generate(ctx, feed.GroupByPublisher(m.state.Posts()), m.state.Summaries())
	if err != nil {
		m.log.ErrorContext(ctx, "Failed to generate newsletter",
			"error", err,
			"includedCount", len(included))

		return domain.Newsletter{}, err
	}

	m.last = &n

	if m.notifier != nil {
		if err = m.notifier.SendNewsletter(ctx, n); err != nil {
			m.log.ErrorContext(ctx, "Failed to send newsletter",
				"error", err,
				"newsletterID", n.ID)
		}
	}

	return n, nil
}

// LastNewsletter returns the newsletter most recently generated in this
// session, whether or not the archive managed to store it.
func (m *Monitor) LastNewsletter() (domain.Newsletter, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.last == nil {
		return domain.Newsletter{}, false
	}

	return *m.last, true
}
