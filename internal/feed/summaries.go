package feed

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"postdigest/internal/domain"
	"postdigest/internal/summarizer"
)

const defaultSummariesParallelism = 4

// Summaries runs the summarizer over a batch of posts with a bounded worker
// pool. Failures degrade to an empty summary for the affected post only.
type Summaries struct {
	summarizer  summarizer.Summarizer
	cache       *summaryCache
	parallelism int
	ttl         time.Duration
	now         func() time.Time
	log         *slog.Logger
}

// NewSummaries builds a batch summarizer. A nil summarizer yields empty
// summaries. ttl bounds how long a summary is cached past the post date.
func NewSummaries(
	s summarizer.Summarizer,
	parallelism int,
	ttl time.Duration,
	log *slog.Logger,
) *Summaries {
	if parallelism <= 0 {
		parallelism = defaultSummariesParallelism
	}

	if ttl <= 0 {
		ttl = DefaultWindow
	}

	return &Summaries{
		summarizer:  s,
		cache:       newSummaryCache(summaryCacheMaxEntries),
		parallelism: parallelism,
		ttl:         ttl,
		now:         func() time.Time { return time.Now().UTC() },
		log:         log,
	}
}

// SummarizeAll returns one summary per post, index-aligned with posts.
func (s *Summaries) SummarizeAll(ctx context.Context, posts []domain.Post) []domain.Summary {
	summaries := make([]domain.Summary, len(posts))
	if len(posts) == 0 {
		return summaries
	}

	workerCount := min(s.parallelism, len(posts))

	type task struct {
		resultIndex int
		post        domain.Post
	}

	tasks := make(chan task)
	var wg sync.WaitGroup

	for range workerCount {
		wg.Go(func() {
			for t := range tasks {
				summaries[t.resultIndex] = s.summarizePost(ctx, t.post)
			}
		})
	}

	for i := range posts {
		tasks <- task{
			resultIndex: i,
			post:        posts[i],
		}
	}

	close(tasks)
	wg.Wait()

	return summaries
}

func (s *Summaries) summarizePost(ctx context.Context, post domain.Post) domain.Summary {
	text := strings.TrimSpace(post.Text)
	if text == "" || s.summarizer == nil {
		return domain.Summary{}
	}

	now := s.now()
	cacheKey := summaryCacheKey(post.ID, text)

	if summary, ok := s.cache.get(cacheKey, now); ok {
		return summary
	}

	if ctx.Err() != nil {
		return domain.Summary{}
	}

	summary, err := s.summarizer.Summarize(ctx, summarizer.Input{
		Text:      text,
		SourceURL: post.Link,
	})
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to summarize post",
			"error", err,
			"postID", post.ID,
			"publisher", post.Publisher,
			"cacheKey", cacheKey,
			"textLen", len(text))

		return domain.Summary{}
	}

	summary.Title = strings.TrimSpace(summary.Title)
	summary.Synopsis = strings.TrimSpace(summary.Synopsis)

	published := post.PostedAt
	if published.IsZero() {
		published = now
	}

	s.cache.set(cacheKey, summary, published.Add(s.ttl), now)

	return summary
}
