package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"postdigest/internal/domain"
	"postdigest/internal/summarizer"
)

type stubSummarizer struct {
	mu    sync.Mutex
	calls int
	fail  map[string]bool
	delay func(text string) time.Duration
}

func (s *stubSummarizer) Summarize(
	_ context.Context,
	input summarizer.Input,
) (domain.Summary, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.delay != nil {
		time.Sleep(s.delay(input.Text))
	}

	if s.fail[input.Text] {
		return domain.Summary{}, errors.New("model unavailable")
	}

	return domain.Summary{Title: "T " + input.Text, Synopsis: "S " + input.Text}, nil
}

func (s *stubSummarizer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls
}

func testPosts(n int) []domain.Post {
	posts := make([]domain.Post, n)
	for i := range posts {
		posts[i] = domain.Post{
			ID:       fmt.Sprintf("urn:%d", i),
			Text:     fmt.Sprintf("text-%d", i),
			PostedAt: time.Now().UTC(),
		}
	}
	return posts
}

func TestSummarizeAllPreservesOrder(t *testing.T) {
	stub := &stubSummarizer{
		delay: func(text string) time.Duration {
			// Earlier posts finish last.
			if strings.HasSuffix(text, "-0") || strings.HasSuffix(text, "-1") {
				return 20 * time.Millisecond
			}
			return 0
		},
	}
	posts := testPosts(8)

	summaries := NewSummaries(stub, 4, time.Hour, slog.Default()).SummarizeAll(context.Background(), posts)

	if len(summaries) != len(posts) {
		t.Fatalf("summaries = %d, want %d", len(summaries), len(posts))
	}

	for i, summary := range summaries {
		if summary.Title != "T "+posts[i].Text {
			t.Fatalf("summary %d = %+v, want title for %q", i, summary, posts[i].Text)
		}
	}
}

func TestSummarizeAllIsolatesFailures(t *testing.T) {
	stub := &stubSummarizer{fail: map[string]bool{"text-1": true}}
	posts := testPosts(3)

	summaries := NewSummaries(stub, 2, time.Hour, slog.Default()).SummarizeAll(context.Background(), posts)

	if !summaries[1].IsEmpty() {
		t.Fatalf("expected failed post to have empty summary, got %+v", summaries[1])
	}

	if summaries[0].IsEmpty() || summaries[2].IsEmpty() {
		t.Fatalf("expected other posts to be summarized: %+v", summaries)
	}
}

func TestSummarizeAllUsesCache(t *testing.T) {
	stub := &stubSummarizer{}
	s := NewSummaries(stub, 2, time.Hour, slog.Default())
	posts := testPosts(2)

	s.SummarizeAll(context.Background(), posts)
	s.SummarizeAll(context.Background(), posts)

	if got := stub.callCount(); got != 2 {
		t.Fatalf("summarizer calls = %d, want 2", got)
	}

	posts[0].Text = "edited"
	s.SummarizeAll(context.Background(), posts)

	if got := stub.callCount(); got != 3 {
		t.Fatalf("summarizer calls after edit = %d, want 3", got)
	}
}

func TestSummarizeAllDoesNotCacheFailures(t *testing.T) {
	stub := &stubSummarizer{fail: map[string]bool{"text-0": true}}
	s := NewSummaries(stub, 1, time.Hour, slog.Default())
	posts := testPosts(1)

	s.SummarizeAll(context.Background(), posts)
	s.SummarizeAll(context.Background(), posts)

	if got := stub.callCount(); got != 2 {
		t.Fatalf("summarizer calls = %d, want 2", got)
	}
}

func TestSummarizeAllWithoutSummarizer(t *testing.T) {
	summaries := NewSummaries(nil, 2, time.Hour, slog.Default()).SummarizeAll(context.Background(), testPosts(2))

	for i, summary := range summaries {
		if !summary.IsEmpty() {
			t.Fatalf("summary %d = %+v, want empty", i, summary)
		}
	}
}

func TestSummarizeAllSkipsEmptyText(t *testing.T) {
	stub := &stubSummarizer{}
	posts := []domain.Post{{ID: "urn:1", Text: "   "}}

	NewSummaries(stub, 1, time.Hour, slog.Default()).SummarizeAll(context.Background(), posts)

	if stub.callCount() != 0 {
		t.Fatalf("expected no summarizer call for empty text")
	}
}
