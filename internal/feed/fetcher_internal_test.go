package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"
)

type stubSource struct {
	raws []json.RawMessage
	err  error
}

func (s *stubSource) Fetch(context.Context) ([]json.RawMessage, error) {
	return s.raws, s.err
}

func record(urn, publisher string, postedAt time.Time) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(
		`{"urn": %q, "author": {"name": %q}, "text": "post", "posted_at": {"date": %q}}`,
		urn, publisher, postedAt.Format(PostedAtLayout),
	))
}

func newTestFetcher(source Source, now time.Time) *Fetcher {
	f := NewFetcher(source, 200*time.Hour, slog.Default())
	f.now = func() time.Time { return now }
	return f
}

func TestFetcherEndToEndScenario(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	source := &stubSource{raws: []json.RawMessage{
		record("urn:1", "Acme Corp", now),
		record("urn:2", "Acme Corp", now.Add(-300*time.Hour)),
		json.RawMessage(`{"urn": "urn:3", "author": {"name": "Acme Corp"}, "text": "no date"}`),
	}}

	posts, report := newTestFetcher(source, now).Fetch(context.Background())

	if len(posts) != 1 || posts[0].ID != "urn:1" {
		t.Fatalf("unexpected posts: %+v", posts)
	}

	groups := GroupByPublisher(posts)
	if len(groups) != 1 || groups[0].Publisher != "Acme Corp" || len(groups[0].Posts) != 1 {
		t.Fatalf("unexpected groups: %+v", groups)
	}

	if report.Fetched != 3 || report.MissingTimestamp != 1 || report.Expired != 1 || report.Kept != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestFetcherDropsDuplicates(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	source := &stubSource{raws: []json.RawMessage{
		record("urn:1", "Acme", now),
		record("urn:1", "Acme", now),
	}}

	posts, report := newTestFetcher(source, now).Fetch(context.Background())

	if len(posts) != 1 || report.Duplicates != 1 {
		t.Fatalf("posts = %d, duplicates = %d", len(posts), report.Duplicates)
	}
}

func TestFetcherSourceUnavailableYieldsNoPosts(t *testing.T) {
	sourceErr := errors.New("connection refused")

	posts, report := newTestFetcher(&stubSource{err: sourceErr}, time.Now()).Fetch(context.Background())

	if len(posts) != 0 {
		t.Fatalf("expected zero posts, got %d", len(posts))
	}

	if !errors.Is(report.SourceErr, sourceErr) {
		t.Fatalf("SourceErr = %v", report.SourceErr)
	}
}
