package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"postdigest/internal/domain"
)

// Source returns the raw records of the latest dataset run.
type Source interface {
	Fetch(ctx context.Context) ([]json.RawMessage, error)
}

// Report describes one fetch cycle.
type Report struct {
	NormalizeStats

	Fetched    int
	Duplicates int
	Expired    int
	Kept       int
	SourceErr  error
}

type Fetcher struct {
	source Source
	window time.Duration
	now    func() time.Time
	log    *slog.Logger
}

func NewFetcher(source Source, window time.Duration, log *slog.Logger) *Fetcher {
	if window <= 0 {
		window = DefaultWindow
	}

	return &Fetcher{
		source: source,
		window: window,
		now:    func() time.Time { return time.Now().UTC() },
		log:    log,
	}
}

func (f *Fetcher) Window() time.Duration {
	return f.window
}

// Fetch pulls the dataset and returns normalized, deduplicated posts inside
// the recency window. An unavailable source yields zero posts and the error
// in Report.SourceErr.
func (f *Fetcher) Fetch(ctx context.Context) ([]domain.Post, Report) {
	var report Report

	raws, err := f.source.Fetch(ctx)
	if err != nil {
		f.log.ErrorContext(ctx, "Failed to fetch dataset",
			"error", err)

		report.SourceErr = err

		return nil, report
	}
	report.Fetched = len(raws)

	posts, stats := NormalizeAll(ctx, raws, f.log)
	report.NormalizeStats = stats

	posts, report.Duplicates = Dedupe(posts)

	inWindow := FilterWindow(posts, f.now(), f.window)
	report.Expired = len(posts) - len(inWindow)
	report.Kept = len(inWindow)

	f.log.InfoContext(ctx, "Dataset is fetched",
		"fetched", report.Fetched,
		"kept", report.Kept,
		"rejected", stats.Rejected(),
		"duplicates", report.Duplicates,
		"expired", report.Expired,
		"windowHours", f.window.Hours())

	return inWindow, report
}
