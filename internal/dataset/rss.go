package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"
)

// postedAtLayout matches the layout the normalizer expects.
const postedAtLayout = "2006-01-02 15:04:05"

// RSSSource reads an RSS/Atom/JSON feed and converts its items into the
// same record shape as the JSON dataset.
type RSSSource struct {
	url    string
	parser *gofeed.Parser
	log    *slog.Logger
}

func NewRSSSource(url string, log *slog.Logger) (*RSSSource, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("feed URL is empty")
	}

	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: clientTimeout}
	parser.UserAgent = userAgent

	return &RSSSource{url: url, parser: parser, log: log}, nil
}

func (s *RSSSource) Fetch(ctx context.Context) ([]json.RawMessage, error) {
	parsed, err := s.parser.ParseURLWithContext(s.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: parse feed: %w", ErrSourceUnavailable, err)
	}

	return feedRecords(ctx, parsed, s.log), nil
}

type rssRecord struct {
	URN      string        `json:"urn,omitempty"`
	PostURL  string        `json:"post_url,omitempty"`
	Text     string        `json:"text,omitempty"`
	ImageURL string        `json:"image_url,omitempty"`
	Author   *rssAuthor    `json:"author,omitempty"`
	PostedAt *rssTimestamp `json:"posted_at,omitempty"`
}

type rssAuthor struct {
	Name string `json:"name"`
}

type rssTimestamp struct {
	Date string `json:"date"`
}

func feedRecords(ctx context.Context, parsed *gofeed.Feed, log *slog.Logger) []json.RawMessage {
	feedTitle := strings.TrimSpace(parsed.Title)
	records := make([]json.RawMessage, 0, len(parsed.Items))

	for _, item := range parsed.Items {
		raw, err := json.Marshal(itemRecord(item, feedTitle))
		if err != nil {
			log.WarnContext(ctx, "Skipping feed item",
				"error", err,
				"link", item.Link)

			continue
		}

		records = append(records, raw)
	}

	return records
}

func itemRecord(item *gofeed.Item, feedTitle string) rssRecord {
	rec := rssRecord{
		URN:     strings.TrimSpace(item.GUID),
		PostURL: strings.TrimSpace(item.Link),
		Text:    strings.TrimSpace(item.Content),
	}

	if rec.Text == "" {
		rec.Text = strings.TrimSpace(item.Description)
	}
	if rec.Text == "" {
		rec.Text = strings.TrimSpace(item.Title)
	}

	if item.Image != nil {
		rec.ImageURL = strings.TrimSpace(item.Image.URL)
	}

	author := feedTitle
	if item.Author != nil && strings.TrimSpace(item.Author.Name) != "" {
		author = strings.TrimSpace(item.Author.Name)
	}
	if author != "" {
		rec.Author = &rssAuthor{Name: author}
	}

	published := item.PublishedParsed
	if published == nil {
		published = item.UpdatedParsed
	}
	if published != nil {
		rec.PostedAt = &rssTimestamp{Date: published.UTC().Format(postedAtLayout)}
	}

	return rec
}
