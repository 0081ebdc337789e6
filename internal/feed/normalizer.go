package feed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"postdigest/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
)

// PostedAtLayout is the upstream timestamp layout, always UTC.
const PostedAtLayout = "2006-01-02 15:04:05"

var (
	ErrMalformedRecord      = errors.New("malformed record")
	ErrMissingTimestamp     = errors.New("missing timestamp")
	ErrUnparseableTimestamp = errors.New("unparseable timestamp")
)

var htmlTagRe = regexp.MustCompile(`<[a-zA-Z/][^>]*>`)

// fieldChain is an ordered list of gjson paths. The first path holding a
// non-empty string wins.
type fieldChain []string

var (
	identityChain  = fieldChain{"urn.activity_urn", "activity_urn", "full_urn", "urn", "post_url"}
	publisherChain = fieldChain{"author.name", "author.company_name", "company_name"}
	textChain      = fieldChain{"text", "commentary"}
	imageChain     = fieldChain{"image_url", "media.items.0.thumbnail", "media.items.0.url", "images.0"}
	linkChain      = fieldChain{"post_url", "url"}
	postedAtChain  = fieldChain{"posted_at.date", "posted_at"}
)

func (c fieldChain) first(raw []byte) string {
	for _, path := range c {
		res := gjson.GetBytes(raw, path)
		if res.Type != gjson.String {
			continue
		}

		if v := strings.TrimSpace(res.Str); v != "" {
			return v
		}
	}

	return ""
}

// NormalizeStats counts what happened to a batch of raw records.
type NormalizeStats struct {
	Accepted             int
	Malformed            int
	MissingTimestamp     int
	UnparseableTimestamp int
}

func (s NormalizeStats) Rejected() int {
	return s.Malformed + s.MissingTimestamp + s.UnparseableTimestamp
}

// Normalize converts one raw dataset record into a Post. Rejections are
// reported through the sentinel errors of this package.
func Normalize(raw json.RawMessage) (domain.Post, error) {
	if !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsObject() {
		return domain.Post{}, ErrMalformedRecord
	}

	postedAtStr := postedAtChain.first(raw)
	if postedAtStr == "" {
		return domain.Post{}, ErrMissingTimestamp
	}

	postedAt, err := time.ParseInLocation(PostedAtLayout, postedAtStr, time.UTC)
	if err != nil {
		return domain.Post{}, fmt.Errorf("%w: %q", ErrUnparseableTimestamp, postedAtStr)
	}

	publisher := publisherChain.first(raw)
	if publisher == "" {
		publisher = domain.UnknownPublisher
	}

	text := plainText(textChain.first(raw))

	id := identityChain.first(raw)
	if id == "" {
		id = contentID(publisher, postedAt, text)
	}

	return domain.Post{
		ID:        id,
		Publisher: publisher,
		Text:      text,
		Image:     imageChain.first(raw),
		Link:      linkChain.first(raw),
		PostedAt:  postedAt,
		Included:  true,
	}, nil
}

// NormalizeAll normalizes a batch and drops rejected records, counting them
// by reason.
func NormalizeAll(
	ctx context.Context,
	raws []json.RawMessage,
	log *slog.Logger,
) ([]domain.Post, NormalizeStats) {
	var stats NormalizeStats
	posts := make([]domain.Post, 0, len(raws))

	for i, raw := range raws {
		post, err := Normalize(raw)
		if err != nil {
			switch {
			case errors.Is(err, ErrMissingTimestamp):
				stats.MissingTimestamp++
			case errors.Is(err, ErrUnparseableTimestamp):
				stats.UnparseableTimestamp++
			default:
				stats.Malformed++
			}

			log.DebugContext(ctx, "Skipping dataset record",
				"error", err,
				"index", i)

			continue
		}

		stats.Accepted++
		posts = append(posts, post)
	}

	return posts, stats
}

// Dedupe keeps the first occurrence of each post ID.
func Dedupe(posts []domain.Post) ([]domain.Post, int) {
	seen := make(map[string]struct{}, len(posts))
	out := make([]domain.Post, 0, len(posts))

	for _, post := range posts {
		if _, ok := seen[post.ID]; ok {
			continue
		}

		seen[post.ID] = struct{}{}
		out = append(out, post)
	}

	return out, len(posts) - len(out)
}

func contentID(publisher string, postedAt time.Time, text string) string {
	hash := sha256.Sum256([]byte(publisher + "\n" + postedAt.UTC().Format(PostedAtLayout) + "\n" + text))

	return "sha256:" + hex.EncodeToString(hash[:])
}

func plainText(text string) string {
	text = strings.TrimSpace(text)
	if !htmlTagRe.MatchString(text) {
		return text
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return text
	}

	doc.Find("br").Each(func(_ int, br *goquery.Selection) {
		br.ReplaceWithHtml("\n")
	})

	return strings.TrimSpace(doc.Text())
}
