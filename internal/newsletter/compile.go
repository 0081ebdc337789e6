package newsletter

import (
	"errors"
	"fmt"
	"strings"

	"postdigest/internal/domain"
)

const (
	// FileName and MediaType describe the exported document.
	FileName  = "newsletter.txt"
	MediaType = "text/plain; charset=utf-8"

	excerptMaxChars = 200
)

var ErrEmptySelection = errors.New("no posts selected for the newsletter")

// Context is the compiled input of the synthesis request.
type Context struct {
	Text      string
	PostCount int
}

// Compile concatenates the included posts into one text block: a heading
// per publisher and a bullet per post, in group order.
func Compile(groups []domain.Group, summaries map[string]domain.Summary) (Context, error) {
	var b strings.Builder
	count := 0

	for _, group := range groups {
		var bullets []string

		for _, post := range group.Posts {
			if !post.Included {
				continue
			}

			bullets = append(bullets, formatBullet(group.Publisher, post, summaries[post.ID]))
		}

		if len(bullets) == 0 {
			continue
		}

		if b.Len() > 0 {
			b.WriteString("\n")
		}

		fmt.Fprintf(&b, "### %s\n", group.Publisher)
		for _, bullet := range bullets {
			b.WriteString(bullet)
		}

		count += len(bullets)
	}

	if count == 0 {
		return Context{}, ErrEmptySelection
	}

	return Context{Text: b.String(), PostCount: count}, nil
}

// formatBullet always yields a line: an included post is never dropped,
// whatever the summarizer returned.
func formatBullet(publisher string, post domain.Post, summary domain.Summary) string {
	title := oneLine(summary.Title)
	synopsis := oneLine(summary.Synopsis)

	if title == "" && synopsis == "" {
		synopsis = excerpt(post.Text)
	}
	if synopsis == "" {
		synopsis = strings.TrimSpace(post.Link)
	}

	switch {
	case title != "" && synopsis != "":
		return fmt.Sprintf("- **%s** : %s\n", title, synopsis)
	case title != "":
		return fmt.Sprintf("- **%s**\n", title)
	case synopsis != "":
		return fmt.Sprintf("- %s\n", synopsis)
	default:
		return fmt.Sprintf("- %s\n", oneLine(publisher))
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func excerpt(text string) string {
	normalized := oneLine(text)

	runes := []rune(normalized)
	if len(runes) <= excerptMaxChars {
		return normalized
	}

	return strings.TrimSpace(string(runes[:excerptMaxChars])) + "..."
}
