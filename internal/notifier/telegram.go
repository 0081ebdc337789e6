package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"postdigest/internal/domain"
	"postdigest/internal/markdown"
	"postdigest/internal/newsletter"
	"postdigest/internal/ratelimiter"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const captionTimeLayout = "2006-01-02 15:04 UTC"

// Telegram delivers newsletters to one chat as a text document.
type Telegram struct {
	api         *bot.Bot
	chatID      int64
	rateLimiter *ratelimiter.RateLimiter
	log         *slog.Logger
}

func NewTelegram(
	token string,
	chatID int64,
	log *slog.Logger,
	opts ...bot.Option,
) (*Telegram, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("telegram token is empty")
	}
	if chatID == 0 {
		return nil, errors.New("telegram chat ID is empty")
	}

	api, err := bot.New(token, append([]bot.Option{bot.WithSkipGetMe()}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	return &Telegram{
		api:         api,
		chatID:      chatID,
		rateLimiter: ratelimiter.New(log),
		log:         log,
	}, nil
}

func (t *Telegram) SendNewsletter(ctx context.Context, n domain.Newsletter) error {
	body := strings.TrimSpace(n.Body)
	if body == "" {
		return errors.New("newsletter body is empty")
	}

	err := t.rateLimiter.Do(ctx, t.chatID, func(ctx context.Context) error {
		_, err := t.api.SendDocument(ctx, &bot.SendDocumentParams{
			ChatID: t.chatID,
			Document: &models.InputFileUpload{
				Filename: newsletter.FileName,
				Data:     strings.NewReader(body + "\n"),
			},
			Caption:   Caption(n),
			ParseMode: models.ParseModeMarkdown,
		})

		return err
	})
	if err != nil {
		return fmt.Errorf("send document: %w", err)
	}

	t.log.InfoContext(ctx, "Newsletter is sent",
		"newsletterID", n.ID,
		"chatID", t.chatID)

	return nil
}

func (t *Telegram) Close() {
	t.rateLimiter.Stop()
}

// Caption renders the MarkdownV2 caption of the newsletter document.
func Caption(n domain.Newsletter) string {
	noun := "posts"
	if n.PostCount == 1 {
		noun = "post"
	}

	caption := markdown.BoldV2("Newsletter") + " " +
		markdown.EscapeV2(fmt.Sprintf("- %d %s", n.PostCount, noun))

	if !n.CreatedAt.IsZero() {
		caption += "\n" + markdown.ItalicV2(n.CreatedAt.UTC().Format(captionTimeLayout))
	}

	return caption
}
