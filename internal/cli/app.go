package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"postdigest/internal/config"
	"postdigest/internal/database"
	"postdigest/internal/dataset"
	"postdigest/internal/feed"
	"postdigest/internal/monitor"
	"postdigest/internal/newsletter"
	"postdigest/internal/notifier"
	"postdigest/internal/summarizer"
)

// app holds the wired components shared by the commands.
type app struct {
	cfg      config.Config
	db       *database.Database
	telegram *notifier.Telegram
	monitor  *monitor.Monitor
	log      *slog.Logger
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

func newApp(ctx context.Context, cfg config.Config, log *slog.Logger) (*app, error) {
	source, err := newSource(cfg, log)
	if err != nil {
		return nil, err
	}

	db, err := database.New(ctx, cfg.DBPath, log)
	if err != nil {
		return nil, fmt.Errorf("initialize db: %w", err)
	}
	log.InfoContext(ctx, "DB is initialized",
		"dbPath", cfg.DBPath)

	a := &app{cfg: cfg, db: db, log: log}

	var (
		sum   summarizer.Summarizer
		synth newsletter.Synthesizer
	)
	if openAI := newOpenAI(ctx, cfg, log); openAI != nil {
		sum = openAI
		synth = openAI
	}

	var notify monitor.Notifier
	if cfg.TelegramEnabled() {
		a.telegram, err = notifier.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID, log)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("initialize telegram: %w", err), a.close())
		}
		notify = a.telegram

		log.InfoContext(ctx, "Telegram notifier is initialized",
			"chatID", cfg.TelegramChatID)
	}

	a.monitor = monitor.New(
		feed.NewFetcher(source, cfg.Window(), log),
		feed.NewSummaries(sum, cfg.SummaryConcurrency, cfg.Window(), log),
		newsletter.NewGenerator(synth, db, log),
		notify,
		log,
	)

	return a, nil
}

func newSource(cfg config.Config, log *slog.Logger) (feed.Source, error) {
	switch cfg.Format() {
	case config.FormatRSS:
		return dataset.NewRSSSource(cfg.DatasetURL, log)
	default:
		return dataset.NewJSONSource(cfg.DatasetURL, log)
	}
}

func newOpenAI(ctx context.Context, cfg config.Config, log *slog.Logger) *summarizer.OpenAI {
	if cfg.OpenAIAPIKey == "" {
		log.WarnContext(ctx, "OPENAI_API_KEY is missing so summaries and newsletters are disabled",
			"envVar", "OPENAI_API_KEY")

		return nil
	}

	s, err := summarizer.NewOpenAI(summarizer.OpenAIConfig{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
		Topic:   cfg.NewsletterTopic,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to create OpenAI client so summaries and newsletters are disabled",
			"error", err,
			"envVar", "OPENAI_API_KEY")

		return nil
	}

	log.InfoContext(ctx, "OpenAI client is initialized",
		"model", cfg.OpenAIModel)

	return s
}

func (a *app) close() error {
	if a.telegram != nil {
		a.telegram.Close()
	}

	if err := a.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}
