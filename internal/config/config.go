package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	FormatJSON = "json"
	FormatRSS  = "rss"
)

type Config struct {
	DatasetURL    string `env:"DATASET_URL,required,notEmpty"`
	DatasetFormat string `env:"DATASET_FORMAT"                envDefault:"json"`
	WindowHours   int    `env:"WINDOW_HOURS"                  envDefault:"200"`

	OpenAIAPIKey       string `env:"OPENAI_API_KEY"`
	OpenAIModel        string `env:"OPENAI_MODEL"        envDefault:"gpt-5-mini"`
	OpenAIBaseURL      string `env:"OPENAI_BASE_URL"`
	SummaryConcurrency int    `env:"SUMMARY_CONCURRENCY" envDefault:"4"`
	NewsletterTopic    string `env:"NEWSLETTER_TOPIC"    envDefault:"the European space industry"`

	HTTPAddr        string `env:"HTTP_ADDR"         envDefault:":8080"`
	AppPassword     string `env:"APP_PASSWORD"`
	DBPath          string `env:"DB_PATH"           envDefault:"file:postdigest?mode=memory&cache=shared"`
	AutoRefreshSpec string `env:"AUTO_REFRESH_SPEC"`

	TelegramToken  string `env:"TELEGRAM_TOKEN"`
	TelegramChatID int64  `env:"TELEGRAM_CHAT_ID"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads an optional .env file and then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env file: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err = cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	switch strings.ToLower(strings.TrimSpace(c.DatasetFormat)) {
	case FormatJSON, FormatRSS:
	default:
		errs = append(errs, fmt.Errorf("DATASET_FORMAT must be %q or %q, got %q", FormatJSON, FormatRSS, c.DatasetFormat))
	}

	if c.WindowHours <= 0 {
		errs = append(errs, fmt.Errorf("WINDOW_HOURS must be positive, got %d", c.WindowHours))
	}

	if c.SummaryConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("SUMMARY_CONCURRENCY must be positive, got %d", c.SummaryConcurrency))
	}

	hasToken := strings.TrimSpace(c.TelegramToken) != ""
	if hasToken != (c.TelegramChatID != 0) {
		errs = append(errs, errors.New("TELEGRAM_TOKEN and TELEGRAM_CHAT_ID must be set together"))
	}

	return errors.Join(errs...)
}

func (c Config) Window() time.Duration {
	return time.Duration(c.WindowHours) * time.Hour
}

func (c Config) Format() string {
	return strings.ToLower(strings.TrimSpace(c.DatasetFormat))
}

func (c Config) TelegramEnabled() bool {
	return strings.TrimSpace(c.TelegramToken) != "" && c.TelegramChatID != 0
}

func (c Config) Level() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "debug":
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
