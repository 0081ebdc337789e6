package notifier_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"postdigest/internal/domain"
	"postdigest/internal/notifier"

	"github.com/go-telegram/bot"
)

func TestCaption(t *testing.T) {
	createdAt := time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   domain.Newsletter
		want string
	}{
		{
			name: "plural with date",
			in:   domain.Newsletter{PostCount: 3, CreatedAt: createdAt},
			want: "*Newsletter* \\- 3 posts\n_2025\\-06\\-02 10:30 UTC_",
		},
		{
			name: "singular without date",
			in:   domain.Newsletter{PostCount: 1},
			want: "*Newsletter* \\- 1 post",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := notifier.Caption(tt.in); got != tt.want {
				t.Fatalf("Caption() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewTelegramValidation(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	if _, err := notifier.NewTelegram(" ", 1, log); err == nil {
		t.Fatalf("expected error for empty token")
	}
	if _, err := notifier.NewTelegram("token", 0, log); err == nil {
		t.Fatalf("expected error for empty chat ID")
	}
}

func TestSendNewsletterUploadsDocument(t *testing.T) {
	var (
		mu       sync.Mutex
		path     string
		fields   = map[string]string{}
		filename string
		content  string
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()

		path = r.URL.Path

		if err := r.ParseMultipartForm(1 << 20); err == nil {
			for k, v := range r.MultipartForm.Value {
				fields[k] = v[0]
			}
			if files := r.MultipartForm.File["document"]; len(files) == 1 {
				filename = files[0].Filename
				if f, err := files[0].Open(); err == nil {
					b, _ := io.ReadAll(f)
					content = string(b)
					_ = f.Close()
				}
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"result": map[string]any{
				"message_id": 1,
				"date":       0,
				"chat":       map[string]any{"id": 42, "type": "private"},
			},
		})
	}))
	defer srv.Close()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	tg, err := notifier.NewTelegram("test-token", 42, log, bot.WithServerURL(srv.URL))
	if err != nil {
		t.Fatalf("NewTelegram error: %v", err)
	}
	defer tg.Close()

	n := domain.Newsletter{ID: "n-1", PostCount: 2, Body: "# Weekly digest"}
	if err = tg.SendNewsletter(context.Background(), n); err != nil {
		t.Fatalf("SendNewsletter error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()

	if !strings.HasSuffix(path, "/sendDocument") {
		t.Fatalf("unexpected API path: %q", path)
	}
	if fields["chat_id"] != "42" || !strings.Contains(fields["parse_mode"], "MarkdownV2") {
		t.Fatalf("unexpected form fields: %v", fields)
	}
	if filename != "newsletter.txt" {
		t.Fatalf("unexpected filename: %q", filename)
	}
	if content != "# Weekly digest\n" {
		t.Fatalf("unexpected content: %q", content)
	}
}

func TestSendNewsletterRejectsEmptyBody(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	tg, err := notifier.NewTelegram("test-token", 42, log, bot.WithServerURL("http://127.0.0.1:0"))
	if err != nil {
		t.Fatalf("NewTelegram error: %v", err)
	}
	defer tg.Close()

	if err = tg.SendNewsletter(context.Background(), domain.Newsletter{}); err == nil {
		t.Fatalf("expected error for empty body")
	}
}
