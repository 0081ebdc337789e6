package ratelimiter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestGetDelay(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		chatID   int64
		lastSent time.Time
		wantZero bool
	}{
		{"private chat without delay", 123456789, now.Add(-2 * time.Second), true},
		{"private chat with delay", 123456789, now.Add(-500 * time.Millisecond), false},
		{"group chat without delay", -123456789, now.Add(-4 * time.Second), true},
		{"group chat with delay", -123456789, now.Add(-1 * time.Second), false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := getDelay(test.chatID, test.lastSent)

			if test.wantZero && got > 0 {
				t.Errorf("expected zero delay, got %v", got)
			}

			if !test.wantZero && got <= 0 {
				t.Errorf("expected positive delay, got %v", got)
			}
		})
	}
}

func TestDoReturnsSendResult(t *testing.T) {
	rl := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(rl.Stop)

	wantErr := errors.New("bad request")
	calls := 0

	err := rl.Do(context.Background(), 42, func(context.Context) error {
		calls++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected send error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestDoSpacesSameChat(t *testing.T) {
	rl := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(rl.Stop)

	send := func(context.Context) error { return nil }

	if err := rl.Do(context.Background(), 42, send); err != nil {
		t.Fatalf("first Do error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := rl.Do(ctx, 42, send); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected second send to wait past the deadline, got %v", err)
	}
}

func TestDoAfterStop(t *testing.T) {
	rl := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	rl.Stop()

	err := rl.Do(context.Background(), 42, func(context.Context) error { return nil })
	if err == nil {
		t.Fatalf("expected error after Stop")
	}
}
