package dataset_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"postdigest/internal/dataset"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serve(t *testing.T, status int, contentType string, body string) string {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	return srv.URL
}

func TestJSONSourceFetchReturnsRecords(t *testing.T) {
	t.Parallel()

	url := serve(t, http.StatusOK, "application/json",
		`[{"urn":"a","text":"one"},{"urn":"b","text":"two"},"not an object"]`)

	src, err := dataset.NewJSONSource(url, testLogger())
	if err != nil {
		t.Fatalf("NewJSONSource error: %v", err)
	}

	records, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected 3 raw records, got %d", len(records))
	}
	if string(records[0]) != `{"urn":"a","text":"one"}` {
		t.Fatalf("unexpected first record: %s", records[0])
	}
}

func TestJSONSourceNonArrayYieldsNoRecords(t *testing.T) {
	t.Parallel()

	url := serve(t, http.StatusOK, "application/json", `{"error":"run not finished"}`)

	src, err := dataset.NewJSONSource(url, testLogger())
	if err != nil {
		t.Fatalf("NewJSONSource error: %v", err)
	}

	records, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestJSONSourceUnavailable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `[]`},
		{name: "not found", status: http.StatusNotFound, body: ``},
		{name: "invalid json", status: http.StatusOK, body: `[{"urn":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			url := serve(t, tt.status, "application/json", tt.body)

			src, err := dataset.NewJSONSource(url, testLogger())
			if err != nil {
				t.Fatalf("NewJSONSource error: %v", err)
			}

			records, err := src.Fetch(context.Background())
			if !errors.Is(err, dataset.ErrSourceUnavailable) {
				t.Fatalf("expected ErrSourceUnavailable, got %v", err)
			}
			if records != nil {
				t.Fatalf("expected nil records, got %d", len(records))
			}
		})
	}
}

func TestJSONSourceUnreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	src, err := dataset.NewJSONSource(url, testLogger())
	if err != nil {
		t.Fatalf("NewJSONSource error: %v", err)
	}

	if _, err = src.Fetch(context.Background()); !errors.Is(err, dataset.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestNewJSONSourceRequiresURL(t *testing.T) {
	t.Parallel()

	if _, err := dataset.NewJSONSource("  ", testLogger()); err == nil {
		t.Fatalf("expected error for empty URL")
	}
}
