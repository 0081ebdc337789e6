package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	clientTimeout   = 60 * time.Second
	maxResponseSize = 64 << 20
	userAgent       = "postdigest/1.0"
)

var ErrSourceUnavailable = errors.New("dataset source unavailable")

// JSONSource reads a dataset endpoint returning a JSON array of records.
type JSONSource struct {
	url    string
	client *http.Client
	log    *slog.Logger
}

func NewJSONSource(url string, log *slog.Logger) (*JSONSource, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("dataset URL is empty")
	}

	return &JSONSource{
		url:    url,
		client: &http.Client{Timeout: clientTimeout},
		log:    log,
	}, nil
}

// Fetch returns the raw records. A response that is valid JSON but not an
// array yields zero records and no error.
func (s *JSONSource) Fetch(ctx context.Context) ([]json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: do request: %w", ErrSourceUnavailable, err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			s.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"operation", "JSONSource.Fetch")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status: %d", ErrSourceUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrSourceUnavailable, err)
	}

	return decodeRecords(ctx, body, s.log)
}

func decodeRecords(ctx context.Context, body []byte, log *slog.Logger) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)

	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("%w: response is not valid JSON", ErrSourceUnavailable)
	}

	if len(trimmed) == 0 || trimmed[0] != '[' {
		log.WarnContext(ctx, "Dataset response is not an array",
			"bodyLen", len(trimmed))

		return nil, nil
	}

	var records []json.RawMessage
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("%w: decode records: %w", ErrSourceUnavailable, err)
	}

	return records, nil
}
