package newsletter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"postdigest/internal/domain"

	"github.com/google/uuid"
)

var ErrSynthesizerUnavailable = errors.New("newsletter synthesizer is not configured")

// Synthesizer turns a compiled context into the finished document.
type Synthesizer interface {
	Synthesize(ctx context.Context, contextBlock string) (string, error)
}

type Archive interface {
	SaveNewsletter(ctx context.Context, n domain.Newsletter) error
}

type Generator struct {
	synthesizer Synthesizer
	archive     Archive
	now         func() time.Time
	log         *slog.Logger
}

// NewGenerator builds a generator. archive may be nil.
func NewGenerator(s Synthesizer, archive Archive, log *slog.Logger) *Generator {
	return &Generator{
		synthesizer: s,
		archive:     archive,
		now:         func() time.Time { return time.Now().UTC() },
		log:         log,
	}
}

// Generate compiles the included posts and requests the newsletter. An
// empty selection returns ErrEmptySelection without calling the synthesizer.
func (g *Generator) Generate(
	ctx context.Context,
	groups []domain.Group,
	summaries map[string]domain.Summary,
) (domain.Newsletter, error) {
	compiled, err := Compile(groups, summaries)
	if err != nil {
		return domain.Newsletter{}, err
	}

	if g.synthesizer == nil {
		return domain.Newsletter{}, ErrSynthesizerUnavailable
	}

	body, err := g.synthesizer.Synthesize(ctx, compiled.Text)
	if err != nil {
		return domain.Newsletter{}, fmt.Errorf("synthesize newsletter: %w", err)
	}

	n := domain.Newsletter{
		ID:        uuid.NewString(),
		CreatedAt: g.now(),
		PostCount: compiled.PostCount,
		Context:   compiled.Text,
		Body:      strings.TrimSpace(body),
	}

	if g.archive != nil {
		if err = g.archive.SaveNewsletter(ctx, n); err != nil {
			g.log.ErrorContext(ctx, "Failed to archive newsletter",
				"error", err,
				"newsletterID", n.ID,
				"postCount", n.PostCount)
		}
	}

	g.log.InfoContext(ctx, "Newsletter is generated",
		"newsletterID", n.ID,
		"postCount", n.PostCount,
		"contextLen", len(n.Context),
		"bodyLen", len(n.Body))

	return n, nil
}
