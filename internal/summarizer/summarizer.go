package summarizer

import (
	"context"

	"postdigest/internal/domain"
)

// Input describes the payload for a summary request.
type Input struct {
	// Text contains the original post body.
	Text string
	// SourceURL is optional metadata that helps the model reference the origin.
	SourceURL string
}

// Summarizer produces a headline and a one-sentence synopsis for a post.
type Summarizer interface {
	Summarize(ctx context.Context, input Input) (domain.Summary, error)
}
