package pipeline

import (
	"context"
	"time"

	"email-triage/internal/gemini"
	"email-triage/internal/models"
)

// geminiWithTimeout applies request_timeout through the context, since the
// Gemini SDK client has no per-client HTTP timeout.
type geminiWithTimeout struct {
	*gemini.Client
	timeout time.Duration
}

func (g geminiWithTimeout) Classify(ctx context.Context, text string) (models.Classification, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.Client.Classify(ctx, text)
}

func (g geminiWithTimeout) Reply(ctx context.Context, category, originalText string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.Client.Reply(ctx, category, originalText)
}
