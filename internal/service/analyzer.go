package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"email-triage/internal/models"
	"email-triage/internal/nlp"
	"email-triage/internal/prompts"

	"go.uber.org/zap"
)

// PreviewChars is the display budget for the echoed email text.
const PreviewChars = 600

// ErrEmptyContent is returned when the payload holds only whitespace.
var ErrEmptyContent = errors.New("Conteúdo vazio após leitura do arquivo/textarea.")

// Classifier is the classification chain
type Classifier interface {
	Classify(ctx context.Context, text string) models.Classification
	Providers() []models.ProviderInfo
}

// Suggester is the reply chain
type Suggester interface {
	Suggest(ctx context.Context, category, originalText string) models.Reply
	Providers() []models.ProviderInfo
}

// Analyzer runs one email through normalization, classification and reply
// suggestion.
type Analyzer struct {
	classifier Classifier
	suggester  Suggester
	logger     *zap.Logger
}

// NewAnalyzer creates a new analyzer service
func NewAnalyzer(classifier Classifier, suggester Suggester, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		classifier: classifier,
		suggester:  suggester,
		logger:     logger,
	}
}

// Analyze classifies the normalized text and drafts a reply from the raw text.
// Only empty content is an error; backend failures are absorbed downstream.
func (a *Analyzer) Analyze(ctx context.Context, raw string) (*models.Analysis, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyContent
	}

	start := time.Now()

	pre := nlp.Normalize(raw)
	cls := a.classifier.Classify(ctx, pre.CleanText)
	reply := a.suggester.Suggest(ctx, cls.Category, raw)

	a.logger.Info("Email analyzed",
		zap.String("category", cls.Category),
		zap.Float64("confidence", cls.Confidence),
		zap.String("classified_by", cls.ClassifiedBy),
		zap.String("reply_provider", reply.Provider),
		zap.Int("tokens", pre.TokenCount),
		zap.Duration("duration", time.Since(start)))

	return &models.Analysis{
		Category:       cls.Category,
		Confidence:     roundTo(cls.Confidence, 4),
		SuggestedReply: reply.Text,
		ReplyProvider:  reply.Provider,
		ClassifiedBy:   cls.ClassifiedBy,
		Tokens:         pre.TokenCount,
		Preview:        SafeTruncate(raw, PreviewChars),
	}, nil
}

// Providers reports classifier and replier backends for the status endpoint.
func (a *Analyzer) Providers() map[string][]models.ProviderInfo {
	return map[string][]models.ProviderInfo{
		"classifiers": a.classifier.Providers(),
		"repliers":    a.suggester.Providers(),
	}
}

// SafeTruncate keeps text up to max characters; longer text is cut to
// max-3 characters followed by "...".
func SafeTruncate(text string, max int) string {
	if len([]rune(text)) <= max {
		return text
	}
	return prompts.Truncate(text, max-3) + "..."
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
