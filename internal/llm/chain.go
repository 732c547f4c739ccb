package llm

import (
	"context"

	"email-triage/internal/heuristics"
	"email-triage/internal/models"

	"go.uber.org/zap"
)

// Chain tries classifiers in a fixed priority order and falls back to the
// keyword heuristic. It holds no mutable state and is safe for concurrent use.
type Chain struct {
	classifiers []Classifier
	logger      *zap.Logger
}

// NewChain creates a chain; classifiers are tried in the order given.
func NewChain(logger *zap.Logger, classifiers ...Classifier) *Chain {
	for i, c := range classifiers {
		logger.Info("Classifier registered",
			zap.String("provider", c.Name()),
			zap.String("model", c.Model()),
			zap.Bool("configured", c.Configured()),
			zap.Int("priority", i))
	}
	return &Chain{
		classifiers: classifiers,
		logger:      logger,
	}
}

// Classify never fails: every backend error is logged and absorbed.
func (c *Chain) Classify(ctx context.Context, text string) models.Classification {
	for i, classifier := range c.classifiers {
		if !classifier.Configured() {
			c.logger.Debug("Classifier not configured, skipping",
				zap.String("provider", classifier.Name()))
			continue
		}

		result, err := attempt(classifier.Name(), func() (models.Classification, error) {
			return classifier.Classify(ctx, text)
		})
		if err == nil {
			return result
		}

		c.logger.Warn("Classifier failed, falling back",
			zap.String("provider", classifier.Name()),
			zap.Int("priority", i),
			zap.Error(err))
	}

	return heuristics.Classify(text)
}

// Providers describes every registered classifier plus the heuristic fallback.
func (c *Chain) Providers() []models.ProviderInfo {
	info := make([]models.ProviderInfo, 0, len(c.classifiers)+1)
	for _, classifier := range c.classifiers {
		info = append(info, models.ProviderInfo{
			Name:       classifier.Name(),
			Model:      classifier.Model(),
			Configured: classifier.Configured(),
		})
	}
	return append(info, models.ProviderInfo{
		Name:       models.ClassifiedByHeuristics,
		Configured: true,
	})
}
