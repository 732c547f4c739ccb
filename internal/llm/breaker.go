package llm

import (
	"context"
	"errors"
	"time"

	"email-triage/internal/models"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerSettings configures the circuit breaker placed in front of a backend.
type BreakerSettings struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

func newBreaker(name string, settings BreakerSettings, logger *zap.Logger) *gobreaker.CircuitBreaker {
	if settings.ConsecutiveFailures == 0 {
		settings.ConsecutiveFailures = 5
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
		},
		// A caller going away says nothing about the backend's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("provider", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}

// BreakerClassifier fails fast while its backend is considered down.
type BreakerClassifier struct {
	Classifier
	cb *gobreaker.CircuitBreaker
}

// WithClassifierBreaker wraps c with a circuit breaker.
func WithClassifierBreaker(c Classifier, settings BreakerSettings, logger *zap.Logger) *BreakerClassifier {
	return &BreakerClassifier{
		Classifier: c,
		cb:         newBreaker(c.Name(), settings, logger),
	}
}

func (b *BreakerClassifier) Classify(ctx context.Context, text string) (models.Classification, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.Classifier.Classify(ctx, text)
	})
	if err != nil {
		return models.Classification{}, err
	}
	return out.(models.Classification), nil
}

// BreakerReplier fails fast while its backend is considered down.
type BreakerReplier struct {
	Replier
	cb *gobreaker.CircuitBreaker
}

// WithReplierBreaker wraps r with a circuit breaker.
func WithReplierBreaker(r Replier, settings BreakerSettings, logger *zap.Logger) *BreakerReplier {
	return &BreakerReplier{
		Replier: r,
		cb:      newBreaker(r.Name()+"-reply", settings, logger),
	}
}

func (b *BreakerReplier) Reply(ctx context.Context, category, originalText string) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.Replier.Reply(ctx, category, originalText)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}
