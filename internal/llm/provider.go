package llm

import (
	"context"
	"fmt"

	"email-triage/internal/models"
)

// Classifier is one remote classification backend.
type Classifier interface {
	Classify(ctx context.Context, text string) (models.Classification, error)
	// Configured reports whether the backend has the credential it needs.
	Configured() bool
	Name() string
	Model() string
}

// Replier is one remote reply generation backend.
type Replier interface {
	Reply(ctx context.Context, category, originalText string) (string, error)
	Configured() bool
	// Name is also the provider tag reported with the reply.
	Name() string
	Model() string
}

// attempt runs call, converting a panic inside a backend into an error.
func attempt[T any](name string, call func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", name, r)
		}
	}()
	return call()
}
