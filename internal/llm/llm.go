// Package llm talks to the generative-language provider. Each call is a single
// prompt and a single best-effort completion; nothing is retried.
package llm

import (
	"context"
	"fmt"
)

// Completion is the first candidate a provider returned. HasCandidate is false when the
// provider answered successfully but produced nothing.
type Completion struct {
	Text         string
	HasCandidate bool
}

// Completer sends one prompt and returns one completion.
type Completer interface {
	Complete(ctx context.Context, prompt string) (Completion, error)
}

// ProviderError is a non-success response from the provider.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s API error: %d - %s", e.Provider, e.StatusCode, e.Body)
}
