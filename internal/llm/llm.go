// Package llm defines the provider-neutral completion contract used by the
// optimization flow.
package llm

import (
	"context"

	"latex-resume-backend/internal/shared/apperr"
)

// Request is a single JSON-mode completion.
type Request struct {
	System string
	Prompt string
}

// Provider completes prompts against one LLM vendor.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// Failure reports a provider-side rejection with its diagnostic text.
func Failure(provider, detail string) *apperr.Error {
	return apperr.New(apperr.KindUpstreamFailure, "llm_failed", "AI provider request failed").
		WithDetails(provider + ": " + detail)
}

// TransportFailure classifies an error reaching the provider.
func TransportFailure(err error) *apperr.Error {
	return apperr.FromTransport(err, "llm")
}
