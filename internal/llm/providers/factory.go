// Package providers builds LLM clients for resolved credentials.
package providers

import (
	"context"
	"fmt"
	"io"
	"time"

	"latex-resume-backend/internal/credentials"
	"latex-resume-backend/internal/llm"
	"latex-resume-backend/internal/llm/gemini"
	"latex-resume-backend/internal/llm/openai"
	"latex-resume-backend/internal/shared/apperr"
	"latex-resume-backend/internal/shared/metrics"
	"latex-resume-backend/internal/shared/telemetry"
)

// Factory constructs a fresh provider per request. Nothing is cached
// between requests, so a user's key is never reused for another user.
type Factory struct {
	OpenAIModel string
	GeminiModel string
	Timeout     time.Duration
}

// New returns an instrumented provider for cred. The result implements
// io.Closer and must be closed when the request is done.
func (f Factory) New(ctx context.Context, cred credentials.Credential) (llm.Provider, error) {
	var (
		p   llm.Provider
		err error
	)
	switch cred.Provider {
	case credentials.ProviderOpenAI:
		p, err = openai.NewClient(cred.APIKey, f.OpenAIModel, f.Timeout)
	case credentials.ProviderGemini:
		p, err = gemini.NewClient(ctx, cred.APIKey, f.GeminiModel, f.Timeout)
	default:
		err = fmt.Errorf("unknown provider %q", cred.Provider)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindConfiguration, "llm_not_configured", "AI provider could not be initialised", err)
	}
	return &instrumented{Provider: p, source: cred.Source}, nil
}

type instrumented struct {
	llm.Provider
	source string
}

func (i *instrumented) Complete(ctx context.Context, req llm.Request) (string, error) {
	start := time.Now()
	out, err := i.Provider.Complete(ctx, req)
	outcome := "ok"
	if err != nil {
		outcome = apperr.KindOf(err).String()
	}
	metrics.ObserveLLMRequest(i.Name(), outcome)

	fields := map[string]any{
		"provider":    i.Name(),
		"key_source":  i.source,
		"duration_ms": time.Since(start).Milliseconds(),
		"outcome":     outcome,
	}
	if err != nil {
		fields["error"] = err
		telemetry.Warn("llm.request_failed", fields)
		return "", err
	}
	telemetry.Info("llm.request", fields)
	return out, nil
}

// Close releases the wrapped client when it holds resources.
func (i *instrumented) Close() error {
	if closer, ok := i.Provider.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
