// Package credentials picks the LLM provider and API key for a request.
package credentials

import (
	"strings"

	"latex-resume-backend/internal/content"
	"latex-resume-backend/internal/shared/apperr"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

const (
	SourceUser    = "user"
	SourceDefault = "default"
)

// Credential is the provider and key chosen for a single request.
type Credential struct {
	Provider string
	APIKey   string
	Source   string
}

// ErrNotConfigured is returned when neither the user nor the deployment
// supplies an LLM key.
var ErrNotConfigured = apperr.New(apperr.KindConfiguration, "llm_not_configured", "No LLM API key is configured")

// Resolver chooses credentials: the user's own keys win over deployment
// defaults, and OpenAI wins over Gemini at each level.
type Resolver struct {
	DefaultOpenAI string
	DefaultGemini string
}

// FromSettings picks a credential from the user's loaded settings. An empty
// Settings value means no user override.
func (r *Resolver) FromSettings(settings content.Settings) (Credential, error) {
	candidates := []Credential{
		{Provider: ProviderOpenAI, APIKey: settings.OpenAIAPIKey, Source: SourceUser},
		{Provider: ProviderGemini, APIKey: settings.GeminiAPIKey, Source: SourceUser},
		{Provider: ProviderOpenAI, APIKey: r.DefaultOpenAI, Source: SourceDefault},
		{Provider: ProviderGemini, APIKey: r.DefaultGemini, Source: SourceDefault},
	}
	for _, c := range candidates {
		if key := strings.TrimSpace(c.APIKey); key != "" {
			c.APIKey = key
			return c, nil
		}
	}
	return Credential{}, ErrNotConfigured
}
