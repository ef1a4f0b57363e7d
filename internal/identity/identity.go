// Package identity exchanges bearer tokens for verified users.
package identity

import (
	"context"
	"time"

	"latex-resume-backend/internal/shared/apperr"
	"latex-resume-backend/internal/shared/config"
	"latex-resume-backend/internal/shared/httpclient"
)

const verifyTimeout = 10 * time.Second

// User is the identity behind a verified token.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// Verifier checks a bearer token on every call; nothing is cached.
type Verifier interface {
	Verify(ctx context.Context, token string) (User, error)
}

func unauthenticated(err error) *apperr.Error {
	return apperr.Wrap(apperr.KindUnauthenticated, "unauthorized", "Unauthorized", err)
}

// FromConfig verifies locally when a JWT secret is configured and otherwise
// asks the auth backend.
func FromConfig(cfg config.Config) Verifier {
	if cfg.SupabaseJWTSecret != "" {
		return &JWTVerifier{Secret: []byte(cfg.SupabaseJWTSecret), Audience: "authenticated"}
	}
	return &SupabaseVerifier{
		BaseURL: cfg.SupabaseURL,
		APIKey:  cfg.AuthKey(),
		Client:  httpclient.New(verifyTimeout),
	}
}
