package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"latex-resume-backend/internal/shared/apperr"
	"latex-resume-backend/internal/shared/httpclient"
)

// SupabaseVerifier resolves tokens through the GoTrue /auth/v1/user endpoint.
type SupabaseVerifier struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

type supabaseUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (v *SupabaseVerifier) Verify(ctx context.Context, token string) (User, error) {
	if strings.TrimSpace(v.BaseURL) == "" || strings.TrimSpace(v.APIKey) == "" {
		return User{}, apperr.New(apperr.KindConfiguration, "auth_not_configured", "SUPABASE_URL and a Supabase key are required")
	}
	if strings.TrimSpace(token) == "" {
		return User{}, unauthenticated(errors.New("empty token"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(v.BaseURL, "/")+"/auth/v1/user", nil)
	if err != nil {
		return User{}, fmt.Errorf("build auth request: %w", err)
	}
	req.Header.Set("apikey", v.APIKey)
	req.Header.Set("Authorization", "Bearer "+token)

	client := v.Client
	if client == nil {
		client = httpclient.New(verifyTimeout)
	}
	resp, err := client.Do(req)
	if err != nil {
		return User{}, unauthenticated(fmt.Errorf("auth exchange: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return User{}, unauthenticated(fmt.Errorf("auth exchange status %d: %s", resp.StatusCode, httpclient.ErrorText(resp)))
	}

	var u supabaseUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return User{}, unauthenticated(fmt.Errorf("decode auth user: %w", err))
	}
	if u.ID == "" {
		return User{}, unauthenticated(errors.New("auth user missing id"))
	}
	return User{ID: u.ID, Email: u.Email}, nil
}

var _ Verifier = (*SupabaseVerifier)(nil)
