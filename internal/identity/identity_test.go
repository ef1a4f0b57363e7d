package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"latex-resume-backend/internal/shared/apperr"
	"latex-resume-backend/internal/shared/config"
	"latex-resume-backend/internal/shared/httpclient"
)

func TestSupabaseVerifierExchangesToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/user" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("apikey") != "service-key" {
			t.Errorf("missing apikey header")
		}
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"msg":"invalid JWT"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"user-1","email":"a@example.com"}`))
	}))
	defer server.Close()

	v := &SupabaseVerifier{BaseURL: server.URL + "/", APIKey: "service-key", Client: httpclient.New(time.Second)}

	user, err := v.Verify(context.Background(), "good")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if user.ID != "user-1" || user.Email != "a@example.com" {
		t.Fatalf("unexpected user %+v", user)
	}

	_, err = v.Verify(context.Background(), "expired")
	if apperr.KindOf(err) != apperr.KindUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestSupabaseVerifierTransportFailureIsUnauthenticated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	v := &SupabaseVerifier{BaseURL: url, APIKey: "k", Client: httpclient.New(time.Second)}
	_, err := v.Verify(context.Background(), "token")
	if apperr.Status(err) != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", apperr.Status(err))
	}
}

func TestSupabaseVerifierRequiresConfiguration(t *testing.T) {
	v := &SupabaseVerifier{}
	_, err := v.Verify(context.Background(), "token")
	if apperr.KindOf(err) != apperr.KindConfiguration {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func signToken(t *testing.T, secret string, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func TestJWTVerifier(t *testing.T) {
	v := &JWTVerifier{Secret: []byte("top-secret"), Audience: "authenticated"}
	valid := signToken(t, "top-secret", accessClaims{
		Email: "b@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-2",
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	user, err := v.Verify(context.Background(), valid)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if user.ID != "user-2" || user.Email != "b@example.com" {
		t.Fatalf("unexpected user %+v", user)
	}

	cases := map[string]string{
		"wrong secret": signToken(t, "other", accessClaims{RegisteredClaims: jwt.RegisteredClaims{
			Subject: "user-2", Audience: jwt.ClaimStrings{"authenticated"}, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}),
		"expired": signToken(t, "top-secret", accessClaims{RegisteredClaims: jwt.RegisteredClaims{
			Subject: "user-2", Audience: jwt.ClaimStrings{"authenticated"}, ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		}}),
		"no expiry": signToken(t, "top-secret", accessClaims{RegisteredClaims: jwt.RegisteredClaims{
			Subject: "user-2", Audience: jwt.ClaimStrings{"authenticated"},
		}}),
		"garbage": "not-a-jwt",
	}
	for name, token := range cases {
		if _, err := v.Verify(context.Background(), token); apperr.KindOf(err) != apperr.KindUnauthenticated {
			t.Fatalf("%s: expected unauthenticated, got %v", name, err)
		}
	}
}

func TestFromConfigSelectsVerifier(t *testing.T) {
	if _, ok := FromConfig(config.Config{SupabaseJWTSecret: "s"}).(*JWTVerifier); !ok {
		t.Fatalf("expected JWT verifier when secret is set")
	}
	if _, ok := FromConfig(config.Config{SupabaseURL: "https://x"}).(*SupabaseVerifier); !ok {
		t.Fatalf("expected Supabase verifier by default")
	}
}
