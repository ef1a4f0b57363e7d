package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// JWTVerifier validates HS256 access tokens signed with the project JWT secret.
type JWTVerifier struct {
	Secret   []byte
	Audience string
}

type accessClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (User, error) {
	if len(v.Secret) == 0 {
		return User{}, unauthenticated(errors.New("jwt secret not configured"))
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.Audience))
	}

	var claims accessClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.Secret, nil
	}, opts...)
	if err != nil {
		return User{}, unauthenticated(fmt.Errorf("parse token: %w", err))
	}
	if claims.Subject == "" {
		return User{}, unauthenticated(errors.New("token missing sub"))
	}
	return User{ID: claims.Subject, Email: claims.Email}, nil
}

var _ Verifier = (*JWTVerifier)(nil)
