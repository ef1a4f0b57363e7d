package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"latex-resume-backend/internal/identity"
	"latex-resume-backend/internal/shared/apperr"
	"latex-resume-backend/internal/shared/server/respond"
)

const (
	userIDKey    = "userId"
	userEmailKey = "userEmail"
)

// Auth requires an `Authorization: Bearer <token>` header and resolves it to
// a user through verifier. Requests without one are rejected before any
// upstream call.
func Auth(verifier identity.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			respond.NoContent(c)
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(authHeader, "Bearer ") {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Unauthorized", nil)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if token == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Unauthorized", nil)
			return
		}

		user, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindUnauthenticated {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "Unauthorized", nil)
				return
			}
			respond.FromError(c, err)
			return
		}

		c.Set(userIDKey, user.ID)
		if user.Email != "" {
			c.Set(userEmailKey, user.Email)
		}
		c.Next()
	}
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

// UserEmailFromContext fetches the user email set by the auth middleware.
func UserEmailFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userEmailKey)
	if email, ok := val.(string); ok {
		return email
	}
	return ""
}
