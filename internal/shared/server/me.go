package server

import (
	"github.com/gin-gonic/gin"

	"latex-resume-backend/internal/shared/server/middleware"
	"latex-resume-backend/internal/shared/server/respond"
)

type meResponse struct {
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
}

// registerMeRoutes attaches GET /me, which echoes the identity behind the
// bearer token. The group must already run middleware.Auth.
func registerMeRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", func(c *gin.Context) {
		respond.OK(c, meResponse{
			UserID: middleware.UserIDFromContext(c),
			Email:  middleware.UserEmailFromContext(c),
		})
	})
}
