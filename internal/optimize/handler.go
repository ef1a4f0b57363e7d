package optimize

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"latex-resume-backend/internal/content"
	"latex-resume-backend/internal/shared/server/middleware"
	"latex-resume-backend/internal/shared/server/respond"
)

// Runner is the part of Service the HTTP layer depends on.
type Runner interface {
	Run(ctx context.Context, req Request) (content.Result, error)
	History(ctx context.Context, userID string) ([]content.HistoryEntry, error)
}

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc Runner
}

// NewHandler constructs a Handler.
func NewHandler(svc Runner) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the generation and history routes to an
// authenticated group. limit runs before the generation handlers only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, limit ...gin.HandlerFunc) {
	rg.POST("/optimize-resume", chain(limit, h.run(content.KindResume))...)
	rg.POST("/generate-cover-letter", chain(limit, h.run(content.KindCoverLetter))...)
	rg.GET("/history", h.history)
}

func chain(pre []gin.HandlerFunc, last gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(pre)+1)
	out = append(out, pre...)
	return append(out, last)
}

type runRequest struct {
	JobDescriptionID string `json:"jobDescriptionId"`
}

func (h *Handler) run(kind content.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req runRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			respond.Error(c, http.StatusBadRequest, "invalid_request", "Invalid request body", nil)
			return
		}
		c.Set(middleware.JobDescriptionIDKey, req.JobDescriptionID)

		result, err := h.Svc.Run(c.Request.Context(), Request{
			UserID:           middleware.UserIDFromContext(c),
			Kind:             kind,
			JobDescriptionID: req.JobDescriptionID,
		})
		if err != nil {
			respond.FromError(c, err)
			return
		}
		c.Set(middleware.ResultIDKey, result.ID)
		respond.OK(c, result)
	}
}

func (h *Handler) history(c *gin.Context) {
	entries, err := h.Svc.History(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, gin.H{"history": entries})
}
