package pdf

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

const maxLatexBody = 2 << 20 // 2MB

// Renderer is the part of Service the HTTP layer depends on.
type Renderer interface {
	Render(ctx context.Context, latex string) (Rendered, error)
	RenderResult(ctx context.Context, userID string, kind content.Kind, id string) (Rendered, error)
}

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc Renderer
}

// NewHandler constructs a Handler.
func NewHandler(svc Renderer) *Handler {
	return &Handler{Svc: svc}
}

// RegisterPublicRoutes attaches the unauthenticated conversion endpoint.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup, limit ...gin.HandlerFunc) {
	rg.POST("/generate-pdf", chain(limit, h.generate)...)
}

// RegisterRoutes attaches export endpoints for stored results to an
// authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, limit ...gin.HandlerFunc) {
	rg.POST("/optimizations/:id/pdf", chain(limit, h.export(content.KindResume))...)
	rg.POST("/cover-letter-generations/:id/pdf", chain(limit, h.export(content.KindCoverLetter))...)
}

type generateRequest struct {
	LatexContent string `json:"latex_content"`
	Latex        string `json:"latex"`
}

type pdfResponse struct {
	PDF   string `json:"pdf"`
	Pages int    `json:"pages,omitempty"`
}

func (h *Handler) generate(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxLatexBody)

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "LaTeX document is too large", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "invalid_request", "Invalid request body", nil)
		return
	}
	latex := req.LatexContent
	if latex == "" {
		latex = req.Latex
	}

	out, err := h.Svc.Render(c.Request.Context(), latex)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, pdfResponse{PDF: out.PDF, Pages: out.Pages})
}

func (h *Handler) export(kind content.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		c.Set(middleware.ResultIDKey, id)
		out, err := h.Svc.RenderResult(c.Request.Context(), middleware.UserIDFromContext(c), kind, id)
		if err != nil {
			respond.FromError(c, err)
			return
		}
		respond.OK(c, pdfResponse{PDF: out.PDF, Pages: out.Pages})
	}
}

func chain(pre []gin.HandlerFunc, last gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(pre)+1)
	out = append(out, pre...)
	return append(out, last)
}
