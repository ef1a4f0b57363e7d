package server

import (
	"github.com/gin-gonic/gin"

	"latex-resume-backend/internal/identity"
	"latex-resume-backend/internal/optimize"
	"latex-resume-backend/internal/pdf"
	"latex-resume-backend/internal/services/health"
	"latex-resume-backend/internal/shared/config"
	"latex-resume-backend/internal/shared/metrics"
	"latex-resume-backend/internal/shared/server/middleware"
	"latex-resume-backend/internal/shared/server/respond"
)

// prefixes lists the mount points of every route. The /api variants keep
// serverless-style paths working.
var prefixes = []string{"/", "/api"}

// Deps are the handlers and services the router mounts.
type Deps struct {
	Config   config.Config
	Verifier identity.Verifier
	Health   *health.Service
	Optimize *optimize.Handler
	PDF      *pdf.Handler
	Limiter  *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		metrics.Middleware(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)
	r.GET("/metrics", metrics.Handler())

	limiter := deps.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(nil)
	}
	compileLimit := middleware.Throttle(limiter, "compile", middleware.PerMinute(deps.Config.CompileRatePerMinute))
	llmLimit := middleware.Throttle(limiter, "llm", middleware.PerMinute(deps.Config.LLMRatePerMinute))

	for _, prefix := range prefixes {
		public := r.Group(prefix)
		public.GET("/", func(c *gin.Context) {
			respond.OK(c, deps.Health.Status(c.Request.Context()))
		})
		public.GET("/health", func(c *gin.Context) {
			respond.OK(c, deps.Health.Liveness())
		})
		deps.PDF.RegisterPublicRoutes(public, compileLimit)

		authed := r.Group(prefix, middleware.Auth(deps.Verifier))
		registerMeRoutes(authed)
		deps.Optimize.RegisterRoutes(authed, llmLimit)
		deps.PDF.RegisterRoutes(authed, compileLimit)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
