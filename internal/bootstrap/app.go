// Package bootstrap assembles the application from configuration.
package bootstrap

import (
	"context"
	"database/sql"
	"strings"

	"github.com/gin-gonic/gin"

	"latex-resume-backend/internal/content"
	"latex-resume-backend/internal/converter"
	"latex-resume-backend/internal/credentials"
	"latex-resume-backend/internal/identity"
	"latex-resume-backend/internal/llm/providers"
	"latex-resume-backend/internal/optimize"
	"latex-resume-backend/internal/pdf"
	"latex-resume-backend/internal/services/health"
	"latex-resume-backend/internal/shared/config"
	"latex-resume-backend/internal/shared/server"
	"latex-resume-backend/internal/shared/server/middleware"
	"latex-resume-backend/internal/shared/storage/db"
	"latex-resume-backend/internal/shared/telemetry"
)

// Store names reported by App.StoreKind.
const (
	StorePostgres     = "postgres"
	StorePostgREST    = "postgrest"
	StoreMemory       = "memory"
	StoreUnconfigured = "unconfigured"
)

// App holds shared dependencies.
type App struct {
	Config    config.Config
	Router    *gin.Engine
	DB        *sql.DB
	Repo      content.Repo
	StoreKind string
	Verifier  identity.Verifier
	Converter converter.Converter

	OptimizeService *optimize.Service
	PDFService      *pdf.Service
	HealthService   *health.Service
	OptimizeHandler *optimize.Handler
	PDFHandler      *pdf.Handler
}

// Build prepares every dependency and the router. Missing secrets never fail
// the build; the affected requests fail with a configuration error instead.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ServiceName) == "" {
		cfg.ServiceName = "latex-resume-backend"
	}
	ctx := context.Background()

	app := &App{Config: cfg}
	app.DB = buildDB(ctx, cfg)
	app.Repo, app.StoreKind = buildRepo(cfg, app.DB)
	app.Verifier = identity.FromConfig(cfg)
	app.Converter = converter.FromConfig(cfg)

	buildServices(app)

	app.Router = server.NewRouter(server.Deps{
		Config:   cfg,
		Verifier: app.Verifier,
		Health:   app.HealthService,
		Optimize: app.OptimizeHandler,
		PDF:      app.PDFHandler,
		Limiter:  middleware.NewRateLimiter(nil),
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":       cfg.Env,
		"store":     app.StoreKind,
		"converter": app.Converter.Name(),
	})
	return app, nil
}

// buildDB connects and migrates when DATABASE_URL is set. Failures are logged
// and leave the process on the next available store.
func buildDB(ctx context.Context, cfg config.Config) *sql.DB {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsServerless() {
		opts := db.OptionsFromEnv(db.DefaultServerlessOptions())
		sqlDB, err = db.Shared(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		telemetry.Error("bootstrap.database_connect_failed", map[string]any{"error": err.Error()})
		return nil
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		telemetry.Error("bootstrap.migrations_failed", map[string]any{"error": err.Error()})
	}
	return sqlDB
}

// buildRepo picks the content store: direct Postgres, then PostgREST with the
// service role key, then memory in dev-like environments.
func buildRepo(cfg config.Config, sqlDB *sql.DB) (content.Repo, string) {
	switch {
	case sqlDB != nil:
		return &content.PGRepo{DB: sqlDB}, StorePostgres
	case cfg.SupabaseURL != "" && cfg.SupabaseServiceKey != "":
		return &content.RESTRepo{BaseURL: cfg.SupabaseURL, APIKey: cfg.SupabaseServiceKey}, StorePostgREST
	case cfg.IsDevLike():
		telemetry.Warn("bootstrap.memory_store", map[string]any{"reason": "no database configured"})
		return content.NewMemoryRepo(), StoreMemory
	default:
		telemetry.Warn("bootstrap.store_unconfigured", map[string]any{
			"reason": "set DATABASE_URL or SUPABASE_URL with SUPABASE_SERVICE_ROLE_KEY",
		})
		return content.UnconfiguredRepo{}, StoreUnconfigured
	}
}

func buildServices(app *App) {
	cfg := app.Config

	resolver := &credentials.Resolver{
		DefaultOpenAI: cfg.OpenAIAPIKey,
		DefaultGemini: cfg.GeminiAPIKey,
	}
	factory := providers.Factory{
		OpenAIModel: cfg.LLMModel,
		GeminiModel: cfg.GeminiModel,
		Timeout:     cfg.LLMTimeout,
	}

	app.OptimizeService = optimize.NewService(app.Repo, resolver, factory)
	app.PDFService = pdf.NewService(app.Converter, app.OptimizeService)

	// A nil *sql.DB must not reach health as a non-nil Pinger.
	var pinger health.Pinger
	if app.DB != nil {
		pinger = app.DB
	}
	app.HealthService = health.NewService(cfg.ServiceName, app.Converter.Name(), cfg.Secrets(), pinger)

	app.OptimizeHandler = optimize.NewHandler(app.OptimizeService)
	app.PDFHandler = pdf.NewHandler(app.PDFService)
}
