package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Converter strategies selectable with PDF_CONVERTER.
const (
	ConverterLocal       = "local"
	ConverterRemote      = "remote"
	ConverterLatexOnline = "latexonline"
)

// Config holds application configuration. Secrets may be empty; components
// that need them fail per request with a configuration error.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string

	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseAnonKey    string
	SupabaseJWTSecret  string
	DatabaseURL        string

	OpenAIAPIKey string
	GeminiAPIKey string
	LLMModel     string
	GeminiModel  string
	LLMTimeout   time.Duration

	Converter           string
	LatexCompiler       string
	LatexTimeout        time.Duration
	LatexConvertURL     string
	LatexConvertAPIKey  string
	LatexConvertTimeout time.Duration
	LatexOnlineURL      string
	LatexOnlineTimeout  time.Duration

	CompileRatePerMinute int
	LLMRatePerMinute     int

	OTLPEndpoint string
	ServiceName  string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             normalizeEnv(getEnv("ENV", "dev")),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "*")),

		SupabaseURL:        strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		SupabaseAnonKey:    getEnv("SUPABASE_ANON_KEY", ""),
		SupabaseJWTSecret:  getEnv("SUPABASE_JWT_SECRET", ""),
		DatabaseURL:        getEnv("DATABASE_URL", ""),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		LLMModel:     getEnv("LLM_MODEL", "gpt-4o-mini"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		LLMTimeout:   getEnvSeconds("LLM_TIMEOUT_SECONDS", 120*time.Second),

		Converter:           normalizeConverter(getEnv("PDF_CONVERTER", ConverterLocal)),
		LatexCompiler:       getEnv("LATEX_COMPILER", "pdflatex"),
		LatexTimeout:        getEnvSeconds("LATEX_TIMEOUT_SECONDS", 30*time.Second),
		LatexConvertURL:     getEnv("LATEX_CONVERT_URL", ""),
		LatexConvertAPIKey:  getEnv("LATEX_CONVERT_API_KEY", ""),
		LatexConvertTimeout: getEnvSeconds("LATEX_CONVERT_TIMEOUT_SECONDS", 60*time.Second),
		LatexOnlineURL:      getEnv("LATEXONLINE_URL", "https://latexonline.cc/data"),
		LatexOnlineTimeout:  getEnvSeconds("LATEXONLINE_TIMEOUT_SECONDS", 60*time.Second),

		CompileRatePerMinute: getEnvInt("RATE_LIMIT_COMPILE_PER_MINUTE", 30),
		LLMRatePerMinute:     getEnvInt("RATE_LIMIT_LLM_PER_MINUTE", 10),

		OTLPEndpoint: firstNonEmpty(os.Getenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"), os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
		ServiceName:  getEnv("OTEL_SERVICE_NAME", "latex-resume-backend"),
	}
}

// Secrets reports which secrets are configured, by name.
func (c Config) Secrets() map[string]bool {
	return map[string]bool{
		"supabase_url":          c.SupabaseURL != "",
		"supabase_service_key":  c.SupabaseServiceKey != "",
		"supabase_jwt_secret":   c.SupabaseJWTSecret != "",
		"database_url":          c.DatabaseURL != "",
		"openai_api_key":        c.OpenAIAPIKey != "",
		"gemini_api_key":        c.GeminiAPIKey != "",
		"latex_convert_api_key": c.LatexConvertAPIKey != "",
	}
}

// AuthKey returns the key sent as apikey to the auth backend.
func (c Config) AuthKey() string {
	return firstNonEmpty(c.SupabaseServiceKey, c.SupabaseAnonKey)
}

// IsDevLike reports whether the environment allows in-memory fallbacks.
func (c Config) IsDevLike() bool {
	return c.Env == "dev" || c.Env == "local"
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getEnvSeconds(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
		return time.Duration(parsed) * time.Second
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
		return parsed
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "test":
		return "test"
	default:
		return "dev"
	}
}

func normalizeConverter(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "remote", "service":
		return ConverterRemote
	case "latexonline", "latex-online":
		return ConverterLatexOnline
	default:
		return ConverterLocal
	}
}
