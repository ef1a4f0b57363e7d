package health

import (
	"context"
	"time"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Service reports process identity and which dependencies are configured.
type Service struct {
	Name      string
	Converter string
	Secrets   map[string]bool
	DB        Pinger
	now       func() time.Time
}

// NewService constructs a health service.
func NewService(name, converter string, secrets map[string]bool, db Pinger) *Service {
	return &Service{Name: name, Converter: converter, Secrets: secrets, DB: db, now: time.Now}
}

// Liveness is the body of GET /health.
func (s *Service) Liveness() map[string]string {
	return map[string]string{"status": "healthy"}
}

// Status is the body of GET /, a probe listing configured secrets by name.
// Secret values are never included.
func (s *Service) Status(ctx context.Context) map[string]any {
	configured := make(map[string]bool, len(s.Secrets))
	for k, v := range s.Secrets {
		configured[k] = v
	}
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	return map[string]any{
		"service":    s.Name,
		"status":     "ok",
		"converter":  s.Converter,
		"configured": configured,
		"database":   s.database(ctx),
		"timestamp":  now().UTC().Format(time.RFC3339),
	}
}

func (s *Service) database(ctx context.Context) string {
	if s.DB == nil {
		return "not_configured"
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		return "unreachable"
	}
	return "ok"
}
