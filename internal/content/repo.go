package content

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"latex-resume-backend/internal/shared/apperr"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

// Repo reads user content and writes generated results.
type Repo interface {
	GetJobDescription(ctx context.Context, id string) (JobDescription, error)
	GetCurrentDocument(ctx context.Context, userID string, kind Kind) (Document, error)
	GetSettings(ctx context.Context, userID string) (Settings, error)
	InsertResult(ctx context.Context, result Result) (Result, error)
	GetResult(ctx context.Context, userID string, kind Kind, id string) (Result, error)
	ListHistory(ctx context.Context, userID string, kind Kind) ([]HistoryEntry, error)
}

// Row ids are UUIDs in every backing store; anything else cannot match.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// UnconfiguredRepo fails every call with a configuration error. It stands in
// when no database is configured outside dev so the process still starts.
type UnconfiguredRepo struct{}

var errNoStore = apperr.New(apperr.KindConfiguration, "database_not_configured", "DATABASE_URL or SUPABASE_URL with SUPABASE_SERVICE_ROLE_KEY is required")

func (UnconfiguredRepo) GetJobDescription(context.Context, string) (JobDescription, error) {
	return JobDescription{}, errNoStore
}

func (UnconfiguredRepo) GetCurrentDocument(context.Context, string, Kind) (Document, error) {
	return Document{}, errNoStore
}

func (UnconfiguredRepo) GetSettings(context.Context, string) (Settings, error) {
	return Settings{}, errNoStore
}

func (UnconfiguredRepo) InsertResult(context.Context, Result) (Result, error) {
	return Result{}, errNoStore
}

func (UnconfiguredRepo) GetResult(context.Context, string, Kind, string) (Result, error) {
	return Result{}, errNoStore
}

func (UnconfiguredRepo) ListHistory(context.Context, string, Kind) ([]HistoryEntry, error) {
	return nil, errNoStore
}

var _ Repo = UnconfiguredRepo{}
