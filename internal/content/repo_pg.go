package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// GetJobDescription returns the job description with the given id.
func (r *PGRepo) GetJobDescription(ctx context.Context, id string) (JobDescription, error) {
	if !validID(id) {
		return JobDescription{}, ErrNotFound
	}
	const query = `
SELECT id, user_id, title, company, description
FROM job_descriptions
WHERE id = $1`
	var job JobDescription
	var company sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&job.ID, &job.UserID, &job.Title, &company, &job.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return JobDescription{}, ErrNotFound
		}
		return JobDescription{}, err
	}
	if company.Valid {
		job.Company = &company.String
	}
	return job, nil
}

// GetCurrentDocument returns the user's current resume or cover letter.
func (r *PGRepo) GetCurrentDocument(ctx context.Context, userID string, kind Kind) (Document, error) {
	if !kind.Valid() {
		return Document{}, fmt.Errorf("unknown content kind %q", kind)
	}
	query := fmt.Sprintf(`
SELECT id, user_id, latex_content, is_current
FROM %s
WHERE user_id = $1 AND is_current = true
ORDER BY created_at DESC
LIMIT 1`, kind.DocumentTable())
	doc := Document{Kind: kind}
	var latex sql.NullString
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(&doc.ID, &doc.UserID, &latex, &doc.IsCurrent)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	doc.LatexContent = latex.String
	return doc, nil
}

// GetSettings returns the user's settings row.
func (r *PGRepo) GetSettings(ctx context.Context, userID string) (Settings, error) {
	const query = `
SELECT user_id, ai_prompt, openai_api_key, gemini_api_key
FROM user_settings
WHERE user_id = $1`
	var settings Settings
	var prompt, openaiKey, geminiKey sql.NullString
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(&settings.UserID, &prompt, &openaiKey, &geminiKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Settings{}, ErrNotFound
		}
		return Settings{}, err
	}
	settings.AIPrompt = prompt.String
	settings.OpenAIAPIKey = openaiKey.String
	settings.GeminiAPIKey = geminiKey.String
	return settings, nil
}

// InsertResult writes a new result row and returns it as stored.
func (r *PGRepo) InsertResult(ctx context.Context, result Result) (Result, error) {
	if !result.Kind.Valid() {
		return Result{}, fmt.Errorf("unknown content kind %q", result.Kind)
	}
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
    id,
    user_id,
    job_description_id,
    %s,
    optimized_latex,
    suggestions,
    ats_score,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, created_at`, result.Kind.ResultTable(), result.Kind.DocumentColumn())

	var score sql.NullInt64
	if result.ATSScore != nil {
		score = sql.NullInt64{Int64: int64(*result.ATSScore), Valid: true}
	}
	err := r.DB.QueryRowContext(
		ctx,
		query,
		result.ID,
		result.UserID,
		result.JobDescriptionID,
		result.DocumentID,
		result.OptimizedLatex,
		result.Suggestions,
		score,
		result.CreatedAt,
	).Scan(&result.ID, &result.CreatedAt)
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

// GetResult returns a stored result owned by the user.
func (r *PGRepo) GetResult(ctx context.Context, userID string, kind Kind, id string) (Result, error) {
	if !kind.Valid() {
		return Result{}, fmt.Errorf("unknown content kind %q", kind)
	}
	if !validID(id) {
		return Result{}, ErrNotFound
	}
	query := fmt.Sprintf(`
SELECT id, user_id, job_description_id, %s, optimized_latex, suggestions, ats_score, created_at
FROM %s
WHERE id = $1 AND user_id = $2`, kind.DocumentColumn(), kind.ResultTable())

	result := Result{Kind: kind}
	var docID, latex, suggestions sql.NullString
	var score sql.NullInt64
	err := r.DB.QueryRowContext(ctx, query, id, userID).Scan(
		&result.ID,
		&result.UserID,
		&result.JobDescriptionID,
		&docID,
		&latex,
		&suggestions,
		&score,
		&result.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Result{}, ErrNotFound
		}
		return Result{}, err
	}
	result.DocumentID = docID.String
	result.OptimizedLatex = latex.String
	result.Suggestions = suggestions.String
	if score.Valid {
		v := int(score.Int64)
		result.ATSScore = &v
	}
	return result, nil
}

// ListHistory returns the user's results of one kind, newest first.
func (r *PGRepo) ListHistory(ctx context.Context, userID string, kind Kind) ([]HistoryEntry, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown content kind %q", kind)
	}
	query := fmt.Sprintf(`
SELECT r.id, r.created_at, r.ats_score, r.suggestions, j.id, j.title, j.company, j.description
FROM %s r
LEFT JOIN job_descriptions j ON j.id = r.job_description_id
WHERE r.user_id = $1
ORDER BY r.created_at DESC`, kind.ResultTable())

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []HistoryEntry{}
	for rows.Next() {
		entry := HistoryEntry{Type: kind.HistoryType()}
		var score sql.NullInt64
		var suggestions, jobID, title, company, description sql.NullString
		if err := rows.Scan(&entry.ID, &entry.CreatedAt, &score, &suggestions, &jobID, &title, &company, &description); err != nil {
			return nil, err
		}
		entry.Suggestions = suggestions.String
		if score.Valid {
			v := int(score.Int64)
			entry.ATSScore = &v
		}
		if jobID.Valid {
			entry.JobDescription = &JobSummary{Title: title.String, Description: description.String}
			if company.Valid {
				entry.JobDescription.Company = &company.String
			}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

var _ Repo = (*PGRepo)(nil)
