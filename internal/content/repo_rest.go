package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"latex-resume-backend/internal/shared/apperr"
	"latex-resume-backend/internal/shared/httpclient"
)

const restTimeout = 15 * time.Second

// RESTRepo implements Repo against the Supabase PostgREST API using the
// service role key.
type RESTRepo struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

type jobRow struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	Title       string  `json:"title"`
	Company     *string `json:"company"`
	Description string  `json:"description"`
}

type documentRow struct {
	ID           string  `json:"id"`
	UserID       string  `json:"user_id"`
	LatexContent *string `json:"latex_content"`
	IsCurrent    bool    `json:"is_current"`
}

type settingsRow struct {
	UserID       string  `json:"user_id"`
	AIPrompt     *string `json:"ai_prompt"`
	OpenAIAPIKey *string `json:"openai_api_key"`
	GeminiAPIKey *string `json:"gemini_api_key"`
}

type resultRow struct {
	ID               string      `json:"id"`
	UserID           string      `json:"user_id"`
	JobDescriptionID string      `json:"job_description_id"`
	ResumeID         *string     `json:"resume_id,omitempty"`
	CoverLetterID    *string     `json:"cover_letter_id,omitempty"`
	OptimizedLatex   *string     `json:"optimized_latex"`
	Suggestions      *string     `json:"suggestions"`
	ATSScore         *float64    `json:"ats_score"`
	CreatedAt        time.Time   `json:"created_at"`
	JobDescription   *JobSummary `json:"job_descriptions,omitempty"`
}

func (r resultRow) toResult(kind Kind) Result {
	res := Result{
		ID:               r.ID,
		UserID:           r.UserID,
		Kind:             kind,
		JobDescriptionID: r.JobDescriptionID,
		OptimizedLatex:   deref(r.OptimizedLatex),
		Suggestions:      deref(r.Suggestions),
		ATSScore:         roundScore(r.ATSScore),
		CreatedAt:        r.CreatedAt,
	}
	if kind == KindCoverLetter {
		res.DocumentID = deref(r.CoverLetterID)
	} else {
		res.DocumentID = deref(r.ResumeID)
	}
	return res
}

// GetJobDescription returns the job description with the given id.
func (r *RESTRepo) GetJobDescription(ctx context.Context, id string) (JobDescription, error) {
	if !validID(id) {
		return JobDescription{}, ErrNotFound
	}
	q := url.Values{}
	q.Set("select", "id,user_id,title,company,description")
	q.Set("id", "eq."+id)
	q.Set("limit", "1")
	var rows []jobRow
	if err := r.do(ctx, http.MethodGet, "job_descriptions", q, nil, &rows); err != nil {
		return JobDescription{}, err
	}
	if len(rows) == 0 {
		return JobDescription{}, ErrNotFound
	}
	row := rows[0]
	return JobDescription{ID: row.ID, UserID: row.UserID, Title: row.Title, Company: row.Company, Description: row.Description}, nil
}

// GetCurrentDocument returns the user's current resume or cover letter.
func (r *RESTRepo) GetCurrentDocument(ctx context.Context, userID string, kind Kind) (Document, error) {
	if !kind.Valid() {
		return Document{}, fmt.Errorf("unknown content kind %q", kind)
	}
	q := url.Values{}
	q.Set("select", "id,user_id,latex_content,is_current")
	q.Set("user_id", "eq."+userID)
	q.Set("is_current", "eq.true")
	q.Set("order", "created_at.desc")
	q.Set("limit", "1")
	var rows []documentRow
	if err := r.do(ctx, http.MethodGet, kind.DocumentTable(), q, nil, &rows); err != nil {
		return Document{}, err
	}
	if len(rows) == 0 {
		return Document{}, ErrNotFound
	}
	row := rows[0]
	return Document{ID: row.ID, UserID: row.UserID, Kind: kind, LatexContent: deref(row.LatexContent), IsCurrent: row.IsCurrent}, nil
}

// GetSettings returns the user's settings row.
func (r *RESTRepo) GetSettings(ctx context.Context, userID string) (Settings, error) {
	q := url.Values{}
	q.Set("select", "user_id,ai_prompt,openai_api_key,gemini_api_key")
	q.Set("user_id", "eq."+userID)
	q.Set("limit", "1")
	var rows []settingsRow
	if err := r.do(ctx, http.MethodGet, "user_settings", q, nil, &rows); err != nil {
		return Settings{}, err
	}
	if len(rows) == 0 {
		return Settings{}, ErrNotFound
	}
	row := rows[0]
	return Settings{
		UserID:       row.UserID,
		AIPrompt:     deref(row.AIPrompt),
		OpenAIAPIKey: deref(row.OpenAIAPIKey),
		GeminiAPIKey: deref(row.GeminiAPIKey),
	}, nil
}

// InsertResult writes a new result row and returns the stored representation.
func (r *RESTRepo) InsertResult(ctx context.Context, result Result) (Result, error) {
	if !result.Kind.Valid() {
		return Result{}, fmt.Errorf("unknown content kind %q", result.Kind)
	}
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}
	payload := resultRow{
		ID:               result.ID,
		UserID:           result.UserID,
		JobDescriptionID: result.JobDescriptionID,
		OptimizedLatex:   &result.OptimizedLatex,
		Suggestions:      &result.Suggestions,
		CreatedAt:        result.CreatedAt,
	}
	if result.ATSScore != nil {
		v := float64(*result.ATSScore)
		payload.ATSScore = &v
	}
	docID := result.DocumentID
	if result.Kind == KindCoverLetter {
		payload.CoverLetterID = &docID
	} else {
		payload.ResumeID = &docID
	}

	var rows []resultRow
	if err := r.do(ctx, http.MethodPost, result.Kind.ResultTable(), nil, payload, &rows); err != nil {
		return Result{}, err
	}
	if len(rows) == 0 {
		return Result{}, fmt.Errorf("insert into %s returned no rows", result.Kind.ResultTable())
	}
	return rows[0].toResult(result.Kind), nil
}

// GetResult returns a stored result owned by the user.
func (r *RESTRepo) GetResult(ctx context.Context, userID string, kind Kind, id string) (Result, error) {
	if !kind.Valid() {
		return Result{}, fmt.Errorf("unknown content kind %q", kind)
	}
	if !validID(id) {
		return Result{}, ErrNotFound
	}
	q := url.Values{}
	q.Set("select", "*")
	q.Set("id", "eq."+id)
	q.Set("user_id", "eq."+userID)
	q.Set("limit", "1")
	var rows []resultRow
	if err := r.do(ctx, http.MethodGet, kind.ResultTable(), q, nil, &rows); err != nil {
		return Result{}, err
	}
	if len(rows) == 0 {
		return Result{}, ErrNotFound
	}
	return rows[0].toResult(kind), nil
}

// ListHistory returns the user's results of one kind with the embedded job
// description, newest first.
func (r *RESTRepo) ListHistory(ctx context.Context, userID string, kind Kind) ([]HistoryEntry, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown content kind %q", kind)
	}
	q := url.Values{}
	q.Set("select", "id,created_at,ats_score,suggestions,job_descriptions(title,company,description)")
	q.Set("user_id", "eq."+userID)
	q.Set("order", "created_at.desc")
	var rows []resultRow
	if err := r.do(ctx, http.MethodGet, kind.ResultTable(), q, nil, &rows); err != nil {
		return nil, err
	}
	entries := make([]HistoryEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, HistoryEntry{
			ID:             row.ID,
			Type:           kind.HistoryType(),
			JobDescription: row.JobDescription,
			CreatedAt:      row.CreatedAt,
			ATSScore:       roundScore(row.ATSScore),
			Suggestions:    deref(row.Suggestions),
		})
	}
	return entries, nil
}

func (r *RESTRepo) do(ctx context.Context, method, table string, query url.Values, body any, out any) error {
	if strings.TrimSpace(r.BaseURL) == "" || strings.TrimSpace(r.APIKey) == "" {
		return errNoStore
	}
	endpoint := strings.TrimRight(r.BaseURL, "/") + "/rest/v1/" + table
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s payload: %w", table, err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", table, err)
	}
	req.Header.Set("apikey", r.APIKey)
	req.Header.Set("Authorization", "Bearer "+r.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=representation")
	}

	client := r.Client
	if client == nil {
		client = httpclient.New(restTimeout)
	}
	resp, err := client.Do(req)
	if err != nil {
		return apperr.FromTransport(err, "database")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("postgrest %s %s: status %d: %s", method, table, resp.StatusCode, httpclient.ErrorText(resp))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", table, err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func roundScore(v *float64) *int {
	if v == nil {
		return nil
	}
	n := int(math.Round(*v))
	return &n
}

var _ Repo = (*RESTRepo)(nil)
