package content

import (
	"encoding/json"
	"time"
)

// Kind selects the document family a request works on.
type Kind string

const (
	KindResume      Kind = "resume"
	KindCoverLetter Kind = "cover_letter"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindResume || k == KindCoverLetter
}

// DocumentTable is the table holding the user's source documents.
func (k Kind) DocumentTable() string {
	if k == KindCoverLetter {
		return "cover_letters"
	}
	return "resumes"
}

// ResultTable is the table holding generated results.
func (k Kind) ResultTable() string {
	if k == KindCoverLetter {
		return "cover_letter_generations"
	}
	return "optimizations"
}

// DocumentColumn is the result column referencing the source document.
func (k Kind) DocumentColumn() string {
	if k == KindCoverLetter {
		return "cover_letter_id"
	}
	return "resume_id"
}

// HistoryType labels results of this kind in the history feed.
func (k Kind) HistoryType() string {
	if k == KindCoverLetter {
		return "cover_letter_generation"
	}
	return "resume_optimization"
}

// JobDescription is a target posting.
type JobDescription struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id,omitempty"`
	Title       string  `json:"title"`
	Company     *string `json:"company"`
	Description string  `json:"description"`
}

// CompanyOr returns the company name or def when none is set.
func (j JobDescription) CompanyOr(def string) string {
	if j.Company == nil || *j.Company == "" {
		return def
	}
	return *j.Company
}

// Document is a resume or cover letter owned by a user.
type Document struct {
	ID           string
	UserID       string
	Kind         Kind
	LatexContent string
	IsCurrent    bool
}

// Settings holds optional per-user overrides.
type Settings struct {
	UserID       string
	AIPrompt     string
	OpenAIAPIKey string
	GeminiAPIKey string
}

// Result is a persisted optimization or cover letter generation.
type Result struct {
	ID               string
	UserID           string
	Kind             Kind
	JobDescriptionID string
	DocumentID       string
	OptimizedLatex   string
	Suggestions      string
	ATSScore         *int
	CreatedAt        time.Time
}

// MarshalJSON emits the row shape of the result table, naming the document
// reference resume_id or cover_letter_id by kind.
func (r Result) MarshalJSON() ([]byte, error) {
	kind := r.Kind
	if !kind.Valid() {
		kind = KindResume
	}
	return json.Marshal(map[string]any{
		"id":                 r.ID,
		"user_id":            r.UserID,
		"job_description_id": r.JobDescriptionID,
		kind.DocumentColumn(): r.DocumentID,
		"optimized_latex":    r.OptimizedLatex,
		"suggestions":        r.Suggestions,
		"ats_score":          r.ATSScore,
		"created_at":         r.CreatedAt,
	})
}

// JobSummary is the job description excerpt attached to history entries.
type JobSummary struct {
	Title       string  `json:"title"`
	Company     *string `json:"company"`
	Description string  `json:"description"`
}

// HistoryEntry is one item of the user's generation history.
type HistoryEntry struct {
	ID             string      `json:"id"`
	Type           string      `json:"type"`
	JobDescription *JobSummary `json:"job_description"`
	CreatedAt      time.Time   `json:"created_at"`
	ATSScore       *int        `json:"ats_score"`
	Suggestions    string      `json:"suggestions"`
}
