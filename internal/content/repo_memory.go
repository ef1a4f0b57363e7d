package content

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo is an in-memory implementation of Repo used in dev and tests.
type MemoryRepo struct {
	mu        sync.RWMutex
	jobs      map[string]JobDescription
	documents map[Kind]map[string]Document // userID -> current document
	settings  map[string]Settings
	results   map[Kind][]Result
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		jobs:      make(map[string]JobDescription),
		documents: make(map[Kind]map[string]Document),
		settings:  make(map[string]Settings),
		results:   make(map[Kind][]Result),
	}
}

// PutJobDescription stores a job description, assigning an id when empty.
func (r *MemoryRepo) PutJobDescription(job JobDescription) JobDescription {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job
	return job
}

// PutDocument makes doc the user's current document of its kind.
func (r *MemoryRepo) PutDocument(doc Document) Document {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	doc.IsCurrent = true
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.documents[doc.Kind] == nil {
		r.documents[doc.Kind] = make(map[string]Document)
	}
	r.documents[doc.Kind][doc.UserID] = doc
	return doc
}

// PutSettings stores the user's settings.
func (r *MemoryRepo) PutSettings(settings Settings) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings[settings.UserID] = settings
}

// Results returns a copy of the stored results of one kind.
func (r *MemoryRepo) Results(kind Kind) []Result {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Result(nil), r.results[kind]...)
}

func (r *MemoryRepo) GetJobDescription(ctx context.Context, id string) (JobDescription, error) {
	if err := ctx.Err(); err != nil {
		return JobDescription{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return JobDescription{}, ErrNotFound
	}
	return job, nil
}

func (r *MemoryRepo) GetCurrentDocument(ctx context.Context, userID string, kind Kind) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.documents[kind][userID]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

func (r *MemoryRepo) GetSettings(ctx context.Context, userID string) (Settings, error) {
	if err := ctx.Err(); err != nil {
		return Settings{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	settings, ok := r.settings[userID]
	if !ok {
		return Settings{}, ErrNotFound
	}
	return settings, nil
}

func (r *MemoryRepo) InsertResult(ctx context.Context, result Result) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[result.Kind] = append(r.results[result.Kind], result)
	return result, nil
}

func (r *MemoryRepo) GetResult(ctx context.Context, userID string, kind Kind, id string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, res := range r.results[kind] {
		if res.ID == id && res.UserID == userID {
			return res, nil
		}
	}
	return Result{}, ErrNotFound
}

func (r *MemoryRepo) ListHistory(ctx context.Context, userID string, kind Kind) ([]HistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := []HistoryEntry{}
	for _, res := range r.results[kind] {
		if res.UserID != userID {
			continue
		}
		entry := HistoryEntry{
			ID:          res.ID,
			Type:        kind.HistoryType(),
			CreatedAt:   res.CreatedAt,
			ATSScore:    res.ATSScore,
			Suggestions: res.Suggestions,
		}
		if job, ok := r.jobs[res.JobDescriptionID]; ok {
			entry.JobDescription = &JobSummary{Title: job.Title, Company: job.Company, Description: job.Description}
		}
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

var _ Repo = (*MemoryRepo)(nil)
