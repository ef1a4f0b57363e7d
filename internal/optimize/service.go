// Package optimize runs the optimize-and-persist flow for resumes and cover
// letters and serves the stored results.
package optimize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"latex-resume-backend/internal/content"
	"latex-resume-backend/internal/credentials"
	"latex-resume-backend/internal/llm"
	"latex-resume-backend/internal/shared/apperr"
	"latex-resume-backend/internal/shared/telemetry"
)

// CredentialResolver picks the LLM credential from loaded settings.
type CredentialResolver interface {
	FromSettings(settings content.Settings) (credentials.Credential, error)
}

// ProviderFactory builds a provider for one request.
type ProviderFactory interface {
	New(ctx context.Context, cred credentials.Credential) (llm.Provider, error)
}

// Request identifies one optimization run.
type Request struct {
	UserID           string
	Kind             content.Kind
	JobDescriptionID string
}

// Service contains the orchestration logic.
type Service struct {
	Repo        content.Repo
	Credentials CredentialResolver
	Providers   ProviderFactory
}

// NewService constructs a Service.
func NewService(repo content.Repo, creds CredentialResolver, providers ProviderFactory) *Service {
	return &Service{Repo: repo, Credentials: creds, Providers: providers}
}

var (
	errMissingJobDescription = apperr.New(apperr.KindValidation, "missing_job_description_id", "Missing jobDescriptionId")
	errJobNotFound           = apperr.New(apperr.KindNotFound, "job_description_not_found", "Job description not found")
	errResumeNotFound        = apperr.New(apperr.KindNotFound, "resume_not_found", "No current resume found")
	errCoverLetterNotFound   = apperr.New(apperr.KindNotFound, "cover_letter_not_found", "No current cover letter found")
	errResultNotFound        = apperr.New(apperr.KindNotFound, "result_not_found", "Result not found")
)

// Run loads the job description and the user's current document, asks the
// model for an optimized version and stores it. Nothing is written unless
// every step before the insert succeeds.
func (s *Service) Run(ctx context.Context, req Request) (content.Result, error) {
	if strings.TrimSpace(req.JobDescriptionID) == "" {
		return content.Result{}, errMissingJobDescription
	}
	if !req.Kind.Valid() {
		return content.Result{}, fmt.Errorf("unknown content kind %q", req.Kind)
	}
	start := time.Now()

	settings := s.loadSettings(ctx, req.UserID)
	cred, err := s.Credentials.FromSettings(settings)
	if err != nil {
		return content.Result{}, err
	}
	instructions := settings.AIPrompt
	if strings.TrimSpace(instructions) == "" {
		instructions = DefaultPrompt(req.Kind)
	}

	job, err := s.Repo.GetJobDescription(ctx, req.JobDescriptionID)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			return content.Result{}, errJobNotFound
		}
		return content.Result{}, fmt.Errorf("load job description: %w", err)
	}
	// The store is read with the service key, so ownership is checked here.
	if job.UserID != "" && job.UserID != req.UserID {
		return content.Result{}, errJobNotFound
	}

	doc, err := s.Repo.GetCurrentDocument(ctx, req.UserID, req.Kind)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			if req.Kind == content.KindCoverLetter {
				return content.Result{}, errCoverLetterNotFound
			}
			return content.Result{}, errResumeNotFound
		}
		return content.Result{}, fmt.Errorf("load current %s: %w", req.Kind, err)
	}

	provider, err := s.Providers.New(ctx, cred)
	if err != nil {
		return content.Result{}, err
	}
	if closer, ok := provider.(io.Closer); ok {
		defer closeProvider(closer, provider.Name())
	}

	raw, err := provider.Complete(ctx, llm.Request{
		System: SystemPrompt(req.Kind),
		Prompt: BuildPrompt(instructions, req.Kind, doc.LatexContent, job),
	})
	if err != nil {
		return content.Result{}, err
	}
	out := ParseOutput(raw)
	if out.OptimizedLatex == "" {
		telemetry.Warn("optimize.empty_output", map[string]any{
			"user_id":            req.UserID,
			"kind":               string(req.Kind),
			"job_description_id": job.ID,
			"provider":           provider.Name(),
			"raw_bytes":          len(raw),
		})
	}

	stored, err := s.Repo.InsertResult(ctx, content.Result{
		UserID:           req.UserID,
		Kind:             req.Kind,
		JobDescriptionID: job.ID,
		DocumentID:       doc.ID,
		OptimizedLatex:   out.OptimizedLatex,
		Suggestions:      out.Suggestions,
		ATSScore:         out.ATSScore,
	})
	if err != nil {
		return content.Result{}, apperr.Wrap(apperr.KindPersistence, "persist_failed", "Failed to save result", err)
	}
	if stored.ID == "" {
		return content.Result{}, apperr.New(apperr.KindPersistence, "persist_failed", "Failed to save result")
	}

	telemetry.Info("optimize.completed", map[string]any{
		"user_id":            req.UserID,
		"kind":               string(req.Kind),
		"job_description_id": job.ID,
		"result_id":          stored.ID,
		"provider":           provider.Name(),
		"key_source":         cred.Source,
		"ats_score":          stored.ATSScore,
		"duration_ms":        time.Since(start).Milliseconds(),
	})
	return stored, nil
}

// History merges the user's optimizations and cover letter generations,
// newest first.
func (s *Service) History(ctx context.Context, userID string) ([]content.HistoryEntry, error) {
	var all []content.HistoryEntry
	for _, kind := range []content.Kind{content.KindResume, content.KindCoverLetter} {
		entries, err := s.Repo.ListHistory(ctx, userID, kind)
		if err != nil {
			return nil, fmt.Errorf("list %s history: %w", kind, err)
		}
		all = append(all, entries...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if all == nil {
		all = []content.HistoryEntry{}
	}
	return all, nil
}

// Result returns one stored result owned by the user.
func (s *Service) Result(ctx context.Context, userID string, kind content.Kind, id string) (content.Result, error) {
	res, err := s.Repo.GetResult(ctx, userID, kind, id)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			return content.Result{}, errResultNotFound
		}
		return content.Result{}, fmt.Errorf("load result: %w", err)
	}
	return res, nil
}

func (s *Service) loadSettings(ctx context.Context, userID string) content.Settings {
	settings, err := s.Repo.GetSettings(ctx, userID)
	if err == nil {
		return settings
	}
	if !errors.Is(err, content.ErrNotFound) {
		telemetry.Warn("optimize.settings_lookup_failed", map[string]any{
			"user_id": userID,
			"error":   err,
		})
	}
	return content.Settings{UserID: userID}
}

func closeProvider(closer io.Closer, name string) {
	if err := closer.Close(); err != nil {
		telemetry.Warn("optimize.provider_close_failed", map[string]any{
			"provider": name,
			"error":    err,
		})
	}
}
