package optimize

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"latex-resume-backend/internal/content"
	"latex-resume-backend/internal/credentials"
	"latex-resume-backend/internal/llm"
	"latex-resume-backend/internal/shared/apperr"
)

const (
	userID = "user-1"
	jobID  = "jd-1"
)

var testJob = content.JobDescription{ID: jobID, Title: "Go Engineer", Description: "Build APIs"}

func newTestService(repo *mockRepo, factory *stubFactory) *Service {
	return NewService(repo, &credentials.Resolver{DefaultOpenAI: "sk-default"}, factory)
}

func TestRunPersistsParsedOutput(t *testing.T) {
	repo := &mockRepo{}
	provider := &mockProvider{}
	factory := &stubFactory{provider: provider}
	svc := newTestService(repo, factory)

	repo.On("GetSettings", mock.Anything, userID).Return(content.Settings{UserID: userID, AIPrompt: "Custom instructions", GeminiAPIKey: "g-user"}, nil)
	repo.On("GetJobDescription", mock.Anything, jobID).Return(testJob, nil)
	repo.On("GetCurrentDocument", mock.Anything, userID, content.KindResume).
		Return(content.Document{ID: "doc-1", UserID: userID, Kind: content.KindResume, LatexContent: `\resume`}, nil)
	provider.On("Complete", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return strings.HasPrefix(req.Prompt, "Custom instructions\n\nRESUME:\n\\resume") &&
			strings.Contains(req.System, "resume optimizer")
	})).Return(`{"optimized_latex":"\\better","suggestions":["a","b"],"ats_score":"91"}`, nil)

	created := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	repo.On("InsertResult", mock.Anything, mock.MatchedBy(func(r content.Result) bool {
		return r.UserID == userID && r.Kind == content.KindResume && r.JobDescriptionID == jobID &&
			r.DocumentID == "doc-1" && r.OptimizedLatex == `\better` && r.Suggestions == "a\nb" &&
			r.ATSScore != nil && *r.ATSScore == 91
	})).Return(content.Result{ID: "opt-1", UserID: userID, Kind: content.KindResume, CreatedAt: created}, nil)

	res, err := svc.Run(context.Background(), Request{UserID: userID, Kind: content.KindResume, JobDescriptionID: jobID})
	require.NoError(t, err)
	require.Equal(t, "opt-1", res.ID)
	require.Equal(t, credentials.Credential{Provider: credentials.ProviderGemini, APIKey: "g-user", Source: credentials.SourceUser}, factory.cred)
	repo.AssertExpectations(t)
	provider.AssertExpectations(t)
}

func TestRunUsesDefaultPromptWithoutSettings(t *testing.T) {
	repo := &mockRepo{}
	provider := &mockProvider{}
	svc := newTestService(repo, &stubFactory{provider: provider})

	repo.On("GetSettings", mock.Anything, userID).Return(content.Settings{}, content.ErrNotFound)
	repo.On("GetJobDescription", mock.Anything, jobID).Return(testJob, nil)
	repo.On("GetCurrentDocument", mock.Anything, userID, content.KindCoverLetter).
		Return(content.Document{ID: "cl-1", Kind: content.KindCoverLetter, LatexContent: "letter"}, nil)
	provider.On("Complete", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return strings.HasPrefix(req.Prompt, DefaultPrompt(content.KindCoverLetter)) &&
			strings.Contains(req.Prompt, "COVER LETTER TEMPLATE:\nletter")
	})).Return(`garbage`, nil)
	repo.On("InsertResult", mock.Anything, mock.MatchedBy(func(r content.Result) bool {
		return r.OptimizedLatex == "" && r.ATSScore == nil && r.DocumentID == "cl-1"
	})).Return(content.Result{ID: "gen-1", Kind: content.KindCoverLetter}, nil)

	res, err := svc.Run(context.Background(), Request{UserID: userID, Kind: content.KindCoverLetter, JobDescriptionID: jobID})
	require.NoError(t, err)
	require.Equal(t, "gen-1", res.ID)
}

func TestRunMissingJobDescriptionID(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &stubFactory{})

	_, err := svc.Run(context.Background(), Request{UserID: userID, Kind: content.KindResume, JobDescriptionID: "  "})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	repo.AssertNotCalled(t, "GetJobDescription", mock.Anything, mock.Anything)
}

func TestRunUnknownJobDescription(t *testing.T) {
	repo := &mockRepo{}
	factory := &stubFactory{provider: &mockProvider{}}
	svc := newTestService(repo, factory)

	repo.On("GetSettings", mock.Anything, userID).Return(content.Settings{}, content.ErrNotFound)
	repo.On("GetJobDescription", mock.Anything, "missing").Return(content.JobDescription{}, content.ErrNotFound)

	_, err := svc.Run(context.Background(), Request{UserID: userID, Kind: content.KindResume, JobDescriptionID: "missing"})
	e, ok := apperr.As(err)
	require.True(t, ok)
	require.Equal(t, 404, e.Kind.Status())
	require.Equal(t, "job_description_not_found", e.Code)
	require.Zero(t, factory.calls)
	repo.AssertNotCalled(t, "InsertResult", mock.Anything, mock.Anything)
}

func TestRunRejectsForeignJobDescription(t *testing.T) {
	repo := &mockRepo{}
	factory := &stubFactory{provider: &mockProvider{}}
	svc := newTestService(repo, factory)

	foreign := testJob
	foreign.UserID = "someone-else"
	repo.On("GetSettings", mock.Anything, userID).Return(content.Settings{}, content.ErrNotFound)
	repo.On("GetJobDescription", mock.Anything, jobID).Return(foreign, nil)

	_, err := svc.Run(context.Background(), Request{UserID: userID, Kind: content.KindResume, JobDescriptionID: jobID})
	e, ok := apperr.As(err)
	require.True(t, ok)
	require.Equal(t, "job_description_not_found", e.Code)
	require.Zero(t, factory.calls)
	repo.AssertNotCalled(t, "GetCurrentDocument", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunNoCurrentDocument(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &stubFactory{})

	repo.On("GetSettings", mock.Anything, userID).Return(content.Settings{}, content.ErrNotFound)
	repo.On("GetJobDescription", mock.Anything, jobID).Return(testJob, nil)
	repo.On("GetCurrentDocument", mock.Anything, userID, content.KindCoverLetter).Return(content.Document{}, content.ErrNotFound)

	_, err := svc.Run(context.Background(), Request{UserID: userID, Kind: content.KindCoverLetter, JobDescriptionID: jobID})
	e, ok := apperr.As(err)
	require.True(t, ok)
	require.Equal(t, "cover_letter_not_found", e.Code)
}

func TestRunWithoutCredentialsNeverCallsProvider(t *testing.T) {
	repo := &mockRepo{}
	factory := &stubFactory{provider: &mockProvider{}}
	svc := NewService(repo, &credentials.Resolver{}, factory)

	repo.On("GetSettings", mock.Anything, userID).Return(content.Settings{}, content.ErrNotFound)

	_, err := svc.Run(context.Background(), Request{UserID: userID, Kind: content.KindResume, JobDescriptionID: "missing"})
	require.ErrorIs(t, err, credentials.ErrNotConfigured)
	e, ok := apperr.As(err)
	require.True(t, ok)
	require.Equal(t, "llm_not_configured", e.Code)
	require.Zero(t, factory.calls)
	repo.AssertNotCalled(t, "GetJobDescription", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "GetCurrentDocument", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunClosesProvider(t *testing.T) {
	for _, name := range []string{"success", "provider error"} {
		t.Run(name, func(t *testing.T) {
			repo := &mockRepo{}
			provider := &closingProvider{}
			svc := newTestService(repo, &stubFactory{provider: provider})

			repo.On("GetSettings", mock.Anything, userID).Return(content.Settings{}, content.ErrNotFound)
			repo.On("GetJobDescription", mock.Anything, jobID).Return(testJob, nil)
			repo.On("GetCurrentDocument", mock.Anything, userID, content.KindResume).Return(content.Document{ID: "doc-1"}, nil)
			if name == "success" {
				provider.On("Complete", mock.Anything, mock.Anything).Return(`{"optimized_latex":"x"}`, nil)
				repo.On("InsertResult", mock.Anything, mock.Anything).Return(content.Result{ID: "opt-1"}, nil)
			} else {
				provider.On("Complete", mock.Anything, mock.Anything).Return("", llm.Failure("mock", "boom"))
			}

			_, _ = svc.Run(context.Background(), Request{UserID: userID, Kind: content.KindResume, JobDescriptionID: jobID})
			require.Equal(t, 1, provider.closed)
		})
	}
}

func TestRunProviderTimeoutPassesThrough(t *testing.T) {
	repo := &mockRepo{}
	provider := &mockProvider{}
	svc := newTestService(repo, &stubFactory{provider: provider})

	repo.On("GetSettings", mock.Anything, userID).Return(content.Settings{}, content.ErrNotFound)
	repo.On("GetJobDescription", mock.Anything, jobID).Return(testJob, nil)
	repo.On("GetCurrentDocument", mock.Anything, userID, content.KindResume).Return(content.Document{ID: "doc-1"}, nil)
	provider.On("Complete", mock.Anything, mock.Anything).Return("", llm.TransportFailure(context.DeadlineExceeded))

	_, err := svc.Run(context.Background(), Request{UserID: userID, Kind: content.KindResume, JobDescriptionID: jobID})
	require.Equal(t, 408, apperr.Status(err))
	repo.AssertNotCalled(t, "InsertResult", mock.Anything, mock.Anything)
}

func TestRunInsertFailureIsPersistenceError(t *testing.T) {
	repo := &mockRepo{}
	provider := &mockProvider{}
	svc := newTestService(repo, &stubFactory{provider: provider})

	repo.On("GetSettings", mock.Anything, userID).Return(content.Settings{}, errors.New("settings table missing"))
	repo.On("GetJobDescription", mock.Anything, jobID).Return(testJob, nil)
	repo.On("GetCurrentDocument", mock.Anything, userID, content.KindResume).Return(content.Document{ID: "doc-1"}, nil)
	provider.On("Complete", mock.Anything, mock.Anything).Return(`{"optimized_latex":"x"}`, nil)
	repo.On("InsertResult", mock.Anything, mock.Anything).Return(content.Result{}, errors.New("connection reset"))

	_, err := svc.Run(context.Background(), Request{UserID: userID, Kind: content.KindResume, JobDescriptionID: jobID})
	e, ok := apperr.As(err)
	require.True(t, ok)
	require.Equal(t, apperr.KindPersistence, e.Kind)
	require.Equal(t, "persist_failed", e.Code)
}

func TestRunInsertWithoutRowIsPersistenceError(t *testing.T) {
	repo := &mockRepo{}
	provider := &mockProvider{}
	svc := newTestService(repo, &stubFactory{provider: provider})

	repo.On("GetSettings", mock.Anything, userID).Return(content.Settings{}, content.ErrNotFound)
	repo.On("GetJobDescription", mock.Anything, jobID).Return(testJob, nil)
	repo.On("GetCurrentDocument", mock.Anything, userID, content.KindResume).Return(content.Document{ID: "doc-1"}, nil)
	provider.On("Complete", mock.Anything, mock.Anything).Return(`{}`, nil)
	repo.On("InsertResult", mock.Anything, mock.Anything).Return(content.Result{}, nil)

	_, err := svc.Run(context.Background(), Request{UserID: userID, Kind: content.KindResume, JobDescriptionID: jobID})
	require.Equal(t, apperr.KindPersistence, apperr.KindOf(err))
}

func TestHistoryMergesNewestFirst(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &stubFactory{})
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	repo.On("ListHistory", mock.Anything, userID, content.KindResume).Return([]content.HistoryEntry{
		{ID: "o2", Type: "resume_optimization", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "o1", Type: "resume_optimization", CreatedAt: base},
	}, nil)
	repo.On("ListHistory", mock.Anything, userID, content.KindCoverLetter).Return([]content.HistoryEntry{
		{ID: "c1", Type: "cover_letter_generation", CreatedAt: base.Add(time.Hour)},
	}, nil)

	entries, err := svc.History(context.Background(), userID)
	require.NoError(t, err)
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	require.Equal(t, []string{"o2", "c1", "o1"}, ids)
}

func TestHistoryEmptyIsNonNil(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &stubFactory{})
	repo.On("ListHistory", mock.Anything, userID, mock.Anything).Return(nil, nil)

	entries, err := svc.History(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, entries)
	require.Empty(t, entries)
}

func TestResultNotFound(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &stubFactory{})
	repo.On("GetResult", mock.Anything, userID, content.KindResume, "nope").Return(content.Result{}, content.ErrNotFound)

	_, err := svc.Result(context.Background(), userID, content.KindResume, "nope")
	require.Equal(t, 404, apperr.Status(err))
}
