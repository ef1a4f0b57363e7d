package optimize

import (
	"context"

	"github.com/stretchr/testify/mock"

	"latex-resume-backend/internal/content"
	"latex-resume-backend/internal/credentials"
	"latex-resume-backend/internal/llm"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetJobDescription(ctx context.Context, id string) (content.JobDescription, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(content.JobDescription), args.Error(1)
}

func (m *mockRepo) GetCurrentDocument(ctx context.Context, userID string, kind content.Kind) (content.Document, error) {
	args := m.Called(ctx, userID, kind)
	return args.Get(0).(content.Document), args.Error(1)
}

func (m *mockRepo) GetSettings(ctx context.Context, userID string) (content.Settings, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(content.Settings), args.Error(1)
}

func (m *mockRepo) InsertResult(ctx context.Context, result content.Result) (content.Result, error) {
	args := m.Called(ctx, result)
	return args.Get(0).(content.Result), args.Error(1)
}

func (m *mockRepo) GetResult(ctx context.Context, userID string, kind content.Kind, id string) (content.Result, error) {
	args := m.Called(ctx, userID, kind, id)
	return args.Get(0).(content.Result), args.Error(1)
}

func (m *mockRepo) ListHistory(ctx context.Context, userID string, kind content.Kind) ([]content.HistoryEntry, error) {
	args := m.Called(ctx, userID, kind)
	entries, _ := args.Get(0).([]content.HistoryEntry)
	return entries, args.Error(1)
}

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Complete(ctx context.Context, req llm.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// closingProvider counts Close calls.
type closingProvider struct {
	mockProvider
	closed int
}

func (c *closingProvider) Close() error {
	c.closed++
	return nil
}

// stubFactory hands out a fixed provider and records the credential used.
type stubFactory struct {
	provider llm.Provider
	err      error
	calls    int
	cred     credentials.Credential
}

func (f *stubFactory) New(_ context.Context, cred credentials.Credential) (llm.Provider, error) {
	f.calls++
	f.cred = cred
	if f.err != nil {
		return nil, f.err
	}
	return f.provider, nil
}
