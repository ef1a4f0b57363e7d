package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tmc/langchaingo/llms"

	"latex-resume-backend/internal/llm"
	"latex-resume-backend/internal/shared/apperr"
)

type fakeModel struct {
	reply   string
	err     error
	delay   time.Duration
	prompts []string
	json    bool
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{}
	for _, o := range options {
		o(&opts)
	}
	f.json = opts.JSONMode
	for _, m := range messages {
		for _, p := range m.Parts {
			if text, ok := p.(llms.TextContent); ok {
				f.prompts = append(f.prompts, text.Text)
			}
		}
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestCompleteJoinsSystemAndPrompt(t *testing.T) {
	model := &fakeModel{reply: ` {"ats_score": 70} `}
	c := NewWithModel(model, time.Second)

	out, err := c.Complete(context.Background(), llm.Request{System: "respond in JSON", Prompt: "RESUME:"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != `{"ats_score": 70}` {
		t.Fatalf("unexpected output %q", out)
	}
	if !model.json {
		t.Fatalf("expected JSON mode")
	}
	if len(model.prompts) != 1 || !strings.HasPrefix(model.prompts[0], "respond in JSON\n\nRESUME:") {
		t.Fatalf("unexpected prompt: %v", model.prompts)
	}
}

func TestCompleteProviderError(t *testing.T) {
	c := NewWithModel(&fakeModel{err: errors.New("API key not valid")}, time.Second)
	_, err := c.Complete(context.Background(), llm.Request{Prompt: "x"})
	if apperr.KindOf(err) != apperr.KindUpstreamFailure {
		t.Fatalf("expected upstream failure, got %v", err)
	}
}

func TestCompleteTimeout(t *testing.T) {
	c := NewWithModel(&fakeModel{delay: time.Second}, 20*time.Millisecond)
	_, err := c.Complete(context.Background(), llm.Request{Prompt: "x"})
	if apperr.KindOf(err) != apperr.KindUpstreamTimeout {
		t.Fatalf("expected timeout, got %v", err)
	}
}

type closingModel struct {
	fakeModel
	closed int
}

func (c *closingModel) Close() error {
	c.closed++
	return nil
}

func TestCloseReleasesModel(t *testing.T) {
	model := &closingModel{}
	c := NewWithModel(model, time.Second)
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if model.closed != 1 {
		t.Fatalf("expected model to be closed once, got %d", model.closed)
	}

	if err := NewWithModel(&fakeModel{}, time.Second).Close(); err != nil {
		t.Fatalf("Close without closer: %v", err)
	}
}
