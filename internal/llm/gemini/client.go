package gemini

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"latex-resume-backend/internal/llm"
	"latex-resume-backend/internal/shared/apperr"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-1.5-flash"

// Client implements llm.Provider on top of the langchaingo Google AI model.
// Callers must Close it once the request is done.
type Client struct {
	model   llms.Model
	timeout time.Duration
}

// NewClient builds a Gemini client for the given key.
func NewClient(ctx context.Context, apiKey, model string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	m, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("init gemini: %w", err)
	}
	return &Client{model: m, timeout: timeout}, nil
}

// NewWithModel wraps an existing langchaingo model.
func NewWithModel(model llms.Model, timeout time.Duration) *Client {
	return &Client{model: model, timeout: timeout}
}

func (c *Client) Name() string {
	return "gemini"
}

// Complete sends the system instructions and prompt as a single JSON-mode turn.
func (c *Client) Complete(ctx context.Context, in llm.Request) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	prompt := in.Prompt
	if strings.TrimSpace(in.System) != "" {
		prompt = in.System + "\n\n" + in.Prompt
	}
	out, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt, llms.WithJSONMode())
	if err != nil {
		if apperr.IsTimeout(err) || ctx.Err() != nil {
			return "", llm.TransportFailure(err)
		}
		return "", llm.Failure(c.Name(), err.Error())
	}
	return strings.TrimSpace(out), nil
}

// Close releases the genai client behind the model, if it holds one.
func (c *Client) Close() error {
	if closer, ok := c.model.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

var (
	_ llm.Provider = (*Client)(nil)
	_ io.Closer    = (*Client)(nil)
	_ io.Closer    = (*googleai.GoogleAI)(nil)
)
