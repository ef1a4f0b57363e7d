// Package pdf renders LaTeX, either submitted directly or taken from a stored
// result, into base64-encoded PDF documents.
package pdf

import (
	"context"
	"strings"
	"time"

	"latex-resume-backend/internal/content"
	"latex-resume-backend/internal/converter"
	"latex-resume-backend/internal/shared/apperr"
	"latex-resume-backend/internal/shared/metrics"
	"latex-resume-backend/internal/shared/telemetry"
)

// ResultSource loads stored results owned by a user.
type ResultSource interface {
	Result(ctx context.Context, userID string, kind content.Kind, id string) (content.Result, error)
}

// Rendered is a converted document.
type Rendered struct {
	PDF       string
	Pages     int
	SizeBytes int
}

// Service wraps the active converter with validation, metrics and logging.
type Service struct {
	Converter converter.Converter
	Results   ResultSource
}

// NewService constructs a Service.
func NewService(conv converter.Converter, results ResultSource) *Service {
	return &Service{Converter: conv, Results: results}
}

var (
	errMissingLatex = apperr.New(apperr.KindValidation, "missing_latex", "LaTeX content is required")
	errEmptyResult  = apperr.New(apperr.KindValidation, "empty_result", "Stored result has no LaTeX content")
)

// Render converts a LaTeX document.
func (s *Service) Render(ctx context.Context, latex string) (Rendered, error) {
	if strings.TrimSpace(latex) == "" {
		return Rendered{}, errMissingLatex
	}

	name := s.Converter.Name()
	start := time.Now()
	data, err := s.Converter.Convert(ctx, latex)
	elapsed := time.Since(start)
	if err != nil {
		metrics.ObservePDFConversion(name, apperr.KindOf(err).String(), elapsed)
		telemetry.Warn("pdf.convert_failed", map[string]any{
			"converter":   name,
			"duration_ms": elapsed.Milliseconds(),
			"error":       err,
		})
		return Rendered{}, err
	}
	metrics.ObservePDFConversion(name, "ok", elapsed)

	pages, err := converter.Inspect(data)
	if err != nil {
		telemetry.Warn("pdf.inspect_failed", map[string]any{"converter": name, "error": err})
	}
	telemetry.Info("pdf.converted", map[string]any{
		"converter":   name,
		"duration_ms": elapsed.Milliseconds(),
		"size_bytes":  len(data),
		"pages":       pages,
	})
	return Rendered{PDF: converter.Encode(data), Pages: pages, SizeBytes: len(data)}, nil
}

// RenderResult converts the LaTeX of a stored optimization or cover letter
// generation owned by userID.
func (s *Service) RenderResult(ctx context.Context, userID string, kind content.Kind, id string) (Rendered, error) {
	res, err := s.Results.Result(ctx, userID, kind, id)
	if err != nil {
		return Rendered{}, err
	}
	if strings.TrimSpace(res.OptimizedLatex) == "" {
		return Rendered{}, errEmptyResult
	}
	return s.Render(ctx, res.OptimizedLatex)
}
