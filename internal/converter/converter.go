// Package converter turns LaTeX source into PDF bytes. Exactly one strategy is
// active per deployment, selected by configuration.
package converter

import (
	"bytes"
	"context"
	"encoding/base64"

	"latex-resume-backend/internal/shared/apperr"
	"latex-resume-backend/internal/shared/config"
	"latex-resume-backend/internal/shared/httpclient"
)

// SourceName is the file name given to the LaTeX source in every strategy.
const SourceName = "resume.tex"

var pdfMagic = []byte("%PDF")

// Converter produces PDF bytes from LaTeX source or fails with an apperr.Error.
type Converter interface {
	Name() string
	Convert(ctx context.Context, latex string) ([]byte, error)
}

var (
	errCompileFailed  = apperr.New(apperr.KindUpstreamFailure, "compile_failed", "LaTeX compilation failed")
	errNotGenerated   = apperr.New(apperr.KindUpstreamFailure, "pdf_not_generated", "PDF file not generated despite successful compilation.")
	errCompileTimeout = apperr.New(apperr.KindUpstreamTimeout, "compile_timeout", "LaTeX compilation timed out")
	errInvalidPDF     = apperr.New(apperr.KindUpstreamFailure, "invalid_pdf", "Converter returned a payload that is not a PDF")
	errServiceFailed  = apperr.New(apperr.KindUpstreamFailure, "conversion_failed", "LaTeX conversion service failed")
)

// FromConfig builds the converter selected by cfg.Converter.
func FromConfig(cfg config.Config) Converter {
	switch cfg.Converter {
	case config.ConverterRemote:
		return &Remote{
			URL:    cfg.LatexConvertURL,
			APIKey: cfg.LatexConvertAPIKey,
			Client: httpclient.New(cfg.LatexConvertTimeout),
		}
	case config.ConverterLatexOnline:
		return &LatexOnline{
			URL:    cfg.LatexOnlineURL,
			Client: httpclient.New(cfg.LatexOnlineTimeout),
		}
	default:
		return &Local{
			Compiler: cfg.LatexCompiler,
			Timeout:  cfg.LatexTimeout,
		}
	}
}

// Encode returns the base64 text used for PDFs at the HTTP boundary.
func Encode(pdf []byte) string {
	return base64.StdEncoding.EncodeToString(pdf)
}

func checkPDF(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, pdfMagic) {
		return nil, errInvalidPDF.WithDetails(excerpt(data, 512))
	}
	return data, nil
}

func excerpt(b []byte, limit int) string {
	if len(b) <= limit {
		return string(b)
	}
	return string(b[:limit]) + "..."
}

func tail(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return "..." + s[len(s)-limit:]
}
