package converter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"latex-resume-backend/internal/shared/apperr"
	"latex-resume-backend/internal/shared/httpclient"
)

const maxPDFSize = 32 << 20

// LatexOnline posts the source as a single resource to a latexonline.cc
// compatible endpoint, which answers with raw PDF bytes.
type LatexOnline struct {
	URL     string
	Client  *http.Client
	// MaxSize caps the PDF size; zero means maxPDFSize.
	MaxSize int64
}

type latexOnlineResource struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type latexOnlineRequest struct {
	Compiler  string                `json:"compiler"`
	Resources []latexOnlineResource `json:"resources"`
}

func (l *LatexOnline) Name() string { return "latexonline" }

func (l *LatexOnline) Convert(ctx context.Context, latex string) ([]byte, error) {
	if strings.TrimSpace(l.URL) == "" {
		return nil, apperr.New(apperr.KindConfiguration, "latexonline_not_configured", "LATEXONLINE_URL is required")
	}

	payload, err := json.Marshal(latexOnlineRequest{
		Compiler:  defaultCompiler,
		Resources: []latexOnlineResource{{Name: SourceName, Content: latex}},
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build latexonline request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := l.Client
	if client == nil {
		client = httpclient.New(0)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, apperr.FromTransport(err, "latexonline")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errCompileFailed.WithDetails(httpclient.ErrorText(resp))
	}

	limit := l.MaxSize
	if limit <= 0 {
		limit = maxPDFSize
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		if apperr.IsTimeout(err) {
			return nil, apperr.FromTransport(err, "latexonline")
		}
		return nil, fmt.Errorf("read latexonline response: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, errInvalidPDF.WithDetails(fmt.Sprintf("pdf exceeds %d bytes", limit))
	}
	return checkPDF(data)
}

var _ Converter = (*LatexOnline)(nil)
