package converter

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"latex-resume-backend/internal/shared/apperr"
	"latex-resume-backend/internal/shared/httpclient"
)

// Remote forwards LaTeX to a conversion service that answers with a base64 PDF.
type Remote struct {
	URL    string
	APIKey string
	Client *http.Client
}

type remoteRequest struct {
	Latex string `json:"latex"`
}

type remoteResponse struct {
	PDF   string `json:"pdf"`
	Error string `json:"error,omitempty"`
}

func (r *Remote) Name() string { return "remote" }

func (r *Remote) Convert(ctx context.Context, latex string) ([]byte, error) {
	if strings.TrimSpace(r.URL) == "" || strings.TrimSpace(r.APIKey) == "" {
		return nil, apperr.New(apperr.KindConfiguration, "latex_convert_not_configured", "LATEX_CONVERT_URL and LATEX_CONVERT_API_KEY are required")
	}

	payload, err := json.Marshal(remoteRequest{Latex: latex})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build conversion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", r.APIKey)

	resp, err := r.client().Do(req)
	if err != nil {
		return nil, apperr.FromTransport(err, "latex_convert")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errServiceFailed.WithDetails(httpclient.ErrorText(resp))
	}

	var parsed remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		if apperr.IsTimeout(err) {
			return nil, apperr.FromTransport(err, "latex_convert")
		}
		return nil, errInvalidPDF.WithDetails(fmt.Sprintf("decode response: %v", err))
	}
	if parsed.PDF == "" {
		return nil, errServiceFailed.WithDetails(parsed.Error)
	}
	data, err := base64.StdEncoding.DecodeString(parsed.PDF)
	if err != nil {
		return nil, errInvalidPDF.WithDetails(fmt.Sprintf("decode base64: %v", err))
	}
	return checkPDF(data)
}

func (r *Remote) client() *http.Client {
	if r.Client != nil {
		return r.Client
	}
	return httpclient.New(0)
}

var _ Converter = (*Remote)(nil)
