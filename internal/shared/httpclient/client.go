package httpclient

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// maxErrorBody bounds how much of an upstream error body is kept for diagnostics.
const maxErrorBody = 8 << 10

// New returns an HTTP client with the given overall timeout whose transport
// emits client spans for every outbound request.
func New(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// ErrorText reads a bounded, human-readable excerpt of an error response body.
func ErrorText(resp *http.Response) string {
	if resp == nil || resp.Body == nil {
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(body) == 0 {
		return fmt.Sprintf("http status %d", resp.StatusCode)
	}
	return string(body)
}
