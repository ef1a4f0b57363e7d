package converter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"latex-resume-backend/internal/shared/apperr"
	"latex-resume-backend/internal/shared/httpclient"
)

func TestRemoteConvertSuccess(t *testing.T) {
	var gotKey, gotLatex string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		gotLatex = body["latex"]
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"pdf": base64.StdEncoding.EncodeToString([]byte("%PDF-1.7 remote")),
		})
	}))
	defer server.Close()

	remote := &Remote{URL: server.URL, APIKey: "secret", Client: httpclient.New(time.Second)}
	data, err := remote.Convert(context.Background(), `\documentclass{article}`)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if string(data) != "%PDF-1.7 remote" {
		t.Fatalf("unexpected pdf bytes %q", data)
	}
	if gotKey != "secret" {
		t.Fatalf("expected api key header, got %q", gotKey)
	}
	if gotLatex != `\documentclass{article}` {
		t.Fatalf("expected latex payload, got %q", gotLatex)
	}
}

func TestRemoteConvertRequiresConfiguration(t *testing.T) {
	remote := &Remote{}
	_, err := remote.Convert(context.Background(), "x")
	if apperr.KindOf(err) != apperr.KindConfiguration {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRemoteConvertServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "LaTeX Error: File `moderncv.cls' not found.", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	remote := &Remote{URL: server.URL, APIKey: "k", Client: httpclient.New(time.Second)}
	_, err := remote.Convert(context.Background(), "x")
	appErr, ok := apperr.As(err)
	if !ok || appErr.Code != "conversion_failed" {
		t.Fatalf("expected conversion_failed, got %v", err)
	}
	if !strings.Contains(appErr.Details, "moderncv.cls") {
		t.Fatalf("expected service text in details, got %q", appErr.Details)
	}
}

func TestRemoteConvertUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	remote := &Remote{URL: url, APIKey: "k", Client: httpclient.New(time.Second)}
	_, err := remote.Convert(context.Background(), "x")
	if apperr.Status(err) != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d (%v)", apperr.Status(err), err)
	}
}

func TestRemoteConvertTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	remote := &Remote{URL: server.URL, APIKey: "k", Client: httpclient.New(100 * time.Millisecond)}
	_, err := remote.Convert(context.Background(), "x")
	if apperr.Status(err) != http.StatusRequestTimeout {
		t.Fatalf("expected 408, got %d (%v)", apperr.Status(err), err)
	}
}

func TestLatexOnlineConvert(t *testing.T) {
	var got latexOnlineRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.5 online"))
	}))
	defer server.Close()

	online := &LatexOnline{URL: server.URL, Client: httpclient.New(time.Second)}
	data, err := online.Convert(context.Background(), "source")
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if string(data) != "%PDF-1.5 online" {
		t.Fatalf("unexpected bytes %q", data)
	}
	if got.Compiler != "pdflatex" || len(got.Resources) != 1 || got.Resources[0].Name != SourceName || got.Resources[0].Content != "source" {
		t.Fatalf("unexpected request payload %+v", got)
	}
}

func TestLatexOnlineCompileError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("! Missing $ inserted."))
	}))
	defer server.Close()

	online := &LatexOnline{URL: server.URL, Client: httpclient.New(time.Second)}
	_, err := online.Convert(context.Background(), "source")
	appErr, ok := apperr.As(err)
	if !ok || appErr.Code != "compile_failed" {
		t.Fatalf("expected compile_failed, got %v", err)
	}
}

func TestLatexOnlineRejectsOversizePDF(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.5 " + strings.Repeat("x", 64)))
	}))
	defer server.Close()

	online := &LatexOnline{URL: server.URL, Client: httpclient.New(time.Second), MaxSize: 32}
	_, err := online.Convert(context.Background(), "source")
	appErr, ok := apperr.As(err)
	if !ok || appErr.Code != "invalid_pdf" {
		t.Fatalf("expected invalid_pdf, got %v", err)
	}

	online.MaxSize = 1 << 10
	if _, err := online.Convert(context.Background(), "source"); err != nil {
		t.Fatalf("expected payload under the limit to pass, got %v", err)
	}
}

func TestInspectToleratesGarbage(t *testing.T) {
	if _, err := Inspect([]byte("%PDF-not really")); err == nil {
		t.Fatalf("expected error for malformed pdf")
	}
}
