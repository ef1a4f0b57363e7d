package main

// Run one optimization prompt against a live model without touching storage:
//   go run ./cmd/prompttest -latex resume.tex -jd job.txt -title "Backend Engineer"

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"latex-resume-backend/internal/content"
	"latex-resume-backend/internal/credentials"
	"latex-resume-backend/internal/llm"
	"latex-resume-backend/internal/llm/providers"
	"latex-resume-backend/internal/optimize"
	"latex-resume-backend/internal/shared/config"
)

func main() {
	cfg := config.Load()

	latexPath := flag.String("latex", "", "path to the LaTeX resume or cover letter")
	jdPath := flag.String("jd", "", "path to the job description text")
	title := flag.String("title", "Untitled role", "job title")
	company := flag.String("company", "", "company name (optional)")
	kindFlag := flag.String("kind", string(content.KindResume), "resume or cover_letter")
	promptPath := flag.String("prompt", "", "path to custom instructions (optional)")
	provider := flag.String("provider", "", "force openai or gemini (optional)")
	outPath := flag.String("out", "", "path to write the parsed JSON output (optional)")
	flag.Parse()

	kind := content.Kind(*kindFlag)
	if !kind.Valid() {
		exitErr(fmt.Sprintf("unsupported kind: %s", *kindFlag))
	}
	if strings.TrimSpace(*latexPath) == "" || strings.TrimSpace(*jdPath) == "" {
		exitErr("latex and jd paths are required")
	}

	latex := readFile(*latexPath, "latex")
	job := content.JobDescription{Title: *title, Description: readFile(*jdPath, "job description")}
	if *company != "" {
		job.Company = company
	}
	instructions := optimize.DefaultPrompt(kind)
	if *promptPath != "" {
		instructions = readFile(*promptPath, "prompt")
	}

	resolver := credentials.Resolver{DefaultOpenAI: cfg.OpenAIAPIKey, DefaultGemini: cfg.GeminiAPIKey}
	switch strings.ToLower(strings.TrimSpace(*provider)) {
	case "":
	case credentials.ProviderOpenAI:
		resolver.DefaultGemini = ""
	case credentials.ProviderGemini:
		resolver.DefaultOpenAI = ""
	default:
		exitErr(fmt.Sprintf("unsupported provider: %s", *provider))
	}
	cred, err := resolver.FromSettings(content.Settings{})
	if err != nil {
		exitErr(err.Error())
	}

	ctx := context.Background()
	factory := providers.Factory{OpenAIModel: cfg.LLMModel, GeminiModel: cfg.GeminiModel, Timeout: cfg.LLMTimeout}
	client, err := factory.New(ctx, cred)
	if err != nil {
		exitErr(err.Error())
	}

	raw, err := client.Complete(ctx, llm.Request{
		System: optimize.SystemPrompt(kind),
		Prompt: optimize.BuildPrompt(instructions, kind, latex, job),
	})
	if closer, ok := client.(io.Closer); ok {
		_ = closer.Close()
	}
	if err != nil {
		exitErr(fmt.Sprintf("llm complete: %v", err))
	}

	pretty, err := prettyJSON(optimize.ParseOutput(raw))
	if err != nil {
		exitErr(fmt.Sprintf("format json: %v", err))
	}
	if *outPath != "" {
		if err := os.WriteFile(*outPath, pretty, 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}
	if _, err := os.Stdout.Write(pretty); err != nil {
		exitErr(fmt.Sprintf("write stdout: %v", err))
	}
}

func readFile(path, label string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		exitErr(fmt.Sprintf("read %s: %v", label, err))
	}
	return string(data)
}

func prettyJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
