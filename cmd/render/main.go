package main

// Compile a LaTeX file with the configured converter:
//   go run ./cmd/render -in resume.tex -out ./out/resume.pdf

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"latex-resume-backend/internal/converter"
	"latex-resume-backend/internal/shared/apperr"
	"latex-resume-backend/internal/shared/config"
)

func main() {
	cfg := config.Load()

	inPath := flag.String("in", "", "path to the LaTeX source")
	outPath := flag.String("out", "./out/resume.pdf", "output path for the PDF")
	strategy := flag.String("converter", cfg.Converter, "converter strategy: local, remote or latexonline")
	flag.Parse()

	if strings.TrimSpace(*inPath) == "" {
		exitErr("input path is required")
	}
	source, err := os.ReadFile(*inPath)
	if err != nil {
		exitErr(fmt.Sprintf("read source: %v", err))
	}

	cfg.Converter = *strategy
	conv := converter.FromConfig(cfg)

	pdfBytes, err := conv.Convert(context.Background(), string(source))
	if err != nil {
		if e, ok := apperr.As(err); ok && e.Details != "" {
			exitErr(fmt.Sprintf("%s failed: %s\n%s", conv.Name(), e.Message, e.Details))
		}
		exitErr(fmt.Sprintf("%s failed: %v", conv.Name(), err))
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		exitErr(fmt.Sprintf("create output dir: %v", err))
	}
	if err := os.WriteFile(*outPath, pdfBytes, 0o644); err != nil {
		exitErr(fmt.Sprintf("write pdf: %v", err))
	}

	pages, err := converter.Inspect(pdfBytes)
	if err != nil {
		fmt.Printf("OK: wrote %s (%d bytes, page count unavailable: %v)\n", *outPath, len(pdfBytes), err)
		return
	}
	fmt.Printf("OK: wrote %s (%d bytes, %d pages)\n", *outPath, len(pdfBytes), pages)
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
