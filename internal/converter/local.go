package converter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"latex-resume-backend/internal/shared/apperr"
)

const (
	defaultCompiler       = "pdflatex"
	defaultCompileTimeout = 30 * time.Second
	outputName            = "resume.pdf"
	diagnosticLimit       = 4 << 10
)

// Local compiles LaTeX with a compiler binary inside a throwaway working
// directory. The directory is removed on every exit path.
type Local struct {
	Compiler string
	Timeout  time.Duration
	// TempDir is the parent of per-compile working directories; empty means os.TempDir.
	TempDir string
}

func (l *Local) Name() string { return "local" }

func (l *Local) Convert(ctx context.Context, latex string) ([]byte, error) {
	compiler := strings.TrimSpace(l.Compiler)
	if compiler == "" {
		compiler = defaultCompiler
	}
	timeout := l.Timeout
	if timeout <= 0 {
		timeout = defaultCompileTimeout
	}

	workDir, err := os.MkdirTemp(l.TempDir, "latex-*")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	if err := os.WriteFile(filepath.Join(workDir, SourceName), []byte(latex), 0o600); err != nil {
		return nil, fmt.Errorf("write latex source: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, compiler, "-interaction=nonstopmode", SourceName)
	cmd.Dir = workDir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = 2 * time.Second

	runErr := cmd.Run()
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return nil, errCompileTimeout
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("compile canceled: %w", err)
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(runErr, &exitErr):
			return nil, errCompileFailed.WithDetails(diagnostics(stderr.String(), stdout.String()))
		case errors.Is(runErr, exec.ErrNotFound):
			return nil, apperr.Wrap(apperr.KindConfiguration, "compiler_not_found", "LaTeX compiler is not installed", runErr)
		default:
			return nil, fmt.Errorf("run %s: %w", compiler, runErr)
		}
	}

	data, err := os.ReadFile(filepath.Join(workDir, outputName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errNotGenerated.WithDetails(diagnostics(stderr.String(), stdout.String()))
		}
		return nil, fmt.Errorf("read pdf output: %w", err)
	}
	return checkPDF(data)
}

// diagnostics prefers stderr and falls back to the end of stdout, where
// pdflatex prints its error context.
func diagnostics(stderr, stdout string) string {
	if s := strings.TrimSpace(stderr); s != "" {
		return tail(s, diagnosticLimit)
	}
	return tail(strings.TrimSpace(stdout), diagnosticLimit)
}

var _ Converter = (*Local)(nil)
