package linesource

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/bgv-audit/invoice-audit/internal/entity"
)

// PopplerConfig configures the pdftotext backend.
type PopplerConfig struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
}

// Runner executes the pdftotext binary and returns its stdout. Stubbed in
// tests; a failed run carries the tool's stderr inside the error.
type Runner interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// pdftotextRunner invokes poppler's pdftotext. Poppler prints its
// diagnostics (encrypted file, damaged xref, missing file) on stderr and
// exits non-zero, so stderr is the error message that matters.
type pdftotextRunner struct {
	logger *slog.Logger
}

// stderrCap bounds how much poppler stderr gets folded into an error.
// Damaged PDFs can produce one warning line per page.
const stderrCap = 2 << 10

func (r pdftotextRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, diag bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &diag

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(diag.String())
		if len(msg) > stderrCap {
			msg = msg[:stderrCap] + "...(truncated)"
		}
		if msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	r.logger.Debug("pdftotext extracted text layer",
		"args", strings.Join(args, " "),
		"duration_ms", time.Since(start).Milliseconds(),
		"stdout_bytes", out.Len())
	return out.Bytes(), nil
}

// PopplerSource reads the embedded text layer of born-digital PDFs via
// poppler's pdftotext. It preserves the page layout so that column gaps
// survive as whitespace runs, which several grammars key off. It cannot
// detect tables.
type PopplerSource struct {
	cfg    PopplerConfig
	runner Runner
	logger *slog.Logger
}

func NewPopplerSource(cfg PopplerConfig, logger *slog.Logger) *PopplerSource {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	return &PopplerSource{cfg: cfg, runner: pdftotextRunner{logger: logger}, logger: logger}
}

// WithRunner swaps the command runner, for tests.
func (s *PopplerSource) WithRunner(r Runner) *PopplerSource {
	s.runner = r
	return s
}

func (s *PopplerSource) RawText(ctx context.Context, path string) (string, error) {
	out, err := s.runner.Output(ctx, s.cfg.Pdftotext, "-layout", path, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext %s: %w", path, err)
	}
	text := string(out)
	if len(strings.TrimSpace(text)) < ScannedTextThreshold {
		return text, fmt.Errorf("pdftotext %s: %w", path, ErrNoText)
	}
	return text, nil
}

func (s *PopplerSource) TextLines(ctx context.Context, path string, useOCR bool) ([]string, error) {
	if useOCR {
		return nil, fmt.Errorf("poppler backend has no ocr: %w", ErrNoText)
	}
	text, err := s.RawText(ctx, path)
	if err != nil {
		return nil, err
	}
	return SplitLines(text), nil
}

func (s *PopplerSource) Tables(context.Context, string) ([]entity.Table, error) {
	return nil, ErrNoTables
}

// SplitLines breaks raw text into trimmed, non-empty lines.
func SplitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			lines = append(lines, t)
		}
	}
	return lines
}
