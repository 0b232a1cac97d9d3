package linesource

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bgv-audit/invoice-audit/internal/entity"
)

// CompositeSource routes between the embedded-text backend and the OCR
// backend: pdftotext for plain text, Document AI for tables and OCR rows.
// The OCR backend is optional; without it, table and OCR requests fail with
// the sentinel errors the orchestrator already handles.
type CompositeSource struct {
	text   *PopplerSource
	ocr    *DocAISource
	logger *slog.Logger
}

func NewCompositeSource(text *PopplerSource, ocr *DocAISource, logger *slog.Logger) *CompositeSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &CompositeSource{text: text, ocr: ocr, logger: logger}
}

func (s *CompositeSource) RawText(ctx context.Context, path string) (string, error) {
	text, err := s.text.RawText(ctx, path)
	if err == nil {
		return text, nil
	}
	if errors.Is(err, ErrNoText) && s.ocr != nil {
		s.logger.Info("text layer missing, reading raw text via ocr", "path", path)
		return s.ocr.RawText(ctx, path)
	}
	return text, err
}

func (s *CompositeSource) TextLines(ctx context.Context, path string, useOCR bool) ([]string, error) {
	if useOCR {
		if s.ocr == nil {
			return nil, ErrNoText
		}
		return s.ocr.TextLines(ctx, path, true)
	}
	return s.text.TextLines(ctx, path, false)
}

func (s *CompositeSource) Tables(ctx context.Context, path string) ([]entity.Table, error) {
	if s.ocr == nil {
		return nil, ErrNoTables
	}
	return s.ocr.Tables(ctx, path)
}
