package linesource

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"

	"github.com/bgv-audit/invoice-audit/internal/entity"
)

// DocAIConfig configures the Google Document AI backend.
type DocAIConfig struct {
	ProjectID       string
	Location        string // e.g. "us", "eu"
	ProcessorID     string
	CredentialsFile string // optional; falls back to ADC

	// RowTolerance is the vertical distance, in page pixels, within which
	// OCR tokens are considered part of the same visual row.
	RowTolerance float64
}

// DocAISource OCRs scanned PDFs through Google Document AI. It serves both
// roles the grammars need: detected tables for the structured strategy, and
// token-reconstructed text rows for the OCR re-parse.
type DocAISource struct {
	cfg    DocAIConfig
	client *documentai.DocumentProcessorClient
	logger *slog.Logger
}

func NewDocAISource(ctx context.Context, cfg DocAIConfig, logger *slog.Logger) (*DocAISource, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RowTolerance <= 0 {
		cfg.RowTolerance = 10
	}
	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", cfg.Location)
	opts := []option.ClientOption{option.WithEndpoint(endpoint)}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create document ai client: %w", err)
	}
	return &DocAISource{cfg: cfg, client: client, logger: logger}, nil
}

func (s *DocAISource) Close() error { return s.client.Close() }

func (s *DocAISource) process(ctx context.Context, path string) (*documentaipb.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	name := fmt.Sprintf("projects/%s/locations/%s/processors/%s",
		s.cfg.ProjectID, s.cfg.Location, s.cfg.ProcessorID)
	req := &documentaipb.ProcessRequest{
		Name: name,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  content,
				MimeType: "application/pdf",
			},
		},
		SkipHumanReview: true,
	}
	resp, err := s.client.ProcessDocument(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("document ai process %s: %w", path, err)
	}
	return resp.GetDocument(), nil
}

func (s *DocAISource) RawText(ctx context.Context, path string) (string, error) {
	doc, err := s.process(ctx, path)
	if err != nil {
		return "", err
	}
	return doc.GetText(), nil
}

func (s *DocAISource) TextLines(ctx context.Context, path string, _ bool) ([]string, error) {
	doc, err := s.process(ctx, path)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, page := range doc.GetPages() {
		toks := pageTokens(page, doc.GetText())
		if len(toks) == 0 {
			continue
		}
		lines = append(lines, buildRows(toks, s.cfg.RowTolerance)...)
	}
	if len(lines) == 0 {
		// Processor versions without token layout still return full text.
		lines = SplitLines(doc.GetText())
	}
	s.logger.Debug("document ai text lines", "path", path, "lines", len(lines))
	return lines, nil
}

func (s *DocAISource) Tables(ctx context.Context, path string) ([]entity.Table, error) {
	doc, err := s.process(ctx, path)
	if err != nil {
		return nil, err
	}
	var tables []entity.Table
	for _, page := range doc.GetPages() {
		for _, t := range page.GetTables() {
			var tbl entity.Table
			for _, row := range t.GetHeaderRows() {
				tbl = append(tbl, tableRow(row, doc.GetText()))
			}
			for _, row := range t.GetBodyRows() {
				tbl = append(tbl, tableRow(row, doc.GetText()))
			}
			if len(tbl) > 0 {
				tables = append(tables, tbl)
			}
		}
	}
	if len(tables) == 0 {
		return nil, ErrNoTables
	}
	return tables, nil
}

func tableRow(row *documentaipb.Document_Page_Table_TableRow, fullText string) []string {
	cells := make([]string, 0, len(row.GetCells()))
	for _, cell := range row.GetCells() {
		cells = append(cells, strings.TrimSpace(textFromLayout(cell.GetLayout(), fullText)))
	}
	return cells
}

// textFromLayout resolves a layout's text anchor segments against the
// document's full text.
func textFromLayout(layout *documentaipb.Document_Page_Layout, fullText string) string {
	if layout == nil || layout.GetTextAnchor() == nil {
		return ""
	}
	runes := []rune(fullText)
	total := len(runes)
	var b strings.Builder
	for _, seg := range layout.GetTextAnchor().GetTextSegments() {
		start, end := int(seg.GetStartIndex()), int(seg.GetEndIndex())
		if start < 0 {
			start = 0
		}
		if end > total {
			end = total
		}
		if start > end {
			start = end
		}
		b.WriteString(string(runes[start:end]))
	}
	return b.String()
}
