// Package export renders audit outcomes as XLSX workbooks for the billing
// team: one summary sheet, one line item sheet, one findings sheet.
package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/bgv-audit/invoice-audit/internal/pipeline"
)

// Service produces XLSX bytes from processed invoice results.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// WorkbookXLSX renders a batch of processing results into one workbook.
func (s *Service) WorkbookXLSX(results []*pipeline.Result) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	if err := s.writeSummary(f, results); err != nil {
		return nil, err
	}
	if err := s.writeLineItems(f, results); err != nil {
		return nil, err
	}
	if err := s.writeFindings(f, results); err != nil {
		return nil, err
	}
	// Drop the default sheet left by excelize.
	_ = f.DeleteSheet("Sheet1")
	if idx, _ := f.GetSheetIndex("Summary"); idx >= 0 {
		f.SetActiveSheet(idx)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.xlsx.ok",
		"invoices", len(results),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func newSheet(f *excelize.File, name string, headers []string) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(name, cell, h); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func (s *Service) writeSummary(f *excelize.File, results []*pipeline.Result) error {
	const sheet = "Summary"
	if err := newSheet(f, sheet, []string{
		"Invoice ID", "Provider", "Filename", "Grand Total",
		"Calculated Total", "Line Items", "Audit Status", "Processed At",
	}); err != nil {
		return err
	}
	row := 2
	for _, r := range results {
		writeRow(f, sheet, row, []any{
			r.Invoice.ID,
			r.Invoice.ProviderName,
			r.Invoice.Filename,
			r.Invoice.GrandTotal,
			r.Extracted.CalculatedTotal(),
			len(r.Extracted.LineItems),
			string(r.Invoice.AuditStatus),
			r.Invoice.ProcessedAt.Format("2006-01-02 15:04:05"),
		})
		row++
	}
	_ = f.SetColWidth(sheet, "A", "A", 24)
	_ = f.SetColWidth(sheet, "B", "C", 28)
	_ = f.SetColWidth(sheet, "D", "F", 14)
	_ = f.SetColWidth(sheet, "G", "H", 20)
	return nil
}

func (s *Service) writeLineItems(f *excelize.File, results []*pipeline.Result) error {
	const sheet = "Line Items"
	if err := newSheet(f, sheet, []string{
		"Invoice ID", "Service Date", "Candidate ID", "Candidate Name",
		"Service Description", "Amount", "Fingerprint",
	}); err != nil {
		return err
	}
	row := 2
	for _, r := range results {
		for _, item := range r.Extracted.LineItems {
			writeRow(f, sheet, row, []any{
				r.Invoice.ID,
				item.ServiceDate,
				item.CandidateID,
				item.CandidateName,
				item.ServiceDescription,
				item.Amount,
				item.Fingerprint(),
			})
			row++
		}
	}
	_ = f.SetColWidth(sheet, "A", "A", 24)
	_ = f.SetColWidth(sheet, "B", "D", 18)
	_ = f.SetColWidth(sheet, "E", "E", 40)
	_ = f.SetColWidth(sheet, "G", "G", 36)
	return nil
}

func (s *Service) writeFindings(f *excelize.File, results []*pipeline.Result) error {
	const sheet = "Findings"
	if err := newSheet(f, sheet, []string{
		"Invoice ID", "Check", "Passed", "Message",
	}); err != nil {
		return err
	}
	row := 2
	for _, r := range results {
		for _, res := range r.Report.Results {
			writeRow(f, sheet, row, []any{
				r.Invoice.ID,
				res.CheckName,
				res.Passed,
				res.Message,
			})
			row++
		}
	}
	_ = f.SetColWidth(sheet, "A", "A", 24)
	_ = f.SetColWidth(sheet, "B", "B", 30)
	_ = f.SetColWidth(sheet, "D", "D", 70)
	return nil
}
