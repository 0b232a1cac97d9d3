package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/bgv-audit/invoice-audit/constants"
	"github.com/bgv-audit/invoice-audit/internal/audit"
	"github.com/bgv-audit/invoice-audit/internal/entity"
	"github.com/bgv-audit/invoice-audit/internal/repository"
	"github.com/bgv-audit/invoice-audit/internal/schema"
)

// Result is the full outcome of processing one invoice PDF.
type Result struct {
	Invoice         *entity.Invoice
	Extracted       *entity.ExtractedInvoice
	Report          *entity.AuditReport
	NewFingerprints int
}

// Processor runs a document end to end: extraction cascade, audit checks,
// invoice persistence, fingerprint history update.
type Processor struct {
	extractor    *Extractor
	engine       *audit.Engine
	invoices     repository.InvoiceStore
	fingerprints repository.FingerprintStore
	logger       *slog.Logger
	now          func() time.Time
}

func NewProcessor(
	extractor *Extractor,
	engine *audit.Engine,
	invoices repository.InvoiceStore,
	fingerprints repository.FingerprintStore,
	logger *slog.Logger,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		extractor:    extractor,
		engine:       engine,
		invoices:     invoices,
		fingerprints: fingerprints,
		logger:       logger,
		now:          time.Now,
	}
}

// Process extracts, audits and persists one invoice PDF. providerName may
// be empty, in which case the vendor is auto-detected from the document
// text. The audit runs before the fingerprints are stored, so an invoice
// never collides with its own history on first processing.
func (p *Processor) Process(ctx context.Context, path, providerName string) (*Result, error) {
	var extracted *entity.ExtractedInvoice
	var err error
	if providerName == "" {
		extracted, err = p.extractor.Extract(ctx, path)
	} else {
		extracted, err = p.extractor.ExtractWithProvider(ctx, path, providerName)
	}
	if err != nil {
		return nil, err
	}
	if err := schema.ValidateInvoice(extracted.ToMap()); err != nil {
		return nil, fmt.Errorf("extraction of %s: %w", filepath.Base(path), err)
	}

	processedAt := p.now().UTC()
	invoiceID := persistID(extracted.InvoiceNumber, processedAt)

	report, err := p.engine.Run(ctx, invoiceID, extracted)
	if err != nil {
		return nil, fmt.Errorf("audit invoice %s: %w", invoiceID, err)
	}
	if err := schema.ValidateReport(report.ToMap()); err != nil {
		return nil, fmt.Errorf("audit of invoice %s: %w", invoiceID, err)
	}

	inv := &entity.Invoice{
		ID:            invoiceID,
		Filename:      filepath.Base(path),
		InvoiceNumber: extracted.InvoiceNumber,
		ProviderName:  extracted.ProviderName,
		GrandTotal:    extracted.GrandTotal,
		AuditStatus:   report.OverallStatus,
		AuditReport:   report.ToMap(),
		ProcessedAt:   processedAt,
	}
	if err := p.invoices.SaveInvoice(ctx, inv); err != nil {
		return nil, fmt.Errorf("persist invoice %s: %w", invoiceID, err)
	}

	records := make([]entity.FingerprintRecord, 0, len(extracted.LineItems))
	for _, item := range extracted.LineItems {
		records = append(records, entity.FingerprintRecord{
			FingerprintID:      item.Fingerprint(),
			InvoiceID:          invoiceID,
			InvoiceNumber:      extracted.InvoiceNumber,
			ProviderName:       extracted.ProviderName,
			CandidateID:        item.CandidateID,
			ServiceDate:        item.ServiceDate,
			Amount:             item.Amount,
			ServiceDescription: item.ServiceDescription,
			ProcessedAt:        processedAt,
		})
	}
	inserted, err := p.fingerprints.SaveFingerprints(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("persist fingerprints for %s: %w", invoiceID, err)
	}

	p.logger.Info("invoice processed",
		"invoice_id", invoiceID,
		"provider", extracted.ProviderName,
		"line_items", len(extracted.LineItems),
		"new_fingerprints", inserted,
		"audit_status", string(report.OverallStatus))

	return &Result{
		Invoice:         inv,
		Extracted:       extracted,
		Report:          report,
		NewFingerprints: inserted,
	}, nil
}

// persistID derives the storage identity of an invoice. A real invoice
// number is used as-is so reprocessing the same invoice overwrites its
// record instead of duplicating it; the UNKNOWN placeholder gets a
// timestamp suffix so two unidentified invoices never collide.
func persistID(invoiceNumber string, at time.Time) string {
	if invoiceNumber == constants.UnknownInvoiceNumber {
		return fmt.Sprintf("%s-%s", invoiceNumber, at.Format("20060102T150405"))
	}
	return invoiceNumber
}
