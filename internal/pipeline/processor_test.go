package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/bgv-audit/invoice-audit/constants"
	"github.com/bgv-audit/invoice-audit/internal/audit"
	"github.com/bgv-audit/invoice-audit/internal/linesource"
	"github.com/bgv-audit/invoice-audit/internal/repository"
)

func newTestProcessor(src linesource.Source, store *repository.MemoryStore, at time.Time) *Processor {
	extractor := newTestExtractor(src)
	p := NewProcessor(extractor, audit.NewEngine(store, nil), store, store, nil)
	p.now = func() time.Time { return at }
	return p
}

func TestProcessEndToEnd(t *testing.T) {
	src := &fakeSource{
		text:   questText,
		lines:  questLines,
		ocrErr: linesource.ErrNoText,
	}
	store := repository.NewMemoryStore()
	at := time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)
	proc := newTestProcessor(src, store, at)

	res, err := proc.Process(context.Background(), "/invoices/quest.pdf", "")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Invoice.ID != "9876543" {
		t.Errorf("invoice ID = %q, want the invoice number as-is", res.Invoice.ID)
	}
	if res.Invoice.Filename != "quest.pdf" {
		t.Errorf("Filename = %q, want quest.pdf", res.Invoice.Filename)
	}
	if res.NewFingerprints != 2 {
		t.Errorf("NewFingerprints = %d, want 2", res.NewFingerprints)
	}
	if res.Report.OverallStatus != constants.AuditStatusPass {
		t.Errorf("OverallStatus = %s, want PASS: %+v", res.Report.OverallStatus, res.Report.Results)
	}

	saved, err := store.GetInvoice(context.Background(), "9876543")
	if err != nil {
		t.Fatalf("GetInvoice: %v", err)
	}
	if saved.AuditStatus != constants.AuditStatusPass {
		t.Errorf("persisted status = %s, want PASS", saved.AuditStatus)
	}
	if !saved.ProcessedAt.Equal(at) {
		t.Errorf("ProcessedAt = %v, want %v", saved.ProcessedAt, at)
	}
}

func TestProcessReprocessingIsClean(t *testing.T) {
	src := &fakeSource{
		text:   questText,
		lines:  questLines,
		ocrErr: linesource.ErrNoText,
	}
	store := repository.NewMemoryStore()
	proc := newTestProcessor(src, store, time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC))

	if _, err := proc.Process(context.Background(), "quest.pdf", ""); err != nil {
		t.Fatalf("first run: %v", err)
	}
	res, err := proc.Process(context.Background(), "quest.pdf", "")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	// The invoice sees its own fingerprints in history, which must not count
	// as duplicates, and the first billing stays on record.
	if res.Report.OverallStatus != constants.AuditStatusPass {
		t.Errorf("reprocess status = %s, want PASS: %+v", res.Report.OverallStatus, res.Report.Results)
	}
	if res.NewFingerprints != 0 {
		t.Errorf("NewFingerprints = %d on reprocess, want 0", res.NewFingerprints)
	}
}

func TestProcessCrossInvoiceDuplicateFails(t *testing.T) {
	store := repository.NewMemoryStore()
	at := time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)

	first := &fakeSource{text: questText, lines: questLines, ocrErr: linesource.ErrNoText}
	if _, err := newTestProcessor(first, store, at).Process(context.Background(), "a.pdf", ""); err != nil {
		t.Fatalf("first invoice: %v", err)
	}

	// A second invoice re-bills one of the same services.
	secondText := "QUEST DIAGNOSTICS INCORPORATED\n" +
		"12345 NDA 9876544 01/22/2024\n" +
		"Amount Due: $45.00\n"
	second := &fakeSource{
		text:   secondText,
		lines:  questLines[:2],
		ocrErr: linesource.ErrNoText,
	}
	res, err := newTestProcessor(second, store, at.Add(48*time.Hour)).Process(context.Background(), "b.pdf", "")
	if err != nil {
		t.Fatalf("second invoice: %v", err)
	}
	if res.Report.OverallStatus != constants.AuditStatusFail {
		t.Errorf("re-billed service must fail the audit: %+v", res.Report.Results)
	}
}

func TestPersistID(t *testing.T) {
	at := time.Date(2024, 1, 20, 12, 30, 45, 0, time.UTC)
	if got := persistID("9876543", at); got != "9876543" {
		t.Errorf("persistID real number = %q, want it unchanged", got)
	}
	want := "UNKNOWN-20240120T123045"
	if got := persistID(constants.UnknownInvoiceNumber, at); got != want {
		t.Errorf("persistID placeholder = %q, want %q", got, want)
	}
}
