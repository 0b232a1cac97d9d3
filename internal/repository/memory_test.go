package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bgv-audit/invoice-audit/constants"
	"github.com/bgv-audit/invoice-audit/internal/common"
	"github.com/bgv-audit/invoice-audit/internal/entity"
)

func TestMemoryStoreFingerprintFirstBillingWins(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	first := entity.FingerprintRecord{FingerprintID: "fp-1", InvoiceID: "INV-1", InvoiceNumber: "1001"}
	later := entity.FingerprintRecord{FingerprintID: "fp-1", InvoiceID: "INV-2", InvoiceNumber: "1002"}

	n, err := s.SaveFingerprints(ctx, []entity.FingerprintRecord{first})
	if err != nil || n != 1 {
		t.Fatalf("first save: n=%d err=%v", n, err)
	}
	n, err = s.SaveFingerprints(ctx, []entity.FingerprintRecord{later})
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if n != 0 {
		t.Errorf("re-billing inserted %d records, want 0", n)
	}

	rec, err := s.GetFingerprint(ctx, "fp-1")
	if err != nil {
		t.Fatalf("GetFingerprint: %v", err)
	}
	if rec.InvoiceID != "INV-1" {
		t.Errorf("stored InvoiceID = %q, want the first billing kept", rec.InvoiceID)
	}
}

func TestMemoryStoreGetFingerprintNotFound(t *testing.T) {
	_, err := NewMemoryStore().GetFingerprint(context.Background(), "missing")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreInvoiceRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	inv := &entity.Invoice{
		ID:            "9876543",
		Filename:      "quest.pdf",
		InvoiceNumber: "9876543",
		ProviderName:  string(constants.ProviderQuest),
		GrandTotal:    57.34,
		AuditStatus:   constants.AuditStatusPass,
		ProcessedAt:   time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC),
	}
	if err := s.SaveInvoice(ctx, inv); err != nil {
		t.Fatalf("SaveInvoice: %v", err)
	}
	got, err := s.GetInvoice(ctx, "9876543")
	if err != nil {
		t.Fatalf("GetInvoice: %v", err)
	}
	if got.Filename != "quest.pdf" || got.AuditStatus != constants.AuditStatusPass {
		t.Errorf("round trip = %+v", got)
	}

	// Reprocessing overwrites in place.
	inv.AuditStatus = constants.AuditStatusFail
	if err := s.SaveInvoice(ctx, inv); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _ = s.GetInvoice(ctx, "9876543")
	if got.AuditStatus != constants.AuditStatusFail {
		t.Errorf("overwrite kept status %s", got.AuditStatus)
	}
}

func TestMemoryStoreListInvoicesOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		err := s.SaveInvoice(ctx, &entity.Invoice{
			ID:          id,
			ProcessedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("SaveInvoice %s: %v", id, err)
		}
	}

	got, err := s.ListInvoices(ctx, 2)
	if err != nil {
		t.Fatalf("ListInvoices: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d invoices, want limit of 2", len(got))
	}
	if got[0].ID != "new" || got[1].ID != "mid" {
		t.Errorf("order = [%s %s], want newest first", got[0].ID, got[1].ID)
	}
}
