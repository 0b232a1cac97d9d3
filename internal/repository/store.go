package repository

import (
	"context"

	"github.com/bgv-audit/invoice-audit/constants"
	"github.com/bgv-audit/invoice-audit/internal/entity"
)

// FingerprintStore is the line item fingerprint history. The first invoice
// to bill a fingerprint owns it: saving an already-present fingerprint is a
// no-op, so lookups always return the original billing.
type FingerprintStore interface {
	// GetFingerprint returns the record for a fingerprint id, or
	// common.ErrNotFound.
	GetFingerprint(ctx context.Context, fingerprintID string) (*entity.FingerprintRecord, error)

	// SaveFingerprints records a batch atomically, skipping fingerprints
	// already present. Returns the number actually inserted.
	SaveFingerprints(ctx context.Context, records []entity.FingerprintRecord) (int, error)
}

// InvoiceStore persists processed invoice headers and their audit outcome.
type InvoiceStore interface {
	// SaveInvoice inserts or replaces an invoice by id.
	SaveInvoice(ctx context.Context, inv *entity.Invoice) error

	// GetInvoice returns an invoice by id, or common.ErrNotFound.
	GetInvoice(ctx context.Context, id string) (*entity.Invoice, error)

	// ListInvoices returns the most recently processed invoices, newest
	// first, capped at limit.
	ListInvoices(ctx context.Context, limit int) ([]entity.Invoice, error)
}

// statusFromString maps a stored status string back to the typed value,
// treating anything unknown as PENDING.
func statusFromString(s string) constants.AuditStatus {
	switch constants.AuditStatus(s) {
	case constants.AuditStatusPass:
		return constants.AuditStatusPass
	case constants.AuditStatusFail:
		return constants.AuditStatusFail
	default:
		return constants.AuditStatusPending
	}
}
