package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bgv-audit/invoice-audit/internal/common"
	"github.com/bgv-audit/invoice-audit/internal/entity"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS invoices (
	id             TEXT PRIMARY KEY,
	filename       TEXT NOT NULL,
	invoice_number TEXT NOT NULL,
	provider_name  TEXT NOT NULL,
	grand_total    DOUBLE PRECISION NOT NULL,
	audit_status   TEXT NOT NULL,
	audit_report   JSONB,
	processed_at   TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS line_item_fingerprints (
	fingerprint_id      TEXT PRIMARY KEY,
	invoice_id          TEXT NOT NULL,
	invoice_number      TEXT NOT NULL,
	provider_name       TEXT NOT NULL,
	candidate_id        TEXT NOT NULL,
	service_date        TEXT NOT NULL,
	amount              DOUBLE PRECISION NOT NULL,
	service_description TEXT NOT NULL,
	processed_at        TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_fingerprints_invoice ON line_item_fingerprints (invoice_id);
`

// Migrate creates the audit tables if they do not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	logger.Debug("database schema up to date")
	return nil
}

// PgStore implements FingerprintStore and InvoiceStore on PostgreSQL.
type PgStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPgStore(pool *pgxpool.Pool, logger *slog.Logger) *PgStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PgStore{pool: pool, logger: logger}
}

func (s *PgStore) GetFingerprint(ctx context.Context, fingerprintID string) (*entity.FingerprintRecord, error) {
	const q = `
SELECT fingerprint_id, invoice_id, invoice_number, provider_name,
       candidate_id, service_date, amount, service_description, processed_at
FROM line_item_fingerprints WHERE fingerprint_id = $1`
	var rec entity.FingerprintRecord
	err := s.pool.QueryRow(ctx, q, fingerprintID).Scan(
		&rec.FingerprintID, &rec.InvoiceID, &rec.InvoiceNumber, &rec.ProviderName,
		&rec.CandidateID, &rec.ServiceDate, &rec.Amount, &rec.ServiceDescription,
		&rec.ProcessedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("fingerprint %s: %w", fingerprintID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get fingerprint: %w", err)
	}
	return &rec, nil
}

// SaveFingerprints inserts the batch in one transaction. Conflicting
// fingerprints are skipped so the original billing record survives.
func (s *PgStore) SaveFingerprints(ctx context.Context, records []entity.FingerprintRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	const q = `
INSERT INTO line_item_fingerprints
	(fingerprint_id, invoice_id, invoice_number, provider_name,
	 candidate_id, service_date, amount, service_description, processed_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (fingerprint_id) DO NOTHING`

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(q,
			rec.FingerprintID, rec.InvoiceID, rec.InvoiceNumber, rec.ProviderName,
			rec.CandidateID, rec.ServiceDate, rec.Amount, rec.ServiceDescription,
			rec.ProcessedAt,
		)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin fingerprint batch: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	br := tx.SendBatch(ctx, batch)
	inserted := 0
	for range records {
		tag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return 0, fmt.Errorf("insert fingerprint: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("close fingerprint batch: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit fingerprint batch: %w", err)
	}
	s.logger.Debug("fingerprints saved", "batch", len(records), "inserted", inserted)
	return inserted, nil
}

func (s *PgStore) SaveInvoice(ctx context.Context, inv *entity.Invoice) error {
	report, err := json.Marshal(inv.AuditReport)
	if err != nil {
		return fmt.Errorf("marshal audit report: %w", err)
	}
	const q = `
INSERT INTO invoices
	(id, filename, invoice_number, provider_name, grand_total,
	 audit_status, audit_report, processed_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
	filename = EXCLUDED.filename,
	invoice_number = EXCLUDED.invoice_number,
	provider_name = EXCLUDED.provider_name,
	grand_total = EXCLUDED.grand_total,
	audit_status = EXCLUDED.audit_status,
	audit_report = EXCLUDED.audit_report,
	processed_at = EXCLUDED.processed_at`
	_, err = s.pool.Exec(ctx, q,
		inv.ID, inv.Filename, inv.InvoiceNumber, inv.ProviderName,
		inv.GrandTotal, string(inv.AuditStatus), report, inv.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("save invoice %s: %w", inv.ID, err)
	}
	return nil
}

func (s *PgStore) GetInvoice(ctx context.Context, id string) (*entity.Invoice, error) {
	const q = `
SELECT id, filename, invoice_number, provider_name, grand_total,
       audit_status, audit_report, processed_at
FROM invoices WHERE id = $1`
	var inv entity.Invoice
	var status string
	var report []byte
	err := s.pool.QueryRow(ctx, q, id).Scan(
		&inv.ID, &inv.Filename, &inv.InvoiceNumber, &inv.ProviderName,
		&inv.GrandTotal, &status, &report, &inv.ProcessedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("invoice %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	inv.AuditStatus = statusFromString(status)
	if len(report) > 0 {
		if err := json.Unmarshal(report, &inv.AuditReport); err != nil {
			return nil, fmt.Errorf("unmarshal audit report: %w", err)
		}
	}
	return &inv, nil
}

func (s *PgStore) ListInvoices(ctx context.Context, limit int) ([]entity.Invoice, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT id, filename, invoice_number, provider_name, grand_total,
       audit_status, processed_at
FROM invoices ORDER BY processed_at DESC LIMIT $1`
	rows, err := s.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var out []entity.Invoice
	for rows.Next() {
		var inv entity.Invoice
		var status string
		if err := rows.Scan(&inv.ID, &inv.Filename, &inv.InvoiceNumber, &inv.ProviderName,
			&inv.GrandTotal, &status, &inv.ProcessedAt); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		inv.AuditStatus = statusFromString(status)
		out = append(out, inv)
	}
	return out, rows.Err()
}
