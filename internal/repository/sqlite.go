package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/bgv-audit/invoice-audit/internal/common"
	"github.com/bgv-audit/invoice-audit/internal/entity"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS invoices (
	id             TEXT PRIMARY KEY,
	filename       TEXT NOT NULL,
	invoice_number TEXT NOT NULL,
	provider_name  TEXT NOT NULL,
	grand_total    REAL NOT NULL,
	audit_status   TEXT NOT NULL,
	audit_report   TEXT,
	processed_at   TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS line_item_fingerprints (
	fingerprint_id      TEXT PRIMARY KEY,
	invoice_id          TEXT NOT NULL,
	invoice_number      TEXT NOT NULL,
	provider_name       TEXT NOT NULL,
	candidate_id        TEXT NOT NULL,
	service_date        TEXT NOT NULL,
	amount              REAL NOT NULL,
	service_description TEXT NOT NULL,
	processed_at        TIMESTAMP NOT NULL
);
`

// SQLiteStore implements FingerprintStore and InvoiceStore on a local
// SQLite file. Used by the one-shot CLI, where a PostgreSQL server is not
// worth the setup.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func OpenSQLite(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	logger.Debug("sqlite history open", "path", path)
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) GetFingerprint(ctx context.Context, fingerprintID string) (*entity.FingerprintRecord, error) {
	const q = `
SELECT fingerprint_id, invoice_id, invoice_number, provider_name,
       candidate_id, service_date, amount, service_description, processed_at
FROM line_item_fingerprints WHERE fingerprint_id = ?`
	var rec entity.FingerprintRecord
	err := s.db.QueryRowContext(ctx, q, fingerprintID).Scan(
		&rec.FingerprintID, &rec.InvoiceID, &rec.InvoiceNumber, &rec.ProviderName,
		&rec.CandidateID, &rec.ServiceDate, &rec.Amount, &rec.ServiceDescription,
		&rec.ProcessedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("fingerprint %s: %w", fingerprintID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get fingerprint: %w", err)
	}
	return &rec, nil
}

func (s *SQLiteStore) SaveFingerprints(ctx context.Context, records []entity.FingerprintRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin fingerprint batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
INSERT OR IGNORE INTO line_item_fingerprints
	(fingerprint_id, invoice_id, invoice_number, provider_name,
	 candidate_id, service_date, amount, service_description, processed_at)
VALUES (?,?,?,?,?,?,?,?,?)`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("prepare fingerprint insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	inserted := 0
	for _, rec := range records {
		res, err := stmt.ExecContext(ctx,
			rec.FingerprintID, rec.InvoiceID, rec.InvoiceNumber, rec.ProviderName,
			rec.CandidateID, rec.ServiceDate, rec.Amount, rec.ServiceDescription,
			rec.ProcessedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("insert fingerprint: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit fingerprint batch: %w", err)
	}
	return inserted, nil
}

func (s *SQLiteStore) SaveInvoice(ctx context.Context, inv *entity.Invoice) error {
	report, err := json.Marshal(inv.AuditReport)
	if err != nil {
		return fmt.Errorf("marshal audit report: %w", err)
	}
	const q = `
INSERT OR REPLACE INTO invoices
	(id, filename, invoice_number, provider_name, grand_total,
	 audit_status, audit_report, processed_at)
VALUES (?,?,?,?,?,?,?,?)`
	_, err = s.db.ExecContext(ctx, q,
		inv.ID, inv.Filename, inv.InvoiceNumber, inv.ProviderName,
		inv.GrandTotal, string(inv.AuditStatus), string(report), inv.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("save invoice %s: %w", inv.ID, err)
	}
	return nil
}

func (s *SQLiteStore) GetInvoice(ctx context.Context, id string) (*entity.Invoice, error) {
	const q = `
SELECT id, filename, invoice_number, provider_name, grand_total,
       audit_status, audit_report, processed_at
FROM invoices WHERE id = ?`
	var inv entity.Invoice
	var status, report string
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&inv.ID, &inv.Filename, &inv.InvoiceNumber, &inv.ProviderName,
		&inv.GrandTotal, &status, &report, &inv.ProcessedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("invoice %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	inv.AuditStatus = statusFromString(status)
	if report != "" {
		if err := json.Unmarshal([]byte(report), &inv.AuditReport); err != nil {
			return nil, fmt.Errorf("unmarshal audit report: %w", err)
		}
	}
	return &inv, nil
}

func (s *SQLiteStore) ListInvoices(ctx context.Context, limit int) ([]entity.Invoice, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT id, filename, invoice_number, provider_name, grand_total,
       audit_status, processed_at
FROM invoices ORDER BY processed_at DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, q, limit)
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
