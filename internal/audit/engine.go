// Package audit runs the discrepancy checks over an extracted invoice:
// total mismatch, internal duplication, historical duplication. Every check
// always runs; a failing check marks the report, never aborts it.
package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/bgv-audit/invoice-audit/constants"
	"github.com/bgv-audit/invoice-audit/internal/common"
	"github.com/bgv-audit/invoice-audit/internal/entity"
)

// HistoryStore is the read side of the fingerprint history the engine
// consults for cross-invoice duplicates.
type HistoryStore interface {
	// GetFingerprint returns the stored record for a fingerprint id, or
	// common.ErrNotFound.
	GetFingerprint(ctx context.Context, fingerprintID string) (*entity.FingerprintRecord, error)
}

// Engine audits extracted invoices against their own contents and the
// fingerprint history.
type Engine struct {
	history HistoryStore
	logger  *slog.Logger
}

func NewEngine(history HistoryStore, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{history: history, logger: logger}
}

// Run executes all checks for an invoice and assembles the report.
// invoiceID is the persisted identity of the invoice being audited; history
// hits on the same id are the invoice seeing its own earlier run and do not
// count as duplicates.
func (e *Engine) Run(ctx context.Context, invoiceID string, inv *entity.ExtractedInvoice) (*entity.AuditReport, error) {
	historical, err := e.checkHistoricalDuplicates(ctx, invoiceID, inv)
	if err != nil {
		return nil, fmt.Errorf("historical duplication check: %w", err)
	}
	results := []entity.AuditResult{
		checkTotalMismatch(inv),
		checkInternalDuplicates(inv),
		historical,
	}
	report := entity.NewAuditReport(invoiceID, results)
	e.logger.Info("audit complete",
		"invoice_id", invoiceID,
		"provider", inv.ProviderName,
		"status", string(report.OverallStatus),
		"passed_checks", report.PassedChecks(),
		"total_checks", len(results))
	return report, nil
}

func checkTotalMismatch(inv *entity.ExtractedInvoice) entity.AuditResult {
	calculated := inv.CalculatedTotal()
	difference := math.Abs(calculated - inv.GrandTotal)

	if difference <= constants.RoundingTolerance {
		return entity.AuditResult{
			CheckName: constants.CheckTotalMismatch,
			Passed:    true,
			Message:   fmt.Sprintf("Total matches: $%.2f", inv.GrandTotal),
			Details: map[string]any{
				"calculated_total": calculated,
				"invoice_total":    inv.GrandTotal,
			},
		}
	}
	return entity.AuditResult{
		CheckName: constants.CheckTotalMismatch,
		Passed:    false,
		Message: fmt.Sprintf("Total mismatch: Calculated $%.2f vs Invoice $%.2f (Difference: $%.2f)",
			calculated, inv.GrandTotal, difference),
		Details: map[string]any{
			"calculated_total": calculated,
			"invoice_total":    inv.GrandTotal,
			"difference":       difference,
		},
	}
}

func checkInternalDuplicates(inv *entity.ExtractedInvoice) entity.AuditResult {
	seen := make(map[string]int, len(inv.LineItems))
	var duplicates []map[string]any

	for idx, item := range inv.LineItems {
		fp := item.Fingerprint()
		if first, dup := seen[fp]; dup {
			duplicates = append(duplicates, map[string]any{
				"row_number":          idx + 1,
				"candidate_id":        item.CandidateID,
				"service_description": item.ServiceDescription,
				"amount":              item.Amount,
				"duplicate_of_row":    first + 1,
			})
			continue
		}
		seen[fp] = idx
	}

	if len(duplicates) == 0 {
		return entity.AuditResult{
			CheckName: constants.CheckInternalDuplication,
			Passed:    true,
			Message:   "No internal duplicates found",
			Details:   map[string]any{"duplicate_count": 0},
		}
	}
	return entity.AuditResult{
		CheckName: constants.CheckInternalDuplication,
		Passed:    false,
		Message:   fmt.Sprintf("Found %d internal duplicate(s)", len(duplicates)),
		Details: map[string]any{
			"duplicate_count": len(duplicates),
			"duplicates":      duplicates,
		},
	}
}

func (e *Engine) checkHistoricalDuplicates(ctx context.Context, invoiceID string, inv *entity.ExtractedInvoice) (entity.AuditResult, error) {
	var duplicates []map[string]any

	for idx, item := range inv.LineItems {
		existing, err := e.history.GetFingerprint(ctx, item.Fingerprint())
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				continue
			}
			return entity.AuditResult{}, err
		}
		if existing.InvoiceID == invoiceID {
			continue
		}
		dup := map[string]any{
			"row_number":           idx + 1,
			"candidate_id":         item.CandidateID,
			"service_description":  item.ServiceDescription,
			"amount":               item.Amount,
			"previously_billed_in": existing.InvoiceNumber,
		}
		if !existing.ProcessedAt.IsZero() {
			dup["previous_invoice_date"] = existing.ProcessedAt.Format("2006-01-02T15:04:05")
		}
		duplicates = append(duplicates, dup)
	}

	if len(duplicates) == 0 {
		return entity.AuditResult{
			CheckName: constants.CheckHistoricalDuplicates,
			Passed:    true,
			Message:   "No historical duplicates found",
			Details:   map[string]any{"duplicate_count": 0},
		}, nil
	}
	return entity.AuditResult{
		CheckName: constants.CheckHistoricalDuplicates,
		Passed:    false,
		Message:   fmt.Sprintf("Found %d historical duplicate(s)", len(duplicates)),
		Details: map[string]any{
			"duplicate_count": len(duplicates),
			"duplicates":      duplicates,
		},
	}, nil
}
