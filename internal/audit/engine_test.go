package audit

import (
	"context"
	"testing"
	"time"

	"github.com/bgv-audit/invoice-audit/constants"
	"github.com/bgv-audit/invoice-audit/internal/entity"
	"github.com/bgv-audit/invoice-audit/internal/repository"
)

func item(date, id string, amount float64, desc string) entity.ExtractedLineItem {
	return entity.ExtractedLineItem{
		ServiceDate:        date,
		CandidateID:        id,
		Amount:             amount,
		ServiceDescription: desc,
	}
}

func runEngine(t *testing.T, store *repository.MemoryStore, invoiceID string, inv *entity.ExtractedInvoice) *entity.AuditReport {
	t.Helper()
	report, err := NewEngine(store, nil).Run(context.Background(), invoiceID, inv)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return report
}

func resultFor(t *testing.T, report *entity.AuditReport, check string) entity.AuditResult {
	t.Helper()
	for _, r := range report.Results {
		if r.CheckName == check {
			return r
		}
	}
	t.Fatalf("report missing %q", check)
	return entity.AuditResult{}
}

func TestTotalMismatchWithinTolerance(t *testing.T) {
	inv := &entity.ExtractedInvoice{
		GrandTotal: 100.005,
		LineItems: []entity.ExtractedLineItem{
			item("01/05/2024", "A1", 55, "drug screen"),
			item("01/05/2024", "A2", 45, "physical"),
		},
	}
	report := runEngine(t, repository.NewMemoryStore(), "INV-1", inv)
	res := resultFor(t, report, constants.CheckTotalMismatch)
	if !res.Passed {
		t.Errorf("sub-cent rounding drift must pass: %s", res.Message)
	}
	if report.OverallStatus != constants.AuditStatusPass {
		t.Errorf("OverallStatus = %s, want PASS", report.OverallStatus)
	}
}

func TestTotalMismatchAtCentBoundary(t *testing.T) {
	// A one-cent gap sits exactly on the tolerance. Whether the computed
	// difference lands at or under 0.01 depends on how the literals round
	// in binary: 10.01 rounds down, so 10.01 vs 10.00 comes out just under
	// the tolerance and must pass. (100.01 rounds up and would not, which
	// is why that pair is not usable here.)
	inv := &entity.ExtractedInvoice{
		GrandTotal: 10.01,
		LineItems: []entity.ExtractedLineItem{
			item("01/05/2024", "A1", 10, "drug screen"),
		},
	}
	report := runEngine(t, repository.NewMemoryStore(), "INV-1", inv)
	res := resultFor(t, report, constants.CheckTotalMismatch)
	if !res.Passed {
		t.Errorf("one-cent gap within tolerance must pass: %s", res.Message)
	}
}

func TestTotalMismatchBeyondTolerance(t *testing.T) {
	inv := &entity.ExtractedInvoice{
		GrandTotal: 100.02,
		LineItems: []entity.ExtractedLineItem{
			item("01/05/2024", "A1", 55, "drug screen"),
			item("01/05/2024", "A2", 45, "physical"),
		},
	}
	report := runEngine(t, repository.NewMemoryStore(), "INV-1", inv)
	res := resultFor(t, report, constants.CheckTotalMismatch)
	if res.Passed {
		t.Fatal("two cents off must fail")
	}
	if res.Details["invoice_total"] != 100.02 {
		t.Errorf("details = %v", res.Details)
	}
	if report.OverallStatus != constants.AuditStatusFail {
		t.Errorf("OverallStatus = %s, want FAIL", report.OverallStatus)
	}
}

func TestInternalDuplicates(t *testing.T) {
	dup := item("01/05/2024", "A1", 45, "drug screen")
	inv := &entity.ExtractedInvoice{
		GrandTotal: 135,
		LineItems: []entity.ExtractedLineItem{
			dup,
			item("01/05/2024", "A2", 45, "drug screen"),
			dup,
		},
	}
	report := runEngine(t, repository.NewMemoryStore(), "INV-1", inv)
	res := resultFor(t, report, constants.CheckInternalDuplication)
	if res.Passed {
		t.Fatal("repeated line item must fail")
	}
	if res.Details["duplicate_count"] != 1 {
		t.Errorf("duplicate_count = %v, want 1", res.Details["duplicate_count"])
	}
	dups := res.Details["duplicates"].([]map[string]any)
	if dups[0]["row_number"] != 3 || dups[0]["duplicate_of_row"] != 1 {
		t.Errorf("duplicate rows = %v", dups[0])
	}
}

func TestHistoricalDuplicate(t *testing.T) {
	store := repository.NewMemoryStore()
	billed := item("01/05/2024", "A1", 45, "drug screen")
	_, err := store.SaveFingerprints(context.Background(), []entity.FingerprintRecord{{
		FingerprintID: billed.Fingerprint(),
		InvoiceID:     "INV-1",
		InvoiceNumber: "1001",
		ProcessedAt:   time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC),
	}})
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}

	inv := &entity.ExtractedInvoice{
		GrandTotal: 45,
		LineItems:  []entity.ExtractedLineItem{billed},
	}
	report := runEngine(t, store, "INV-2", inv)
	res := resultFor(t, report, constants.CheckHistoricalDuplicates)
	if res.Passed {
		t.Fatal("previously billed service must fail")
	}
	dups := res.Details["duplicates"].([]map[string]any)
	if dups[0]["previously_billed_in"] != "1001" {
		t.Errorf("previously_billed_in = %v, want 1001", dups[0]["previously_billed_in"])
	}
}

func TestHistoricalCheckSkipsOwnInvoice(t *testing.T) {
	store := repository.NewMemoryStore()
	billed := item("01/05/2024", "A1", 45, "drug screen")
	_, err := store.SaveFingerprints(context.Background(), []entity.FingerprintRecord{{
		FingerprintID: billed.Fingerprint(),
		InvoiceID:     "INV-1",
		InvoiceNumber: "1001",
	}})
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}

	// Reprocessing the same invoice sees its own history, which is not a
	// duplicate.
	inv := &entity.ExtractedInvoice{
		GrandTotal: 45,
		LineItems:  []entity.ExtractedLineItem{billed},
	}
	report := runEngine(t, store, "INV-1", inv)
	res := resultFor(t, report, constants.CheckHistoricalDuplicates)
	if !res.Passed {
		t.Errorf("own history counted as duplicate: %s", res.Message)
	}
}

func TestReportAlwaysCarriesAllChecks(t *testing.T) {
	inv := &entity.ExtractedInvoice{
		GrandTotal: 999,
		LineItems: []entity.ExtractedLineItem{
			item("01/05/2024", "A1", 45, "drug screen"),
			item("01/05/2024", "A1", 45, "drug screen"),
		},
	}
	report := runEngine(t, repository.NewMemoryStore(), "INV-1", inv)
	if len(report.Results) != 3 {
		t.Fatalf("got %d results, want every check present", len(report.Results))
	}
	resultFor(t, report, constants.CheckTotalMismatch)
	resultFor(t, report, constants.CheckInternalDuplication)
	resultFor(t, report, constants.CheckHistoricalDuplicates)
}
