package schema

import (
	"testing"

	"github.com/bgv-audit/invoice-audit/constants"
	"github.com/bgv-audit/invoice-audit/internal/entity"
)

func validReport() map[string]any {
	report := entity.NewAuditReport("9876543", []entity.AuditResult{
		{
			CheckName: constants.CheckTotalMismatch,
			Passed:    true,
			Message:   "Total matches: $57.34",
			Details:   map[string]any{"calculated_total": 57.34, "invoice_total": 57.34},
		},
		{
			CheckName: constants.CheckInternalDuplication,
			Passed:    true,
			Message:   "No internal duplicates found",
			Details:   map[string]any{"duplicate_count": 0},
		},
		{
			CheckName: constants.CheckHistoricalDuplicates,
			Passed:    false,
			Message:   "Found 1 historical duplicate(s)",
			Details:   map[string]any{"duplicate_count": 1},
		},
	})
	return report.ToMap()
}

func TestValidateReportAcceptsEngineOutput(t *testing.T) {
	if err := ValidateReport(validReport()); err != nil {
		t.Fatalf("ValidateReport: %v", err)
	}
}

func TestValidateReportRejectsUnknownCheckName(t *testing.T) {
	report := validReport()
	results := report["results"].([]map[string]any)
	results[0]["check_name"] = "Vibe Check"
	if err := ValidateReport(report); err == nil {
		t.Fatal("unknown check name must be rejected")
	}
}

func TestValidateReportRejectsBadStatus(t *testing.T) {
	report := validReport()
	report["overall_status"] = "MAYBE"
	if err := ValidateReport(report); err == nil {
		t.Fatal("status outside PASS/FAIL must be rejected")
	}
}

func TestValidateReportRejectsMissingFields(t *testing.T) {
	report := validReport()
	delete(report, "invoice_id")
	if err := ValidateReport(report); err == nil {
		t.Fatal("missing invoice_id must be rejected")
	}
}

func validInvoice() map[string]any {
	inv := &entity.ExtractedInvoice{
		InvoiceNumber: "9876543",
		ProviderName:  "Quest Diagnostics",
		GrandTotal:    45,
		LineItems: []entity.ExtractedLineItem{{
			ServiceDate:        "01/15/2024",
			CandidateID:        "ABC123",
			CandidateName:      "DOE, JANE",
			Amount:             45,
			ServiceDescription: "DRUG SCREEN 9 PANEL",
		}},
	}
	return inv.ToMap()
}

func TestValidateInvoiceAcceptsExtractionOutput(t *testing.T) {
	if err := ValidateInvoice(validInvoice()); err != nil {
		t.Fatalf("ValidateInvoice: %v", err)
	}
}

func TestValidateInvoiceRejectsMissingProvider(t *testing.T) {
	inv := validInvoice()
	inv["provider_name"] = ""
	if err := ValidateInvoice(inv); err == nil {
		t.Fatal("empty provider name must be rejected")
	}
}

func TestValidateInvoiceRejectsItemWithoutCandidateID(t *testing.T) {
	inv := validInvoice()
	items := inv["line_items"].([]map[string]any)
	items[0]["candidate_id"] = ""
	if err := ValidateInvoice(inv); err == nil {
		t.Fatal("line item without a candidate id must be rejected")
	}
}
