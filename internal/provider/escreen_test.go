package provider

import (
	"testing"

	"github.com/bgv-audit/invoice-audit/constants"
)

func TestEScreenParseLines(t *testing.T) {
	g := NewEScreen()
	lines := []string{
		"eScreen, Inc. Invoice Number: 300123",
		"1/5/2024 DOT Urine Collection Doe, Jane 6789 1234567890 N $55.00",
		"1/6/2024 Drug Screen Smith, John 0000 987654 Y $42.00",
		"TOTAL : $97.00",
	}
	got := g.ParseLines(lines)
	if len(got) != 2 {
		t.Fatalf("got %d items, want 2", len(got))
	}

	first := got[0]
	if first.ServiceDate != "01/05/2024" {
		t.Errorf("ServiceDate = %q, want 01/05/2024", first.ServiceDate)
	}
	if first.CandidateID != "6789" || first.CandidateName != "Doe, Jane" {
		t.Errorf("candidate = %q / %q, want 6789 / Doe, Jane", first.CandidateID, first.CandidateName)
	}
	if first.ServiceDescription != "DOT Urine Collection" || first.Amount != 55 {
		t.Errorf("item = %+v", first)
	}
	if first.Metadata["chain_of_custody"] != "1234567890" || first.Metadata["ssn_last_4"] != "6789" {
		t.Errorf("metadata = %v", first.Metadata)
	}

	// A zeroed SSN falls back to the chain of custody id.
	second := got[1]
	if second.CandidateID != "987654" {
		t.Errorf("CandidateID = %q, want the chain id fallback", second.CandidateID)
	}
}

func TestEScreenSnapsFlatPanelRates(t *testing.T) {
	g := NewEScreen()
	lines := []string{
		// A stray leading 5 (OCR-doubled currency symbol) on a $55 panel.
		"1/5/2024 DOT Urine Collection Doe, Jane 6789 1234567890 N $555.00",
		// Not on the fee schedule; must pass through untouched.
		"1/6/2024 Drug Screen Smith, John 0000 987654 Y $42.00",
	}
	got := g.ParseLines(lines)
	if len(got) != 2 {
		t.Fatalf("got %d items, want 2", len(got))
	}
	if got[0].Amount != 55 {
		t.Errorf("Amount = %v, want the snapped rate 55.00", got[0].Amount)
	}
	if got[1].Amount != 42 {
		t.Errorf("Amount = %v, want 42.00 untouched", got[1].Amount)
	}
}

func TestEScreenExtractHeader(t *testing.T) {
	g := NewEScreen()
	h := g.ExtractHeader("eScreen, Inc.\nInvoice Number: 300123\nTOTAL : $97.00")
	if h.InvoiceNumber != "300123" || !h.HasNumber {
		t.Errorf("InvoiceNumber = %q, want 300123", h.InvoiceNumber)
	}
	if h.GrandTotal != 97 || !h.HasTotal {
		t.Errorf("GrandTotal = %v, want 97.00", h.GrandTotal)
	}
}

func TestEScreenName(t *testing.T) {
	if NewEScreen().Name() != constants.ProviderEScreen {
		t.Error("unexpected provider name")
	}
}
