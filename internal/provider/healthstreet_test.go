package provider

import "testing"

func TestHealthStreetParseLines(t *testing.T) {
	g := NewHealthStreet()
	lines := []string{
		"Health Street Invoice # HS-100",
		"Date Name Service Amount",
		"1/3/2024 Jane Doe 5 Panel Drug Test 49.00",
		"1/4/2024 John Smith Background Check 35.00",
		"Balance Due $84.00",
	}
	got := g.ParseLines(lines)
	if len(got) != 2 {
		t.Fatalf("got %d items, want 2", len(got))
	}
	first := got[0]
	if first.ServiceDate != "01/03/2024" {
		t.Errorf("ServiceDate = %q, want 01/03/2024", first.ServiceDate)
	}
	// No SSN or file number exists on these layouts; the id is derived from
	// the name and stands in for it.
	if first.CandidateID != "JANEDOE" || first.CandidateName != "JANEDOE" {
		t.Errorf("candidate = %q / %q, want JANEDOE for both", first.CandidateID, first.CandidateName)
	}
	if first.ServiceDescription != "5 panel drug test" || first.Amount != 49 {
		t.Errorf("item = %+v", first)
	}
}

func TestHealthStreetHeaderTakesLastTotal(t *testing.T) {
	g := NewHealthStreet()
	// Multi-page statements repeat a running total; the final one counts.
	text := "HealthStreet\nInvoice # HS-100\nBalance Due $49.00\npage 2\nBalance Due $84.00"
	h := g.ExtractHeader(text)
	if h.InvoiceNumber != "HS-100" || !h.HasNumber {
		t.Errorf("InvoiceNumber = %q, want HS-100", h.InvoiceNumber)
	}
	if h.GrandTotal != 84 || !h.HasTotal {
		t.Errorf("GrandTotal = %v, want 84.00 (last occurrence)", h.GrandTotal)
	}
}
