package provider

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bgv-audit/invoice-audit/internal/entity"
)

func TestCityMDParseLines(t *testing.T) {
	g := NewCityMD()
	lines := []string{
		"CityMD Urgent Care",
		"Patient: DOE, JANE Patient ID: 123456",
		"01/20/2024 A1234 Office Visit Level 2 $125.00",
		"01/21/2024 B5678,C9 Rapid Strep Test $45.00",
		"Payment Due $170.00",
		"Patient: SMITH, JOHN Patient ID: 654321",
		"01/22/2024 A1234 Office Visit Level 1 $95.00",
	}
	want := []entity.ExtractedLineItem{
		{
			ServiceDate:        "01/20/2024",
			CandidateID:        "123456",
			CandidateName:      "DOE, JANE",
			Amount:             125,
			ServiceDescription: "Office Visit Level 2",
			Metadata:           map[string]string{"procedure_code": "A1234"},
		},
		{
			ServiceDate:        "01/21/2024",
			CandidateID:        "123456",
			CandidateName:      "DOE, JANE",
			Amount:             45,
			ServiceDescription: "Rapid Strep Test",
			Metadata:           map[string]string{"procedure_code": "B5678,C9"},
		},
		{
			ServiceDate:        "01/22/2024",
			CandidateID:        "654321",
			CandidateName:      "SMITH, JOHN",
			Amount:             95,
			ServiceDescription: "Office Visit Level 1",
			Metadata:           map[string]string{"procedure_code": "A1234"},
		},
	}
	got := g.ParseLines(lines)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseLines mismatch (-want +got):\n%s", diff)
	}
}

func TestCityMDExtractHeader(t *testing.T) {
	g := NewCityMD()
	h := g.ExtractHeader("CityMD\nID #: AB12CD\nPayment Due $170.00")
	if h.InvoiceNumber != "AB12CD" || !h.HasNumber {
		t.Errorf("InvoiceNumber = %q, want AB12CD", h.InvoiceNumber)
	}
	if h.GrandTotal != 170 || !h.HasTotal {
		t.Errorf("GrandTotal = %v, want 170.00", h.GrandTotal)
	}
}
