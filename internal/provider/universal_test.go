package provider

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bgv-audit/invoice-audit/internal/entity"
)

func TestUniversalIdentifyRequiresBothHeaders(t *testing.T) {
	g := NewUniversal()
	if !g.Identify("Candidate name - order number\nItem Total") {
		t.Error("both headers present, want identified")
	}
	if g.Identify("Candidate name - order number") {
		t.Error("one header alone must not identify")
	}
	if g.Identify("Item Total") {
		t.Error("one header alone must not identify")
	}
}

func TestUniversalParseLines(t *testing.T) {
	g := NewUniversal()
	lines := []string{
		"Candidate name - order number",
		"1/8/2024 Jane Doe - (Order # 555123)",
		"Criminal History Search $12.00",
		"Employment Verification $9.50",
		"Item Total $21.50",
		"Subtotal for Order # 555123 $21.50",
		"1/9/2024 John Smith - (Order # 555124)",
		"Education Verification $7.00",
		"Invoice Total $28.50",
	}
	want := []entity.ExtractedLineItem{
		{
			ServiceDate:        "01/08/2024",
			CandidateID:        "555123",
			CandidateName:      "Jane Doe",
			Amount:             12,
			ServiceDescription: "Criminal History Search",
			Metadata:           map[string]string{"order_number": "555123"},
		},
		{
			ServiceDate:        "01/08/2024",
			CandidateID:        "555123",
			CandidateName:      "Jane Doe",
			Amount:             9.5,
			ServiceDescription: "Employment Verification",
			Metadata:           map[string]string{"order_number": "555123"},
		},
		{
			ServiceDate:        "01/09/2024",
			CandidateID:        "555124",
			CandidateName:      "John Smith",
			Amount:             7,
			ServiceDescription: "Education Verification",
			Metadata:           map[string]string{"order_number": "555124"},
		},
	}
	got := g.ParseLines(lines)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseLines mismatch (-want +got):\n%s", diff)
	}
}
