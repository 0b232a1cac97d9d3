package provider

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bgv-audit/invoice-audit/internal/entity"
)

func TestScoutLogicParseLines(t *testing.T) {
	g := NewScoutLogic()
	lines := []string{
		"Invoice #2002",
		"DATE NAME SSN FILE",
		// Inline anchor: date, name, mask and file number on one line.
		"01/10/2024 DOE, JANE XXX-XX-1234 70001",
		"County Criminal Search Dane County WI ref 123 $15.00",
		"Subtotal for DOE, JANE $15.00",
		// Wrapped name: the mask arrives on the line after the date.
		"01/11/2024 VERY LONG CANDIDATE NAME",
		"THAT WRAPS XXX-XX-5678 70002",
		"Motor Vehicle Report -$5.00",
	}
	want := []entity.ExtractedLineItem{
		{
			ServiceDate:        "01/10/2024",
			CandidateID:        "70001",
			CandidateName:      "70001",
			Amount:             15,
			ServiceDescription: "County Criminal Search Dane County",
			Metadata:           map[string]string{"file_number": "70001"},
		},
		{
			ServiceDate:        "01/11/2024",
			CandidateID:        "70002",
			CandidateName:      "70002",
			Amount:             -5,
			ServiceDescription: "Motor Vehicle Report",
			Metadata:           map[string]string{"file_number": "70002"},
		},
	}
	got := g.ParseLines(lines)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseLines mismatch (-want +got):\n%s", diff)
	}
}

func TestScoutLogicFileNumberWithTrailingHyphen(t *testing.T) {
	g := NewScoutLogic()
	lines := []string{
		"01/10/2024 DOE, JANE XXX-XX-1234 70003 -",
		"Statewide Criminal Search $20.00",
	}
	got := g.ParseLines(lines)
	if len(got) != 1 {
		t.Fatalf("got %d items, want 1", len(got))
	}
	if got[0].CandidateID != "70003" {
		t.Errorf("CandidateID = %q, want 70003", got[0].CandidateID)
	}
}

func TestScoutLogicSummaryRowsSkipped(t *testing.T) {
	g := NewScoutLogic()
	lines := []string{
		"01/10/2024 DOE, JANE XXX-XX-1234 70001",
		"Total Amount Due: $15.00",
		"Invoice Total $15.00",
	}
	if got := g.ParseLines(lines); len(got) != 0 {
		t.Errorf("summary rows produced %d items, want 0", len(got))
	}
}
