package linesource

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuildRowsGroupsByMidpoint(t *testing.T) {
	// Two visual rows with slight vertical jitter, tokens out of reading
	// order.
	toks := []token{
		{text: "$45.00", x: 400, y: 101},
		{text: "01/15/2024", x: 10, y: 100},
		{text: "Screen", x: 210, y: 99},
		{text: "Drug", x: 150, y: 102},
		{text: "LAB", x: 150, y: 140},
		{text: "$12.34", x: 400, y: 141},
		{text: "01/16/2024", x: 10, y: 139},
	}
	want := []string{
		"01/15/2024 Drug Screen $45.00",
		"01/16/2024 LAB $12.34",
	}
	got := buildRows(toks, 10)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("buildRows mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildRowsSeparatesDistantRows(t *testing.T) {
	toks := []token{
		{text: "a", x: 0, y: 10},
		{text: "b", x: 0, y: 25},
		{text: "c", x: 0, y: 40},
	}
	got := buildRows(toks, 10)
	if len(got) != 3 {
		t.Errorf("got %d rows, want 3: %v", len(got), got)
	}
}

func TestBuildRowsEmpty(t *testing.T) {
	if got := buildRows(nil, 10); got != nil {
		t.Errorf("buildRows(nil) = %v, want nil", got)
	}
}

func TestSplitLines(t *testing.T) {
	text := "first line\n\n   \n  second line  \nthird\n"
	want := []string{"first line", "second line", "third"}
	if diff := cmp.Diff(want, SplitLines(text)); diff != "" {
		t.Errorf("SplitLines mismatch (-want +got):\n%s", diff)
	}
}
