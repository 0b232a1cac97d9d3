package provider

import (
	"math"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"45.00", 45},
		{"$45.00", 45},
		{"$1,234.56", 1234.56},
		{"1 234.56", 1234.56},
		{"-$5.00", -5},
		{"(12.50)", -12.5},
		{"S45.00", 45},  // OCR reads "$" as "S"
		{"45:00", 45},   // OCR reads "." as ":"
		{"1O0.00", 100}, // OCR reads "0" as "O"
		{"l5.00", 15},   // OCR reads "1" as "l"
		{"12", 12},
		{"0.99", 0.99},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if err != nil {
			t.Errorf("ParseAmount(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ParseAmount(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseAmountRejects(t *testing.T) {
	bad := []string{
		"",
		"   ",
		"abc",
		"1.2.3",
		"1.234",   // more than two decimals
		"45.00 kg",
		"$",
	}
	for _, in := range bad {
		if got, err := ParseAmount(in); err == nil {
			t.Errorf("ParseAmount(%q) = %v, want error", in, got)
		}
	}
}

func TestSnapToRates(t *testing.T) {
	rates := []float64{25, 45, 99.50}
	tests := []struct {
		in, want float64
	}{
		{45, 45},
		{45.005, 45},
		{545, 45},     // "$45.00" read as "545.00"
		{599.50, 99.5}, // "$99.50" read as "599.50"
		{60, 60},      // not near any rate
		{500, 500},    // offset lands on no rate
	}
	for _, tt := range tests {
		if got := SnapToRates(tt.in, rates); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("SnapToRates(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
