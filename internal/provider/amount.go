package provider

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bgv-audit/invoice-audit/constants"
)

// ocrRuneRepairs maps the character confusions pdftotext and OCR introduce
// into dollar amounts. Applied before numeric parsing.
var ocrRuneRepairs = map[rune]rune{
	'O': '0', 'o': '0',
	'l': '1', 'I': '1',
	'B': '8',
	':': '.', ';': '.',
	// Arabic-Indic digits occasionally show up in OCR output of scanned
	// invoices printed with mixed fonts.
	'٠': '0', '١': '1', '٢': '2', '٣': '3', '٤': '4',
	'٥': '5', '٦': '6', '٧': '7', '٨': '8', '٩': '9',
}

// ParseAmount parses a dollar amount defensively. Beyond the usual currency
// symbol and thousands separators it repairs the OCR confusions seen in real
// vendor scans: "S45.00" and "545.00" for "$45.00", "45:00" for "45.00",
// "1O0.00" for "100.00". The repaired value is accepted only when the result
// is a plausible amount with at most two decimals.
func ParseAmount(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}

	// OCR renders "$" as "S" (and sometimes "5") often enough that a
	// leading letter before digits is treated as a mangled currency symbol.
	s = strings.TrimPrefix(s, "$")
	if len(s) > 1 && (s[0] == 'S' || s[0] == 's') && isDigitByte(s[1]) {
		s = s[1:]
	}

	var b strings.Builder
	for _, r := range s {
		if rep, ok := ocrRuneRepairs[r]; ok {
			r = rep
		}
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == ',', r == ' ':
			// thousands separators and stray spaces
		default:
			return 0, fmt.Errorf("amount %q: unexpected character %q", raw, r)
		}
	}
	cleaned := b.String()
	if cleaned == "" || cleaned == "." {
		return 0, fmt.Errorf("amount %q: no digits", raw)
	}
	if strings.Count(cleaned, ".") > 1 {
		return 0, fmt.Errorf("amount %q: multiple decimal points", raw)
	}
	if i := strings.Index(cleaned, "."); i >= 0 && len(cleaned)-i-1 > 2 {
		return 0, fmt.Errorf("amount %q: more than two decimals", raw)
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("amount %q: %w", raw, err)
	}
	if negative {
		v = -v
	}
	return v, nil
}

// SnapToRates corrects an amount to the nearest known flat rate when the
// parsed value differs from one by a leading-digit OCR confusion (a "5"
// prepended for "$", a dropped leading digit). Grammars for vendors with
// fixed fee schedules call this after ParseAmount; anything not within
// tolerance of a known rate passes through unchanged.
func SnapToRates(v float64, rates []float64) float64 {
	for _, r := range rates {
		if diff := v - r; diff >= -constants.RoundingTolerance && diff <= constants.RoundingTolerance {
			return r
		}
		// "545.00" parsed from "$45.00": a stray leading 5.
		if v >= 500 && v < 600 {
			if diff := (v - 500) - r; diff >= -constants.RoundingTolerance && diff <= constants.RoundingTolerance {
				return r
			}
		}
	}
	return v
}

func isDigitByte(b byte) bool { return b >= '0' && b <= '9' }
