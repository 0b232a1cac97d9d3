// Package canon holds the pure canonicalization rules shared by every
// provider grammar and by the fingerprint function. Two extraction passes
// over the same service must canonicalize to the same values, otherwise
// duplicate detection across invoices falls apart.
package canon

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	reDate       = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	reNonWord    = regexp.MustCompile(`[^\w\s-]`)
	reWhitespace = regexp.MustCompile(`\s+`)
)

// DescriptionTokenLimit bounds the normalized description to a stable
// prefix. Vendors pad descriptions with clinic codes and page artifacts
// past the first few words; the prefix is what survives OCR re-extraction.
const DescriptionTokenLimit = 5

// NormalizeDate zero-pads a M/D/YYYY date to MM/DD/YYYY. Unparseable input
// is returned unchanged rather than failing: downstream consumers tolerate
// non-canonical leftovers.
func NormalizeDate(s string) string {
	m := reDate.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return s
	}
	return fmt.Sprintf("%02s/%02s/%s", m[1], m[2], m[3])
}

// NormalizeDescription lower-cases, collapses whitespace runs, strips
// everything outside word characters, whitespace and hyphens, trims
// leading/trailing hyphens, and truncates to DescriptionTokenLimit tokens.
// Idempotent: NormalizeDescription(NormalizeDescription(s)) == NormalizeDescription(s).
func NormalizeDescription(s string) string {
	s = strings.ToLower(s)
	s = reNonWord.ReplaceAllString(s, "")
	s = reWhitespace.ReplaceAllString(s, " ")
	s = strings.Trim(s, "- ")
	tokens := strings.Fields(s)
	if len(tokens) > DescriptionTokenLimit {
		tokens = tokens[:DescriptionTokenLimit]
	}
	return strings.Join(tokens, " ")
}

// FormatAmount renders an amount as a fixed 2-decimal string. The canonical
// string, not the float, is what gets hashed, so binary floating-point
// representation differences cannot change a fingerprint across runs.
func FormatAmount(a float64) string {
	return fmt.Sprintf("%.2f", a)
}
