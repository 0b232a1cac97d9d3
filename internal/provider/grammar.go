// Package provider holds one parsing grammar per BGV vendor. Each grammar
// knows how to recognize its vendor's invoices and how to turn the
// document's text lines (or table rows) into extracted line items. The
// layouts vary wildly between vendors, but the shape of every grammar is
// the same: open a billing context on an anchor line, accumulate item lines
// under it, close on the next anchor.
package provider

import (
	"strings"

	"github.com/bgv-audit/invoice-audit/constants"
	"github.com/bgv-audit/invoice-audit/internal/entity"
)

// Header is what a grammar pulled out of the document header/footer text.
// Missing fields carry their documented placeholders; the found flags let
// the orchestrator distinguish "zero" from "absent".
type Header struct {
	InvoiceNumber string
	GrandTotal    float64
	HasNumber     bool
	HasTotal      bool
}

// Grammar is one vendor's extraction logic.
type Grammar interface {
	Name() constants.ProviderName

	// Identify reports whether the document text carries this vendor's
	// signature keywords. No false-negative tolerance is attempted: a
	// document matching zero signatures is simply unidentified.
	Identify(text string) bool

	// ExtractHeader scans the document text for the invoice number and the
	// declared grand total, trying each vendor pattern in priority order.
	ExtractHeader(text string) Header

	// ParseLines scans ordered text lines and emits line items. Lines that
	// fail to parse are dropped at line granularity, never aborting the
	// document.
	ParseLines(lines []string) []entity.ExtractedLineItem
}

// TableParser is implemented by grammars whose vendors emit structured
// tables. The orchestrator tries it before the plain-text parse.
type TableParser interface {
	ParseTable(tbl entity.Table) []entity.ExtractedLineItem
}

// signature is the keyword allow-list used by Identify. Matching is
// case-insensitive substring containment.
type signature []string

func (s signature) matches(text string) bool {
	upper := strings.ToUpper(text)
	for _, kw := range s {
		if strings.Contains(upper, strings.ToUpper(kw)) {
			return true
		}
	}
	return false
}

// cellString trims a table cell that may be empty.
func cellString(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// headerHasColumns reports whether the header row contains every required
// column-name substring (case-insensitive). Table grammars validate the
// header before trusting column positions.
func headerHasColumns(row []string, required ...string) bool {
	joined := strings.ToLower(strings.Join(row, "|"))
	for _, want := range required {
		if !strings.Contains(joined, strings.ToLower(want)) {
			return false
		}
	}
	return true
}

// containsAnyFold reports whether line contains any of the keywords,
// case-insensitively. Used for noise/skip filtering.
func containsAnyFold(line string, keywords []string) bool {
	upper := strings.ToUpper(line)
	for _, kw := range keywords {
		if strings.Contains(upper, strings.ToUpper(kw)) {
			return true
		}
	}
	return false
}
