package provider

import (
	"regexp"
	"strings"

	"github.com/bgv-audit/invoice-audit/constants"
	"github.com/bgv-audit/invoice-audit/internal/canon"
	"github.com/bgv-audit/invoice-audit/internal/entity"
)

// Disa Global bills through structured tables whose column order varies
// between statements. Columns are discovered by header keyword rather than
// position; rows missing a candidate id or a description are dropped.
type disaglobalGrammar struct {
	sig           signature
	invoiceNumber []matcher
	grandTotal    []matcher
}

func NewDisaGlobal() Grammar {
	return &disaglobalGrammar{
		sig: signature{"Disa Global", "disa-global.com"},
		invoiceNumber: []matcher{
			newMatcher(`(?i)Invoice\s*[#:]?\s*([A-Z0-9\-]+)`),
		},
		grandTotal: []matcher{
			newMatcher(`(?i)Grand\s*Total[:\s]*\$?([\d,]+\.?\d*)`),
			newMatcher(`(?i)Total[:\s]*\$?([\d,]+\.?\d*)`),
			newMatcher(`(?i)Amount\s*Due[:\s]*\$?([\d,]+\.?\d*)`),
		},
	}
}

func (g *disaglobalGrammar) Name() constants.ProviderName { return constants.ProviderDisaGlobal }

func (g *disaglobalGrammar) Identify(text string) bool { return g.sig.matches(text) }

func (g *disaglobalGrammar) ExtractHeader(text string) Header {
	h := Header{InvoiceNumber: constants.UnknownInvoiceNumber}
	if num, ok := firstMatch(g.invoiceNumber, text); ok {
		h.InvoiceNumber = num
		h.HasNumber = true
	}
	if total, ok := firstAmount(g.grandTotal, text); ok {
		h.GrandTotal = total
		h.HasTotal = true
	}
	return h
}

// disaColumns maps discovered header cells to field indices. A value of -1
// means the column was not found.
type disaColumns struct {
	name, id, desc, date, amount int
}

func (g *disaglobalGrammar) discoverColumns(header []string) disaColumns {
	cols := disaColumns{name: -1, id: -1, desc: -1, date: -1, amount: -1}
	for idx, cell := range header {
		h := strings.ToLower(strings.TrimSpace(cell))
		switch {
		case strings.Contains(h, "candidate") && strings.Contains(h, "name"):
			cols.name = idx
		case strings.Contains(h, "candidate") && (strings.Contains(h, "id") || strings.Contains(h, "identifier")):
			cols.id = idx
		case strings.Contains(h, "service") || strings.Contains(h, "description"):
			cols.desc = idx
		case strings.Contains(h, "date"):
			cols.date = idx
		case strings.Contains(h, "cost") || strings.Contains(h, "amount") || strings.Contains(h, "price"):
			cols.amount = idx
		}
	}
	return cols
}

func (g *disaglobalGrammar) ParseTable(tbl entity.Table) []entity.ExtractedLineItem {
	if len(tbl) < 2 {
		return nil
	}
	cols := g.discoverColumns(tbl[0])
	if cols.id < 0 || cols.amount < 0 {
		return nil
	}

	var items []entity.ExtractedLineItem
	for _, row := range tbl[1:] {
		id := cellString(row, cols.id)
		desc := cellString(row, cols.desc)
		if id == "" || desc == "" {
			continue
		}
		amount, err := ParseAmount(cellString(row, cols.amount))
		if err != nil {
			continue
		}
		items = append(items, entity.ExtractedLineItem{
			ServiceDate:        canon.NormalizeDate(cellString(row, cols.date)),
			CandidateID:        id,
			CandidateName:      cellString(row, cols.name),
			Amount:             amount,
			ServiceDescription: desc,
		})
	}
	return items
}

var disaTextRow = regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{4})\s+([A-Z0-9\-]+)\s+(.+?)\s+\$?([\d,]+\.\d{2})$`)

// ParseLines is a thin fallback for statements where table detection
// collapses: dated rows with an id, a description and a trailing amount.
func (g *disaglobalGrammar) ParseLines(lines []string) []entity.ExtractedLineItem {
	var items []entity.ExtractedLineItem
	for _, line := range lines {
		m := disaTextRow.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		amount, err := ParseAmount(m[4])
		if err != nil {
			continue
		}
		items = append(items, entity.ExtractedLineItem{
			ServiceDate:        canon.NormalizeDate(m[1]),
			CandidateID:        m[2],
			Amount:             amount,
			ServiceDescription: strings.TrimSpace(m[3]),
		})
	}
	return items
}
