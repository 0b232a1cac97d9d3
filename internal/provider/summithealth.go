package provider

import (
	"regexp"
	"strings"

	"github.com/bgv-audit/invoice-audit/constants"
	"github.com/bgv-audit/invoice-audit/internal/canon"
	"github.com/bgv-audit/invoice-audit/internal/entity"
)

// Summit Health statements carry a visit table: [Date of Service, Patient,
// Patient ID, Description, Amount]. Rows without a patient id fall back to
// the patient name as candidate id.
type summithealthGrammar struct {
	sig           signature
	invoiceNumber []matcher
	grandTotal    []matcher
	textRow       *regexp.Regexp
}

func NewSummitHealth() Grammar {
	return &summithealthGrammar{
		sig: signature{"Summit Health", "summithealth.com"},
		invoiceNumber: []matcher{
			newMatcher(`(?i)Invoice\s*[#:]?\s*([A-Z0-9\-]+)`),
		},
		grandTotal: []matcher{
			newMatcher(`(?i)Total[:\s]*\$?([\d,]+\.?\d*)`),
		},
		textRow: regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{4})\s+(.+?)\s+\$([\d,]+\.\d{2})$`),
	}
}

func (g *summithealthGrammar) Name() constants.ProviderName { return constants.ProviderSummitHealth }

func (g *summithealthGrammar) Identify(text string) bool { return g.sig.matches(text) }

func (g *summithealthGrammar) ExtractHeader(text string) Header {
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

func (g *summithealthGrammar) ParseTable(tbl entity.Table) []entity.ExtractedLineItem {
	if len(tbl) < 2 {
		return nil
	}
	if !headerHasColumns(tbl[0], "date", "patient") {
		return nil
	}

	var items []entity.ExtractedLineItem
	for _, row := range tbl[1:] {
		if len(row) < 4 {
			continue
		}
		date := cellString(row, 0)
		name := cellString(row, 1)
		if name == "" {
			continue
		}
		amount, err := ParseAmount(cellString(row, len(row)-1))
		if err != nil {
			continue
		}
		desc := cellString(row, len(row)-2)
		id := ""
		if len(row) >= 5 {
			id = cellString(row, 2)
		}
		if id == "" {
			id = name
		}
		items = append(items, entity.ExtractedLineItem{
			ServiceDate:        canon.NormalizeDate(date),
			CandidateID:        id,
			CandidateName:      name,
			Amount:             amount,
			ServiceDescription: desc,
		})
	}
	return items
}

// ParseLines handles statements where the visit table prints as plain rows:
// "date patient description $amount", patient being the first two words.
func (g *summithealthGrammar) ParseLines(lines []string) []entity.ExtractedLineItem {
	var items []entity.ExtractedLineItem
	for _, line := range lines {
		m := g.textRow.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		amount, err := ParseAmount(m[3])
		if err != nil {
			continue
		}
		words := strings.Fields(m[2])
		if len(words) < 3 {
			continue
		}
		name := words[0] + " " + words[1]
		items = append(items, entity.ExtractedLineItem{
			ServiceDate:        canon.NormalizeDate(m[1]),
			CandidateID:        name,
			CandidateName:      name,
			Amount:             amount,
			ServiceDescription: strings.Join(words[2:], " "),
		})
	}
	return items
}
