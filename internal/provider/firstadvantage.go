package provider

import (
	"regexp"
	"strings"

	"github.com/bgv-audit/invoice-audit/constants"
	"github.com/bgv-audit/invoice-audit/internal/canon"
	"github.com/bgv-audit/invoice-audit/internal/entity"
)

// First Advantage statements carry a search detail table: [Order Date,
// Order Number, Subject Name, Product Description, Price]. The order number
// is unique per search and serves as candidate id. Text rows follow the
// same field order when table detection fails.
type firstadvantageGrammar struct {
	sig           signature
	invoiceNumber []matcher
	grandTotal    []matcher
	textRow       *regexp.Regexp
}

func NewFirstAdvantage() Grammar {
	return &firstadvantageGrammar{
		sig: signature{"First Advantage", "firstadvantage.com"},
		invoiceNumber: []matcher{
			newMatcher(`(?i)Invoice\s*[#:]?\s*([A-Z0-9\-]+)`),
		},
		grandTotal: []matcher{
			newMatcher(`(?i)Grand\s*Total[:\s]*\$?([\d,]+\.?\d*)`),
			newMatcher(`(?i)Total[:\s]*\$?([\d,]+\.?\d*)`),
		},
		// date | order number | subject and product | $amount
		textRow: regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{4})\s+([A-Z0-9\-]{6,})\s+(.+?)\s+\$?([\d,]+\.\d{2})$`),
	}
}

func (g *firstadvantageGrammar) Name() constants.ProviderName {
	return constants.ProviderFirstAdvantage
}

func (g *firstadvantageGrammar) Identify(text string) bool { return g.sig.matches(text) }

func (g *firstadvantageGrammar) ExtractHeader(text string) Header {
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

func (g *firstadvantageGrammar) ParseTable(tbl entity.Table) []entity.ExtractedLineItem {
	if len(tbl) < 2 {
		return nil
	}
	if !headerHasColumns(tbl[0], "order", "subject") {
		return nil
	}

	var items []entity.ExtractedLineItem
	for _, row := range tbl[1:] {
		if len(row) < 5 {
			continue
		}
		date := cellString(row, 0)
		order := cellString(row, 1)
		name := cellString(row, 2)
		desc := cellString(row, 3)
		if order == "" || desc == "" {
			continue
		}
		amount, err := ParseAmount(cellString(row, len(row)-1))
		if err != nil {
			continue
		}
		items = append(items, entity.ExtractedLineItem{
			ServiceDate:        canon.NormalizeDate(date),
			CandidateID:        order,
			CandidateName:      name,
			Amount:             amount,
			ServiceDescription: desc,
			Metadata:           map[string]string{"order_number": order},
		})
	}
	return items
}

func (g *firstadvantageGrammar) ParseLines(lines []string) []entity.ExtractedLineItem {
	var items []entity.ExtractedLineItem
	for _, line := range lines {
		m := g.textRow.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		amount, err := ParseAmount(m[4])
		if err != nil {
			continue
		}
		// The middle chunk runs subject name into product description; the
		// leading two words are the name on these layouts.
		middle := strings.Fields(m[3])
		var name, desc string
		if len(middle) > 2 {
			name = middle[0] + " " + middle[1]
			desc = strings.Join(middle[2:], " ")
		} else {
			desc = strings.Join(middle, " ")
		}
		if desc == "" {
			continue
		}
		items = append(items, entity.ExtractedLineItem{
			ServiceDate:        canon.NormalizeDate(m[1]),
			CandidateID:        m[2],
			CandidateName:      name,
			Amount:             amount,
			ServiceDescription: desc,
			Metadata:           map[string]string{"order_number": m[2]},
		})
	}
	return items
}
