package provider

import (
	"regexp"
	"strings"

	"github.com/bgv-audit/invoice-audit/constants"
	"github.com/bgv-audit/invoice-audit/internal/canon"
	"github.com/bgv-audit/invoice-audit/internal/entity"
)

// Universal invoices are hierarchical: an order header of the form
// "<date> <name> - (Order # <id>)" followed by the order's item lines, then
// a subtotal. The order number is unique per request and serves as
// candidate id. These statements often lack the vendor name in searchable
// text, so identification keys off the distinctive column headers.
type universalGrammar struct {
	sig           []string
	invoiceNumber []matcher
	orderHeader   *regexp.Regexp
	invoiceTotal  *regexp.Regexp
	itemLine      *regexp.Regexp
}

func NewUniversal() Grammar {
	return &universalGrammar{
		sig: []string{"Candidate name - order number", "Item Total"},
		invoiceNumber: []matcher{
			newMatcher(`(?i)Invoice\s*#?\s*[:.]?\s*([A-Z0-9\-]+)`),
		},
		orderHeader:  regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{4})\s+(.+?)\s+-\s+\(Order\s+#\s+(\d+)\)`),
		invoiceTotal: regexp.MustCompile(`Invoice Total\s+\$([\d,]+\.\d{2})`),
		itemLine:     regexp.MustCompile(`^(.+?)\s+\$([\d,]+\.\d{2})$`),
	}
}

func (g *universalGrammar) Name() constants.ProviderName { return constants.ProviderUniversal }

// Identify requires both column headers; either alone shows up on other
// vendors' statements.
func (g *universalGrammar) Identify(text string) bool {
	for _, kw := range g.sig {
		if !strings.Contains(text, kw) {
			return false
		}
	}
	return true
}

func (g *universalGrammar) ExtractHeader(text string) Header {
	h := Header{InvoiceNumber: constants.UnknownInvoiceNumber}
	if num, ok := firstMatch(g.invoiceNumber, text); ok {
		h.InvoiceNumber = num
		h.HasNumber = true
	}
	if m := g.invoiceTotal.FindStringSubmatch(text); m != nil {
		if v, err := ParseAmount(m[1]); err == nil {
			h.GrandTotal = v
			h.HasTotal = true
		}
	}
	return h
}

func (g *universalGrammar) ParseLines(lines []string) []entity.ExtractedLineItem {
	var items []entity.ExtractedLineItem
	var st scanState

	for _, line := range lines {
		line = strings.TrimSpace(line)

		if m := g.orderHeader.FindStringSubmatch(line); m != nil {
			st.open(candidateContext{
				date: canon.NormalizeDate(m[1]),
				name: strings.TrimSpace(m[2]),
				id:   m[3],
			})
			continue
		}
		if g.invoiceTotal.MatchString(line) {
			continue
		}
		if strings.HasPrefix(line, "Subtotal for Order") {
			continue
		}
		if strings.Contains(line, "Candidate name - order number") {
			continue
		}
		if st.phase != hasContext {
			continue
		}

		m := g.itemLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		desc := strings.TrimSpace(m[1])
		if strings.EqualFold(desc, "item total") {
			continue
		}
		amount, err := ParseAmount(m[2])
		if err != nil {
			continue
		}
		items = append(items, entity.ExtractedLineItem{
			ServiceDate:        st.ctx.date,
			CandidateID:        st.ctx.id,
			CandidateName:      st.ctx.name,
			Amount:             amount,
			ServiceDescription: desc,
			Metadata:           map[string]string{"order_number": st.ctx.id},
		})
	}
	return items
}
