package provider

import (
	"regexp"
	"strings"

	"github.com/bgv-audit/invoice-audit/constants"
	"github.com/bgv-audit/invoice-audit/internal/canon"
	"github.com/bgv-audit/invoice-audit/internal/entity"
)

// UNA Health rows are single lines anchored by a masked SSN: date and
// patient name left of "XXX-XX-nnnn", service description and amount to the
// right. The masked SSN is the candidate id.
type unahealthGrammar struct {
	sig           signature
	invoiceNumber []matcher
	grandTotal    []matcher
	row           *regexp.Regexp
}

func NewUNAHealth() Grammar {
	return &unahealthGrammar{
		sig: signature{"UNA Health", "unahealth.com"},
		invoiceNumber: []matcher{
			newMatcher(`(?i)Invoice\s*[#:]?\s*([A-Z0-9\-]+)`),
		},
		grandTotal: []matcher{
			newMatcher(`(?i)(?:Amount Due|Balance Due|Total)[:\s]*\$?([\d,]+\.\d{2})`),
		},
		// date | name | masked ssn | description | amount
		row: regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{4})\s+(.+?)\s+(XXX-XX-\d{4})\s+(.+?)\s+\$?([\d,]+\.\d{2})$`),
	}
}

func (g *unahealthGrammar) Name() constants.ProviderName { return constants.ProviderUNAHealth }

func (g *unahealthGrammar) Identify(text string) bool { return g.sig.matches(text) }

func (g *unahealthGrammar) ExtractHeader(text string) Header {
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

func (g *unahealthGrammar) ParseLines(lines []string) []entity.ExtractedLineItem {
	var items []entity.ExtractedLineItem

	for _, line := range lines {
		m := g.row.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		amount, err := ParseAmount(m[5])
		if err != nil {
			continue
		}
		ssn := strings.ToUpper(m[3])
		items = append(items, entity.ExtractedLineItem{
			ServiceDate:        canon.NormalizeDate(m[1]),
			CandidateID:        ssn,
			CandidateName:      strings.TrimSpace(m[2]),
			Amount:             amount,
			ServiceDescription: strings.TrimSpace(m[4]),
			Metadata:           map[string]string{"source_ssn": ssn},
		})
	}
	return items
}
