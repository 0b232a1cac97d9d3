package provider

import (
	"regexp"
	"strings"

	"github.com/bgv-audit/invoice-audit/constants"
	"github.com/bgv-audit/invoice-audit/internal/canon"
	"github.com/bgv-audit/invoice-audit/internal/entity"
)

// CityMD invoices group service lines under a patient header line of the
// form "Patient: <name> Patient ID: <id>". Service lines start with a date
// and end with the billed amount.
type citymdGrammar struct {
	sig           signature
	invoiceNumber []matcher
	grandTotal    []matcher
	patientLine   *regexp.Regexp
	dateStart     *regexp.Regexp
	serviceLine   *regexp.Regexp
}

func NewCityMD() Grammar {
	return &citymdGrammar{
		sig: signature{"CityMD", "citymd.com", "City MD"},
		invoiceNumber: []matcher{
			newMatcher(`(?:ID #|Invoice ID)\s*[:]?\s*([A-Z0-9]+)`),
		},
		grandTotal: []matcher{
			newMatcher(`(?:Payment|Amount) Due\s*\$([\d,]+\.\d{2})`),
		},
		patientLine: regexp.MustCompile(`Patient:\s*(.+?)\s+Patient ID:\s*(\d+)`),
		dateStart:   regexp.MustCompile(`^\d{2}/\d{2}/\d{4}`),
		// date | procedure code (commas allowed) | description | $amount
		serviceLine: regexp.MustCompile(`^(\d{2}/\d{2}/\d{4})\s+([A-Z0-9,]+)\s+(.+?)\s+\$([\d,]+\.\d{2})$`),
	}
}

func (g *citymdGrammar) Name() constants.ProviderName { return constants.ProviderCityMD }

func (g *citymdGrammar) Identify(text string) bool { return g.sig.matches(text) }

func (g *citymdGrammar) ExtractHeader(text string) Header {
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

func (g *citymdGrammar) ParseLines(lines []string) []entity.ExtractedLineItem {
	var items []entity.ExtractedLineItem
	var st scanState

	for _, line := range lines {
		line = strings.TrimSpace(line)

		if m := g.patientLine.FindStringSubmatch(line); m != nil {
			st.open(candidateContext{
				name: strings.TrimSpace(m[1]),
				id:   strings.TrimSpace(m[2]),
			})
			continue
		}
		if st.phase != hasContext {
			continue
		}
		// Headers and subtotal rows never start with a date.
		if !g.dateStart.MatchString(line) {
			continue
		}
		m := g.serviceLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		amount, err := ParseAmount(m[4])
		if err != nil {
			continue
		}
		items = append(items, entity.ExtractedLineItem{
			ServiceDate:        canon.NormalizeDate(m[1]),
			CandidateID:        st.ctx.id,
			CandidateName:      st.ctx.name,
			Amount:             amount,
			ServiceDescription: strings.TrimSpace(m[3]),
			Metadata:           map[string]string{"procedure_code": m[2]},
		})
	}
	return items
}
