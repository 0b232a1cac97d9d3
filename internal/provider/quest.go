package provider

import (
	"regexp"
	"strings"

	"github.com/bgv-audit/invoice-audit/constants"
	"github.com/bgv-audit/invoice-audit/internal/canon"
	"github.com/bgv-audit/invoice-audit/internal/entity"
)

// Quest Diagnostics invoices group service lines under a candidate line.
// The candidate line starts with a date and carries the specimen id, the
// patient id and the patient name; the service lines that follow carry a
// 7-digit service code and a dollar amount.
type questGrammar struct {
	sig           signature
	invoiceNumber []matcher
	grandTotal    []matcher
	candidateLine *regexp.Regexp
	serviceLine   *regexp.Regexp
}

func NewQuest() Grammar {
	return &questGrammar{
		sig: signature{"QUEST DIAGNOSTICS", "QUESTDIAGNOSTICS.COM"},
		invoiceNumber: []matcher{
			// "<client> NDA <invoice> <date>" header row.
			newMatcher(`\d+\s+NDA\s+(\d+)\s+\d{2}/\d{2}/\d{4}`),
			newMatcher(`Invoice\s*(?:Number|#)\s*[:]?\s*(\d+)`),
		},
		grandTotal: []matcher{
			newMatcher(`Amount Due:[\s\S]*?\$([\d,]+\.\d{2})`),
		},
		// date | specimen id | patient id | name
		candidateLine: regexp.MustCompile(`^(\d{2}/\d{2}/\d{4})\s+(\d+)\s+([A-Z0-9]+)\s+(.*)`),
		// description | 7-digit code | $amount, anchored at end of line
		serviceLine: regexp.MustCompile(`(.+?)\s+(\d{7})\s+\$([\d,]+\.\d{2})$`),
	}
}

func (g *questGrammar) Name() constants.ProviderName { return constants.ProviderQuest }

func (g *questGrammar) Identify(text string) bool { return g.sig.matches(text) }

func (g *questGrammar) ExtractHeader(text string) Header {
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

func (g *questGrammar) ParseLines(lines []string) []entity.ExtractedLineItem {
	var items []entity.ExtractedLineItem
	var st scanState

	for _, line := range lines {
		line = strings.TrimSpace(line)

		if m := g.candidateLine.FindStringSubmatch(line); m != nil {
			st.open(candidateContext{
				date: canon.NormalizeDate(m[1]),
				id:   m[3],
				name: strings.TrimSpace(m[4]),
			})
			// The header row itself carries no amount; the service lines
			// below inherit this context.
		}

		// PATIENT TOTAL is a per-candidate sub-sum, not a service.
		if strings.Contains(line, "PATIENT TOTAL") {
			continue
		}

		m := g.serviceLine.FindStringSubmatch(line)
		if m == nil || st.phase != hasContext {
			continue
		}
		desc := strings.TrimSpace(m[1])
		// Tight layouts run the candidate name into the service description.
		if st.ctx.name != "" && strings.HasPrefix(desc, st.ctx.name) {
			desc = strings.TrimSpace(strings.TrimPrefix(desc, st.ctx.name))
		}
		if desc == "" {
			continue
		}
		amount, err := ParseAmount(m[3])
		if err != nil {
			continue
		}
		items = append(items, entity.ExtractedLineItem{
			ServiceDate:        st.ctx.date,
			CandidateID:        st.ctx.id,
			CandidateName:      st.ctx.name,
			Amount:             amount,
			ServiceDescription: desc,
			Metadata:           map[string]string{"service_code": m[2]},
		})
	}
	return items
}
