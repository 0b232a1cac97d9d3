package provider

import (
	"regexp"
	"strings"

	"github.com/bgv-audit/invoice-audit/constants"
	"github.com/bgv-audit/invoice-audit/internal/canon"
	"github.com/bgv-audit/invoice-audit/internal/entity"
)

// HealthStreet invoices are flat: every data line is
// "M/D/YYYY <name> <service description> <amount>" with no candidate
// grouping. There is no SSN or file number anywhere, so the candidate id is
// derived from the name (uppercased, spaces removed) and stands in for the
// name as well.
type healthstreetGrammar struct {
	sig           signature
	invoiceNumber []matcher
	grandTotal    []matcher
	dataLine      *regexp.Regexp
}

// healthstreetSkip drops header and footer lines from the item scan.
var healthstreetSkip = []string{
	"invoice", "total", "balance", "payment", "due date", "page",
	"date name service", "cynet",
}

func NewHealthStreet() Grammar {
	return &healthstreetGrammar{
		sig: signature{"Health Street", "HealthStreet", "healthstreet.com"},
		invoiceNumber: []matcher{
			newMatcher(`(?i)Invoice\s*#\s*([A-Z0-9\-]+)`),
		},
		grandTotal: []matcher{
			newMatcher(`(?i)(?:Total Invoice|Balance Due)\s*\$?([\d,]+\.?\d*)`),
		},
		// date | name and service | amount (no dollar sign on these)
		dataLine: regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{4})\s+(.+?)\s+(\d+\.?\d*)$`),
	}
}

func (g *healthstreetGrammar) Name() constants.ProviderName { return constants.ProviderHealthStreet }

func (g *healthstreetGrammar) Identify(text string) bool { return g.sig.matches(text) }

func (g *healthstreetGrammar) ExtractHeader(text string) Header {
	h := Header{InvoiceNumber: constants.UnknownInvoiceNumber}
	if num, ok := firstMatch(g.invoiceNumber, text); ok {
		h.InvoiceNumber = num
		h.HasNumber = true
	}
	// Multi-page statements repeat the running total; the last occurrence is
	// the invoice total.
	for _, m := range g.grandTotal {
		if all := m.re.FindAllStringSubmatch(text, -1); all != nil {
			if v, err := ParseAmount(all[len(all)-1][m.group]); err == nil {
				h.GrandTotal = v
				h.HasTotal = true
				break
			}
		}
	}
	return h
}

func (g *healthstreetGrammar) ParseLines(lines []string) []entity.ExtractedLineItem {
	var items []entity.ExtractedLineItem

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || containsAnyFold(line, healthstreetSkip) {
			continue
		}
		m := g.dataLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		amount, err := ParseAmount(m[3])
		if err != nil {
			continue
		}

		// The first two words are the candidate's name; the rest is the
		// service. Single-word middles are a name with no service text.
		words := strings.Fields(m[2])
		var name, desc string
		switch {
		case len(words) >= 3:
			name = words[0] + " " + words[1]
			desc = strings.Join(words[2:], " ")
		case len(words) == 2:
			name = words[0] + " " + words[1]
			desc = "Service"
		case len(words) == 1:
			name = words[0]
			desc = "Service"
		default:
			name = "Unknown"
			desc = "Service"
		}

		id := strings.ReplaceAll(strings.ToUpper(name), " ", "")
		items = append(items, entity.ExtractedLineItem{
			ServiceDate:        canon.NormalizeDate(m[1]),
			CandidateID:        id,
			CandidateName:      id,
			Amount:             amount,
			ServiceDescription: canon.NormalizeDescription(desc),
			Metadata:           map[string]string{},
		})
	}
	return items
}
