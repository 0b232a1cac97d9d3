package provider

import (
	"regexp"
	"strings"

	"github.com/bgv-audit/invoice-audit/constants"
	"github.com/bgv-audit/invoice-audit/internal/canon"
	"github.com/bgv-audit/invoice-audit/internal/entity"
)

// eScreen rows are single lines: date, a middle chunk holding the service
// description and the donor name, the last four of the SSN, the chain of
// custody id and finally the amount. The donor name sits at the end of the
// middle chunk in "Last, First" form; when the SSN digits are "0000" the
// chain id stands in as candidate id.
type escreenGrammar struct {
	sig           signature
	invoiceNumber []matcher
	grandTotal    []matcher
	row           *regexp.Regexp
	nameTail      *regexp.Regexp
	columnGap     *regexp.Regexp
	flatRates     []float64
}

func NewEScreen() Grammar {
	return &escreenGrammar{
		sig: signature{"eScreen", "escreen.com"},
		invoiceNumber: []matcher{
			newMatcher(`Invoice Number:\s*(\d+)`),
		},
		grandTotal: []matcher{
			newMatcher(`TOTAL\s*:\s*\$([\d,]+\.\d{2})`),
		},
		// date | middle chunk | ssn4 | chain id | ... | $amount
		row:      regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{4})\s+(.+?)\s+(\d{4})\s+(\d+)\s+.*?\$([\d,]+\.\d{2})$`),
		nameTail: regexp.MustCompile(`([A-Za-z\-']+,\s*[A-Za-z\-']+(?: [A-Za-z\-']+)?)$`),
		columnGap: regexp.MustCompile(`\s{2,}`),
		// eScreen bills fixed panel fees; amounts that land on a rate only
		// after undoing a leading-5 confusion snap onto the schedule.
		flatRates: []float64{35.00, 45.00, 55.00, 65.00, 85.00},
	}
}

func (g *escreenGrammar) Name() constants.ProviderName { return constants.ProviderEScreen }

func (g *escreenGrammar) Identify(text string) bool { return g.sig.matches(text) }

func (g *escreenGrammar) ExtractHeader(text string) Header {
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

// splitMiddle separates the description from the donor name inside the
// middle chunk, falling back from the strict "Last, First" tail match to
// column-gap splitting, then to comma presence.
func (g *escreenGrammar) splitMiddle(middle string) (name, desc string) {
	if m := g.nameTail.FindStringSubmatchIndex(middle); m != nil {
		return strings.TrimSpace(middle[m[2]:m[3]]), strings.TrimSpace(middle[:m[0]])
	}
	if parts := g.columnGap.Split(middle, -1); len(parts) >= 2 {
		return parts[len(parts)-1], strings.Join(parts[:len(parts)-1], " ")
	}
	if strings.Contains(middle, ",") {
		return middle, "Unknown Service"
	}
	return "Unknown", middle
}

func (g *escreenGrammar) ParseLines(lines []string) []entity.ExtractedLineItem {
	var items []entity.ExtractedLineItem

	for _, line := range lines {
		line = strings.TrimSpace(line)
		m := g.row.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		amount, err := ParseAmount(m[5])
		if err != nil {
			continue
		}
		amount = SnapToRates(amount, g.flatRates)
		ssn, chainID := m[3], m[4]
		name, desc := g.splitMiddle(strings.TrimSpace(m[2]))
		desc = strings.TrimRight(desc, " -")

		id := ssn
		if ssn == "0000" {
			id = chainID
		}
		items = append(items, entity.ExtractedLineItem{
			ServiceDate:        canon.NormalizeDate(m[1]),
			CandidateID:        id,
			CandidateName:      name,
			Amount:             amount,
			ServiceDescription: desc,
			Metadata: map[string]string{
				"chain_of_custody": chainID,
				"ssn_last_4":       ssn,
			},
		})
	}
	return items
}
