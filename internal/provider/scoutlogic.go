package provider

import (
	"regexp"
	"strings"

	"github.com/bgv-audit/invoice-audit/constants"
	"github.com/bgv-audit/invoice-audit/internal/canon"
	"github.com/bgv-audit/invoice-audit/internal/entity"
)

// Scout Logic invoices anchor each candidate block on a masked SSN of the
// form "XXX-XX-nnnn". The block's date sits at the start of the anchor line,
// or on the line above when the candidate name wraps. The file number after
// the mask serves as both candidate id and candidate name; the printed name
// is not trusted on these layouts.
type scoutlogicGrammar struct {
	sig           signature
	invoiceNumber []matcher
	grandTotal    []matcher
	dateStart     *regexp.Regexp
	ssnMask       *regexp.Regexp
	fileNumber    *regexp.Regexp
	itemLine      *regexp.Regexp
}

// scoutlogicSkip filters header, subtotal and summary rows out of the item
// scan. Matched case-insensitively against the whole line.
var scoutlogicSkip = []string{
	"DATE NAME SSN", "Subtotal for", "REPORT CHARGES",
	"Total Amount Due", "Total Amount", "Amount Due",
	"Invoice Total", "Grand Total", "TOTAL", "Total:",
	"Summary", "Subtotal:", "Sub-total",
}

var scoutlogicSkipDesc = []string{"TOTAL", "AMOUNT DUE", "SUMMARY"}

func NewScoutLogic() Grammar {
	return &scoutlogicGrammar{
		sig: signature{"ScoutLogic", "scoutlogicscreening.com"},
		invoiceNumber: []matcher{
			newMatcher(`Invoice\s+#(\d+)`),
		},
		grandTotal: []matcher{
			newMatcher(`Total Amount Due:\s*\$([\d,]+\.\d{2})`),
		},
		dateStart:  regexp.MustCompile(`^(\d{2}/\d{2}/\d{4})\s+(.*)`),
		ssnMask:    regexp.MustCompile(`XXX-XX-\d{4}`),
		fileNumber: regexp.MustCompile(`(\d+)\s*-?$`),
		itemLine:   regexp.MustCompile(`^(.+?)\s+(-?\$?[\d,]+\.\d{2})$`),
	}
}

func (g *scoutlogicGrammar) Name() constants.ProviderName { return constants.ProviderScoutLogic }

func (g *scoutlogicGrammar) Identify(text string) bool { return g.sig.matches(text) }

func (g *scoutlogicGrammar) ExtractHeader(text string) Header {
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

// fileNumberAfterMask pulls the file number out of the text following the
// SSN mask. Trailing hyphens come from wrapped order references.
func (g *scoutlogicGrammar) fileNumberAfterMask(line string) string {
	parts := g.ssnMask.Split(line, 2)
	if len(parts) < 2 {
		return constants.UnknownInvoiceNumber
	}
	if m := g.fileNumber.FindStringSubmatch(strings.TrimSpace(parts[1])); m != nil {
		return m[1]
	}
	return constants.UnknownInvoiceNumber
}

func (g *scoutlogicGrammar) ParseLines(lines []string) []entity.ExtractedLineItem {
	var items []entity.ExtractedLineItem
	var st scanState

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := g.dateStart.FindStringSubmatch(line); m != nil {
			// A new dated row always invalidates the previous block.
			st.reset()
			date, rest := m[1], m[2]
			if g.ssnMask.MatchString(rest) {
				file := g.fileNumberAfterMask(rest)
				st.open(candidateContext{date: canon.NormalizeDate(date), id: file, name: file})
			} else {
				// Name wraps; the SSN arrives on a following line.
				st.pendingDate = date
				st.capture(rest)
			}
			continue
		}

		if st.pendingDate != "" && g.ssnMask.MatchString(line) {
			file := g.fileNumberAfterMask(line)
			date := st.pendingDate
			st.reset()
			st.open(candidateContext{date: canon.NormalizeDate(date), id: file, name: file})
			continue
		}

		if st.phase != hasContext {
			continue
		}
		if containsAnyFold(line, scoutlogicSkip) {
			continue
		}
		m := g.itemLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		amount, err := ParseAmount(m[2])
		if err != nil {
			continue
		}
		desc := strings.TrimSpace(m[1])
		if containsAnyFold(desc, scoutlogicSkipDesc) {
			continue
		}
		// The first few words are stable across re-extraction; the tail of
		// these descriptions carries wrapped order references.
		if words := strings.Fields(desc); len(words) > canon.DescriptionTokenLimit {
			desc = strings.Join(words[:canon.DescriptionTokenLimit], " ")
		}
		if desc == "" {
			continue
		}
		items = append(items, entity.ExtractedLineItem{
			ServiceDate:        st.ctx.date,
			CandidateID:        st.ctx.id,
			CandidateName:      st.ctx.name,
			Amount:             amount,
			ServiceDescription: desc,
			Metadata:           map[string]string{"file_number": st.ctx.id},
		})
	}
	return items
}
