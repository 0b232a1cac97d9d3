package provider

import (
	"regexp"
	"strings"

	"github.com/bgv-audit/invoice-audit/constants"
	"github.com/bgv-audit/invoice-audit/internal/canon"
	"github.com/bgv-audit/invoice-audit/internal/entity"
)

// Relias bills training and compliance courses as flat rows: completion
// date, learner name, course title and fee, with the learner id trailing
// the course title. The learner id is the candidate id; rows without one
// fall back to the learner name.
type reliasGrammar struct {
	sig           signature
	invoiceNumber []matcher
	grandTotal    []matcher
	rowWithID     *regexp.Regexp
	rowPlain      *regexp.Regexp
}

var reliasSkip = []string{"invoice", "total", "balance", "page", "date learner course"}

func NewRelias() Grammar {
	return &reliasGrammar{
		sig: signature{"Relias", "relias.com", "Relias Learning"},
		invoiceNumber: []matcher{
			newMatcher(`(?i)Invoice\s*[#:]?\s*([A-Z0-9\-]+)`),
		},
		grandTotal: []matcher{
			newMatcher(`(?i)(?:Balance Due|Amount Due|Total)[:\s]*\$?([\d,]+\.\d{2})`),
		},
		// date | learner and course | learner id | $amount
		rowWithID: regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{4})\s+(.+?)\s+([A-Z]{2}\d{5,}|\d{6,})\s+\$?([\d,]+\.\d{2})$`),
		// date | learner and course | $amount
		rowPlain: regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{4})\s+(.+?)\s+\$?([\d,]+\.\d{2})$`),
	}
}

func (g *reliasGrammar) Name() constants.ProviderName { return constants.ProviderRelias }

func (g *reliasGrammar) Identify(text string) bool { return g.sig.matches(text) }

func (g *reliasGrammar) ExtractHeader(text string) Header {
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

// splitLearner separates the learner name (first two words) from the course
// title.
func splitLearner(middle string) (name, course string) {
	words := strings.Fields(middle)
	if len(words) < 3 {
		return strings.Join(words, " "), "Course"
	}
	return words[0] + " " + words[1], strings.Join(words[2:], " ")
}

func (g *reliasGrammar) ParseLines(lines []string) []entity.ExtractedLineItem {
	var items []entity.ExtractedLineItem

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || containsAnyFold(line, reliasSkip) {
			continue
		}

		if m := g.rowWithID.FindStringSubmatch(line); m != nil {
			amount, err := ParseAmount(m[4])
			if err != nil {
				continue
			}
			name, course := splitLearner(m[2])
			items = append(items, entity.ExtractedLineItem{
				ServiceDate:        canon.NormalizeDate(m[1]),
				CandidateID:        m[3],
				CandidateName:      name,
				Amount:             amount,
				ServiceDescription: course,
				Metadata:           map[string]string{"learner_id": m[3]},
			})
			continue
		}

		if m := g.rowPlain.FindStringSubmatch(line); m != nil {
			amount, err := ParseAmount(m[3])
			if err != nil {
				continue
			}
			name, course := splitLearner(m[2])
			id := strings.ReplaceAll(strings.ToUpper(name), " ", "")
			items = append(items, entity.ExtractedLineItem{
				ServiceDate:        canon.NormalizeDate(m[1]),
				CandidateID:        id,
				CandidateName:      name,
				Amount:             amount,
				ServiceDescription: course,
			})
		}
	}
	return items
}
