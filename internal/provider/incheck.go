package provider

import (
	"regexp"
	"strings"

	"github.com/bgv-audit/invoice-audit/constants"
	"github.com/bgv-audit/invoice-audit/internal/canon"
	"github.com/bgv-audit/invoice-audit/internal/entity"
)

// InCheck invoices open a candidate block with a dated header that carries
// the masked SSN "XXX-XXX-XXXX" and ends with the file number. The name can
// spill across lines before the SSN shows up, so the scan buffers header
// fragments until it sees the mask. Item lines under the block are
// "description ... $amount".
type incheckGrammar struct {
	sig           signature
	invoiceNumber []matcher
	grandTotal    []matcher
	dateStart     *regexp.Regexp
	fileNumber    *regexp.Regexp
	itemLine      *regexp.Regexp
}

const incheckSSNMask = "XXX-XXX-XXXX"

func NewInCheck() Grammar {
	return &incheckGrammar{
		sig: signature{"InCheck", "inchecksolutions.com", "7500 W STATE STREET"},
		invoiceNumber: []matcher{
			newMatcher(`Invoice\s*#\s*(\d+)`),
		},
		grandTotal: []matcher{
			newMatcher(`Total Amount Due:\s*\$([\d,]+\.\d{2})`),
		},
		dateStart:  regexp.MustCompile(`^(\d{2}/\d{2}/\d{4})\s+(.*)`),
		fileNumber: regexp.MustCompile(`(\d+)$`),
		itemLine:   regexp.MustCompile(`^(.+?)\s+\$([\d,]+\.\d{2})$`),
	}
}

func (g *incheckGrammar) Name() constants.ProviderName { return constants.ProviderInCheck }

func (g *incheckGrammar) Identify(text string) bool { return g.sig.matches(text) }

func (g *incheckGrammar) ExtractHeader(text string) Header {
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

func (g *incheckGrammar) ParseLines(lines []string) []entity.ExtractedLineItem {
	var items []entity.ExtractedLineItem
	var st scanState
	var headerDate, fileNumber string

	// closeHeader finishes the candidate header from the buffered fragments
	// plus the text left of the SSN mask; the text right of the mask ends
	// with the file number, which doubles as the candidate id.
	closeHeader := func(left, right string) {
		name := strings.TrimSpace(strings.Join(append(st.buffer, left), " "))
		fileNumber = constants.UnknownInvoiceNumber
		if m := g.fileNumber.FindStringSubmatch(strings.TrimSpace(right)); m != nil {
			fileNumber = m[1]
		}
		id := fileNumber
		if id == constants.UnknownInvoiceNumber && name != "" {
			id = name
		}
		st.open(candidateContext{date: canon.NormalizeDate(headerDate), id: id, name: name})
	}

	emit := func(line string) {
		if strings.HasPrefix(line, "Subtotal for") {
			return
		}
		m := g.itemLine.FindStringSubmatch(line)
		if m == nil {
			return
		}
		desc := strings.TrimSpace(m[1])
		if strings.Contains(desc, "REPORT CHARGES") || strings.Contains(desc, "Total Amount Due") {
			return
		}
		amount, err := ParseAmount(m[2])
		if err != nil {
			return
		}
		items = append(items, entity.ExtractedLineItem{
			ServiceDate:        st.ctx.date,
			CandidateID:        st.ctx.id,
			CandidateName:      st.ctx.name,
			Amount:             amount,
			ServiceDescription: desc,
			Metadata:           map[string]string{"file_number": fileNumber},
		})
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := g.dateStart.FindStringSubmatch(line); m != nil {
			headerDate = m[1]
			rest := m[2]
			if left, right, found := strings.Cut(rest, incheckSSNMask); found {
				st.buffer = nil
				closeHeader(left, right)
			} else {
				// Name continues on following lines until the SSN mask.
				st.buffer = nil
				st.capture(rest)
			}
			continue
		}

		if st.phase == capturingHeader {
			if left, right, found := strings.Cut(line, incheckSSNMask); found {
				closeHeader(left, right)
				continue
			}
			if strings.Contains(line, "$") {
				// The SSN line never came; this is already a priced line.
				// Close the header with what the buffer holds and treat the
				// line as an item under that candidate.
				closeHeader("", "")
				emit(line)
				continue
			}
			st.capture(line)
			continue
		}

		if st.phase == hasContext {
			emit(line)
		}
	}
	return items
}
