package provider

import (
	"regexp"
	"strings"

	"github.com/bgv-audit/invoice-audit/constants"
	"github.com/bgv-audit/invoice-audit/internal/canon"
	"github.com/bgv-audit/invoice-audit/internal/entity"
)

// FastMed bills through a detail table: [DOS, Invoice (HAR), Patient Name,
// SSN, Clinic, Description of Service, Total]. Column positions drift
// between statements, so the parse anchors relatively: date, reference and
// name from the left edge, amount and description from the right edge, and
// whatever sits between is classified as SSN or clinic by shape. A regex
// fallback covers statements where table detection collapses.
type fastmedGrammar struct {
	sig           signature
	invoiceNumber []matcher
	grandTotal    []matcher
	dateStart     *regexp.Regexp
	amountTail    *regexp.Regexp
}

func NewFastMed() Grammar {
	return &fastmedGrammar{
		sig: signature{"FastMed", "fastmed.com"},
		invoiceNumber: []matcher{
			newMatcher(`Account\s*Number\s*[:.]?\s*(\d+)`),
		},
		grandTotal: []matcher{
			newMatcher(`(?i)(?:Amount\s*Due|AMOUNT\s*YOU\s*OWE)\s*[:]?\s*\$?([\d,]+\.\d{2})`),
		},
		dateStart:  regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}`),
		amountTail: regexp.MustCompile(`\$?([\d,]+\.\d{2})$`),
	}
}

func (g *fastmedGrammar) Name() constants.ProviderName { return constants.ProviderFastMed }

func (g *fastmedGrammar) Identify(text string) bool { return g.sig.matches(text) }

func (g *fastmedGrammar) ExtractHeader(text string) Header {
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

func (g *fastmedGrammar) ParseTable(tbl entity.Table) []entity.ExtractedLineItem {
	if len(tbl) < 2 {
		return nil
	}
	if !headerHasColumns(tbl[0], "dos", "patient name") {
		return nil
	}

	var items []entity.ExtractedLineItem
	for _, row := range tbl[1:] {
		date := cellString(row, 0)
		if !g.dateStart.MatchString(date) {
			continue
		}
		if len(row) < 5 {
			continue
		}
		ref := cellString(row, 1)
		name := cellString(row, 2)
		if name == "" {
			name = "Unknown"
		}
		amount, err := ParseAmount(cellString(row, len(row)-1))
		if err != nil {
			continue
		}
		desc := cellString(row, len(row)-2)

		// The middle cells hold SSN and clinic in either order, and either
		// may be blank or merged away.
		var ssn, clinic string
		for _, cell := range row[3 : len(row)-2] {
			c := strings.TrimSpace(cell)
			if c == "" {
				continue
			}
			if strings.Contains(strings.ToLower(c), "xxx-xx-") {
				ssn = c
			} else {
				clinic = c
			}
		}

		id := ssn
		if id == "" {
			id = name
		}
		items = append(items, entity.ExtractedLineItem{
			ServiceDate:        canon.NormalizeDate(date),
			CandidateID:        id,
			CandidateName:      name,
			Amount:             amount,
			ServiceDescription: desc,
			Metadata: map[string]string{
				"clinic":           clinic,
				"reference_number": ref,
			},
		})
	}
	return items
}

// ParseLines is the fallback when table detection yields nothing: dated
// rows with the amount at the end, name taken positionally.
func (g *fastmedGrammar) ParseLines(lines []string) []entity.ExtractedLineItem {
	var items []entity.ExtractedLineItem

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if !g.dateStart.MatchString(line) {
			continue
		}
		am := g.amountTail.FindStringSubmatchIndex(line)
		if am == nil {
			continue
		}
		amount, err := ParseAmount(line[am[2]:am[3]])
		if err != nil {
			continue
		}
		parts := strings.Fields(strings.TrimSpace(line[:am[0]]))
		if len(parts) == 0 {
			continue
		}
		date := parts[0]
		name := "Unknown"
		desc := ""
		if len(parts) > 3 {
			name = parts[2] + " " + parts[3]
			desc = strings.Join(parts[4:], " ")
		}
		items = append(items, entity.ExtractedLineItem{
			ServiceDate:        canon.NormalizeDate(date),
			CandidateID:        name,
			CandidateName:      name,
			Amount:             amount,
			ServiceDescription: desc,
		})
	}
	return items
}
