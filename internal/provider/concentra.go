package provider

import (
	"regexp"
	"strings"

	"github.com/bgv-audit/invoice-audit/constants"
	"github.com/bgv-audit/invoice-audit/internal/canon"
	"github.com/bgv-audit/invoice-audit/internal/entity"
)

// Concentra rows carry everything on one line anchored by a masked SSN:
// date and name to the left of "XXX-XX-nnnn", description and amount to the
// right. Descriptions sometimes wrap onto the next one or two lines, so the
// scan merges short lookahead before hunting for the amount. The masked SSN
// doubles as candidate id and name.
type concentraGrammar struct {
	sig           signature
	invoiceNumber []matcher
	grandTotal    []matcher
	ssn           *regexp.Regexp
	dateStart     *regexp.Regexp
	amountTail    []*regexp.Regexp
	amountAny     *regexp.Regexp
	wordStart     *regexp.Regexp
}

func NewConcentra() Grammar {
	return &concentraGrammar{
		sig: signature{"Concentra", "Occupational Health Centers"},
		invoiceNumber: []matcher{
			newMatcher(`(?i)Invoice(?:\s*Number)?\s*[:#]?\s*(\d+)`),
		},
		grandTotal: []matcher{
			// OCR renders the "$" before the balance as "5" or "S".
			newMatcher(`(?i)Balance(?: Due)?\s*[:]?\s*[5S]?\s*([\d,]+\.\d{2})`),
		},
		ssn:       regexp.MustCompile(`(?i)XXX-XX-\d{4}|XXX[-\s]XX[-\s]\d{4}`),
		dateStart: regexp.MustCompile(`^\s*(\d{1,2}/\d{1,2}/\d{4})`),
		amountTail: []*regexp.Regexp{
			regexp.MustCompile(`\$([\d,]+\.\d{2})\s*$`),
			regexp.MustCompile(`([\d,]+\.\d{2})\s*$`),
		},
		amountAny: regexp.MustCompile(`\$?([\d,]+\.\d{2})`),
		wordStart: regexp.MustCompile(`^[A-Za-z]`),
	}
}

func (g *concentraGrammar) Name() constants.ProviderName { return constants.ProviderConcentra }

func (g *concentraGrammar) Identify(text string) bool { return g.sig.matches(text) }

func (g *concentraGrammar) ExtractHeader(text string) Header {
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

// tailAmount finds the billed amount at (or near) the end of the post-SSN
// text, returning the amount and the description that precedes it.
func (g *concentraGrammar) tailAmount(post string) (amount float64, desc string, ok bool) {
	for _, re := range g.amountTail {
		if loc := re.FindStringSubmatchIndex(post); loc != nil {
			v, err := ParseAmount(post[loc[2]:loc[3]])
			if err != nil {
				continue
			}
			return v, strings.TrimSpace(post[:loc[0]]), true
		}
	}
	// Degraded layouts push trailing whitespace or artifacts after the
	// amount; take the last amount in the final stretch of the line.
	tail := post
	if len(tail) > 30 {
		tail = tail[len(tail)-30:]
	}
	locs := g.amountAny.FindAllStringSubmatchIndex(tail, -1)
	if locs == nil {
		return 0, "", false
	}
	last := locs[len(locs)-1]
	v, err := ParseAmount(tail[last[2]:last[3]])
	if err != nil {
		return 0, "", false
	}
	cut := len(post) - len(tail) + last[0]
	return v, strings.TrimSpace(post[:cut]), true
}

func (g *concentraGrammar) ParseLines(lines []string) []entity.ExtractedLineItem {
	var items []entity.ExtractedLineItem

	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			i++
			continue
		}

		loc := g.ssn.FindStringIndex(line)
		if loc == nil {
			i++
			continue
		}
		pre, post := line[:loc[0]], line[loc[1]:]
		ssn := strings.ToUpper(strings.ReplaceAll(line[loc[0]:loc[1]], " ", "-"))

		dm := g.dateStart.FindStringSubmatch(pre)
		if dm == nil {
			i++
			continue
		}
		date := canon.NormalizeDate(dm[1])

		// Merge up to two continuation lines of a wrapped description. The
		// next item always starts with a date or contains an SSN mask.
		next := i + 1
		merged := post
		for next < len(lines) && next < i+3 {
			cont := strings.TrimSpace(lines[next])
			if cont == "" {
				next++
				continue
			}
			if g.dateStart.MatchString(cont) || g.ssn.MatchString(cont) {
				break
			}
			if !g.wordStart.MatchString(cont) {
				break
			}
			merged += " " + cont
			next++
		}

		amount, desc, ok := g.tailAmount(merged)
		if !ok {
			i = next
			continue
		}
		if desc == "" {
			desc = "Service"
		} else if words := strings.Fields(desc); len(words) > canon.DescriptionTokenLimit {
			desc = strings.Join(words[:canon.DescriptionTokenLimit], " ")
		}

		items = append(items, entity.ExtractedLineItem{
			ServiceDate:        date,
			CandidateID:        ssn,
			CandidateName:      ssn,
			Amount:             amount,
			ServiceDescription: desc,
			Metadata:           map[string]string{"source_ssn": ssn},
		})
		i = next
	}
	return items
}
