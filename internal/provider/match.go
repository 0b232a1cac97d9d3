package provider

import "regexp"

// matcher is one compiled pattern in an ordered fallback list. The capture
// group index defaults to 1; multi-group patterns name the group they want.
type matcher struct {
	re    *regexp.Regexp
	group int
}

func newMatcher(expr string) matcher {
	return matcher{re: regexp.MustCompile(expr), group: 1}
}

func newMatcherGroup(expr string, group int) matcher {
	return matcher{re: regexp.MustCompile(expr), group: group}
}

// firstMatch tries the matchers in order and returns the capture of the
// first one that hits. Pattern order is priority order: the most specific
// layout first, degraded OCR shapes last.
func firstMatch(ms []matcher, text string) (string, bool) {
	for _, m := range ms {
		if sub := m.re.FindStringSubmatch(text); sub != nil && m.group < len(sub) {
			return sub[m.group], true
		}
	}
	return "", false
}

// firstAmount is firstMatch followed by defensive amount parsing. A pattern
// that hits but whose capture does not survive amount repair falls through
// to the next pattern.
func firstAmount(ms []matcher, text string) (float64, bool) {
	for _, m := range ms {
		for _, sub := range m.re.FindAllStringSubmatch(text, -1) {
			if m.group >= len(sub) {
				continue
			}
			if v, err := ParseAmount(sub[m.group]); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}
