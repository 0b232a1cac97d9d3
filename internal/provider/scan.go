package provider

// scanPhase is the explicit state of a context-grouped line scan. Vendors
// whose invoices print a candidate header followed by that candidate's
// service lines are parsed by a small machine over these phases.
type scanPhase int

const (
	// noContext: outside any candidate block. Item lines seen here are
	// orphans and get dropped.
	noContext scanPhase = iota
	// capturingHeader: an anchor opened a header that continues onto the
	// following line(s); the fragments accumulate in the buffer.
	capturingHeader
	// hasContext: a complete candidate header is in force; item lines are
	// attributed to it.
	hasContext
)

// candidateContext is the billing context in force during a scan: the
// identity fields item lines inherit.
type candidateContext struct {
	date string
	id   string
	name string
}

// scanState is the full mutable state of a context-grouped scan. Grammars
// drive the transitions themselves; the struct only ensures every piece of
// carried state is reset together.
type scanState struct {
	phase  scanPhase
	buffer []string // header fragments while capturingHeader
	ctx    candidateContext

	// pendingDate carries a date seen before the identity anchor, for
	// vendors that print the service date on its own line above the header.
	pendingDate string
}

// open installs a complete candidate context and clears any capture buffer.
func (s *scanState) open(ctx candidateContext) {
	s.phase = hasContext
	s.ctx = ctx
	s.buffer = nil
}

// capture starts (or continues) buffering a multi-line header.
func (s *scanState) capture(fragment string) {
	s.phase = capturingHeader
	s.buffer = append(s.buffer, fragment)
}

// reset drops all context and returns the scan to noContext.
func (s *scanState) reset() {
	*s = scanState{}
}
