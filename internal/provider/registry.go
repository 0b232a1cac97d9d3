package provider

import (
	"fmt"
	"log/slog"

	"github.com/bgv-audit/invoice-audit/constants"
	"github.com/bgv-audit/invoice-audit/internal/common"
)

// Registry maps vendor names to their grammars. Populated once at startup;
// reads are lock-free because the map never changes afterwards.
type Registry struct {
	grammars map[constants.ProviderName]Grammar
	order    []constants.ProviderName
	logger   *slog.Logger
}

// NewRegistry builds a registry pre-loaded with every supported vendor
// grammar, in deterministic registration order.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		grammars: make(map[constants.ProviderName]Grammar),
		logger:   logger,
	}
	for _, g := range []Grammar{
		NewDisaGlobal(),
		NewFirstAdvantage(),
		NewQuest(),
		NewInCheck(),
		NewScoutLogic(),
		NewSummitHealth(),
		NewCityMD(),
		NewConcentra(),
		NewHealthStreet(),
		NewUniversal(),
		NewEScreen(),
		NewFastMed(),
		NewRelias(),
		NewUNAHealth(),
	} {
		if err := r.Register(g); err != nil {
			// Only reachable by a duplicate registration above, which is a
			// programming error.
			panic(err)
		}
	}
	return r
}

// Register adds a grammar under its own name. Duplicate names are rejected.
func (r *Registry) Register(g Grammar) error {
	name := g.Name()
	if _, exists := r.grammars[name]; exists {
		return fmt.Errorf("register grammar: duplicate provider %q", name)
	}
	r.grammars[name] = g
	r.order = append(r.order, name)
	return nil
}

// Get returns the grammar for a vendor name.
func (r *Registry) Get(name string) (Grammar, error) {
	g, ok := r.grammars[constants.ProviderName(name)]
	if !ok {
		return nil, fmt.Errorf("provider %q: %w", name, common.ErrUnknownProvider)
	}
	return g, nil
}

// Identify runs every grammar's signature check against the document text
// and returns the first vendor that claims it, in registration order.
func (r *Registry) Identify(text string) (Grammar, bool) {
	for _, name := range r.order {
		g := r.grammars[name]
		if g.Identify(text) {
			return g, true
		}
	}
	return nil, false
}

// IdentifyAll returns every vendor whose signature matches. Useful for
// diagnosing ambiguous documents; normal processing takes the first match.
func (r *Registry) IdentifyAll(text string) []constants.ProviderName {
	var out []constants.ProviderName
	for _, name := range r.order {
		if r.grammars[name].Identify(text) {
			out = append(out, name)
		}
	}
	return out
}

// Names lists the registered vendors in registration order.
func (r *Registry) Names() []constants.ProviderName {
	out := make([]constants.ProviderName, len(r.order))
	copy(out, r.order)
	return out
}
