package entity

import (
	"github.com/bgv-audit/invoice-audit/internal/canon"
)

// ExtractedLineItem is one billable service rendered to one candidate, as
// parsed out of a vendor invoice. Items are created by a provider grammar
// and never mutated afterwards; a mis-extraction is corrected only by
// re-running extraction.
type ExtractedLineItem struct {
	ServiceDate        string            `json:"service_date"` // canonical MM/DD/YYYY, may be empty
	CandidateID        string            `json:"candidate_id"`
	CandidateName      string            `json:"candidate_name"` // best effort; some vendors substitute the id
	Amount             float64           `json:"amount"`         // cents precision, negative = credit
	ServiceDescription string            `json:"service_description"`
	Metadata           map[string]string `json:"metadata"` // vendor-specific, informational only
}

// Fingerprint returns the content-addressed identity of the item. Computed
// on demand, never stored on the item; identical canonical tuples yield the
// same fingerprint regardless of which grammar or extraction pass produced
// them.
func (li ExtractedLineItem) Fingerprint() string {
	return canon.Fingerprint(li.ServiceDate, li.CandidateID, li.Amount, li.ServiceDescription)
}

// ToMap flattens the item to the JSON-serializable contract shape.
func (li ExtractedLineItem) ToMap() map[string]any {
	meta := li.Metadata
	if meta == nil {
		meta = map[string]string{}
	}
	return map[string]any{
		"service_date":        li.ServiceDate,
		"candidate_id":        li.CandidateID,
		"candidate_name":      li.CandidateName,
		"amount":              li.Amount,
		"service_description": li.ServiceDescription,
		"metadata":            meta,
	}
}
