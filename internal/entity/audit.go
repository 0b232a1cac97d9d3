package entity

import (
	"time"

	"github.com/bgv-audit/invoice-audit/constants"
)

// AuditResult is the outcome of one audit check. Written once, never
// mutated.
type AuditResult struct {
	CheckName string         `json:"check_name"`
	Passed    bool           `json:"passed"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details"`
}

// ToMap flattens the result to the JSON-serializable contract shape.
func (r AuditResult) ToMap() map[string]any {
	details := r.Details
	if details == nil {
		details = map[string]any{}
	}
	return map[string]any{
		"check_name": r.CheckName,
		"passed":     r.Passed,
		"message":    r.Message,
		"details":    details,
	}
}

// AuditReport is the complete audit outcome for one invoice.
type AuditReport struct {
	InvoiceID     string                `json:"invoice_id"`
	OverallStatus constants.AuditStatus `json:"overall_status"`
	Results       []AuditResult         `json:"results"`
}

// NewAuditReport derives the overall status from the individual results.
func NewAuditReport(invoiceID string, results []AuditResult) *AuditReport {
	status := constants.AuditStatusPass
	for _, r := range results {
		if !r.Passed {
			status = constants.AuditStatusFail
			break
		}
	}
	return &AuditReport{
		InvoiceID:     invoiceID,
		OverallStatus: status,
		Results:       results,
	}
}

// PassedChecks counts the checks that passed.
func (rep *AuditReport) PassedChecks() int {
	n := 0
	for _, r := range rep.Results {
		if r.Passed {
			n++
		}
	}
	return n
}

// ToMap flattens the report, including the derived counts the presentation
// layer depends on.
func (rep *AuditReport) ToMap() map[string]any {
	results := make([]map[string]any, len(rep.Results))
	for i, r := range rep.Results {
		results[i] = r.ToMap()
	}
	passed := rep.PassedChecks()
	return map[string]any{
		"invoice_id":     rep.InvoiceID,
		"overall_status": string(rep.OverallStatus),
		"results":        results,
		"total_checks":   len(rep.Results),
		"passed_checks":  passed,
		"failed_checks":  len(rep.Results) - passed,
	}
}

// FingerprintRecord is one row of the historical fingerprint store: the
// identity of a billed service and the invoice that first carried it.
type FingerprintRecord struct {
	FingerprintID      string    `json:"fingerprint_id"`
	InvoiceID          string    `json:"invoice_id"`
	InvoiceNumber      string    `json:"invoice_number"`
	ProviderName       string    `json:"provider_name"`
	CandidateID        string    `json:"candidate_id"`
	ServiceDate        string    `json:"service_date"`
	Amount             float64   `json:"amount"`
	ServiceDescription string    `json:"service_description"`
	ProcessedAt        time.Time `json:"processed_at"`
}

// Invoice is the persisted header of a processed invoice plus its audit
// outcome.
type Invoice struct {
	ID            string                `json:"id"` // invoice_number + timestamp suffix
	Filename      string                `json:"filename"`
	InvoiceNumber string                `json:"invoice_number"`
	ProviderName  string                `json:"provider_name"`
	GrandTotal    float64               `json:"grand_total"`
	AuditStatus   constants.AuditStatus `json:"audit_status"`
	AuditReport   map[string]any        `json:"audit_report,omitempty"`
	ProcessedAt   time.Time             `json:"processed_at"`
}
