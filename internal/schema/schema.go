// Package schema holds the JSON contracts for extracted invoices and audit
// reports and validates payloads against them before they are persisted or
// leave the system.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// auditReportSchema is the output contract consumed by the presentation
// layer. Check names and the overall status values are closed sets.
const auditReportSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["invoice_id", "overall_status", "results", "total_checks", "passed_checks", "failed_checks"],
	"properties": {
		"invoice_id": {"type": "string", "minLength": 1},
		"overall_status": {"enum": ["PASS", "FAIL"]},
		"total_checks": {"type": "integer", "minimum": 0},
		"passed_checks": {"type": "integer", "minimum": 0},
		"failed_checks": {"type": "integer", "minimum": 0},
		"results": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["check_name", "passed", "message", "details"],
				"properties": {
					"check_name": {
						"enum": [
							"Total Mismatch Check",
							"Internal Duplication Check",
							"Historical Duplication Check"
						]
					},
					"passed": {"type": "boolean"},
					"message": {"type": "string"},
					"details": {"type": "object"}
				}
			}
		}
	}
}`

// extractedInvoiceSchema is the contract an extraction result must meet
// before it may be audited and persisted. Every line item carries a
// candidate id and a description; the grammars guarantee both via their
// fallback rules, and a violation here means a grammar regressed.
const extractedInvoiceSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["invoice_number", "provider_name", "line_items", "grand_total"],
	"properties": {
		"invoice_number": {"type": "string", "minLength": 1},
		"provider_name": {"type": "string", "minLength": 1},
		"grand_total": {"type": "number"},
		"line_items": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["service_date", "candidate_id", "candidate_name", "amount", "service_description", "metadata"],
				"properties": {
					"service_date": {"type": "string"},
					"candidate_id": {"type": "string", "minLength": 1},
					"candidate_name": {"type": "string"},
					"amount": {"type": "number"},
					"service_description": {"type": "string", "minLength": 1},
					"metadata": {
						"type": "object",
						"additionalProperties": {"type": "string"}
					}
				}
			}
		}
	}
}`

var (
	reportSchema  *jsonschema.Schema
	invoiceSchema *jsonschema.Schema
)

func compile(name, src string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader([]byte(src))); err != nil {
		panic(fmt.Sprintf("add %s: %v", name, err))
	}
	s, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("compile %s: %v", name, err))
	}
	return s
}

func init() {
	reportSchema = compile("audit_report.json", auditReportSchema)
	invoiceSchema = compile("extracted_invoice.json", extractedInvoiceSchema)
}

// validate round-trips the payload through JSON so numeric types validate
// as JSON numbers, then applies the schema.
func validate(s *jsonschema.Schema, payload map[string]any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	return s.Validate(v)
}

// ValidateReport checks a report payload (the AuditReport.ToMap shape)
// against the contract.
func ValidateReport(report map[string]any) error {
	if err := validate(reportSchema, report); err != nil {
		return fmt.Errorf("report does not match contract: %w", err)
	}
	return nil
}

// ValidateInvoice checks an extraction payload (the ExtractedInvoice.ToMap
// shape) against the contract.
func ValidateInvoice(invoice map[string]any) error {
	if err := validate(invoiceSchema, invoice); err != nil {
		return fmt.Errorf("invoice does not match contract: %w", err)
	}
	return nil
}
