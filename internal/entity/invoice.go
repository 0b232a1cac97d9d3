package entity

// ExtractedInvoice is the parse result for one PDF. The orchestrator may
// build several candidates for the same document (one per strategy) before
// selecting exactly one to keep.
type ExtractedInvoice struct {
	InvoiceNumber string              `json:"invoice_number"` // vendor-supplied, or the UNKNOWN placeholder
	ProviderName  string              `json:"provider_name"`  // which grammar produced this result
	LineItems     []ExtractedLineItem `json:"line_items"`     // document order
	GrandTotal    float64             `json:"grand_total"`    // vendor-declared total
}

// CalculatedTotal sums the line item amounts.
func (inv *ExtractedInvoice) CalculatedTotal() float64 {
	var sum float64
	for _, li := range inv.LineItems {
		sum += li.Amount
	}
	return sum
}

// ToMap flattens the invoice to the JSON-serializable contract shape
// consumed by the presentation layer.
func (inv *ExtractedInvoice) ToMap() map[string]any {
	items := make([]map[string]any, len(inv.LineItems))
	for i, li := range inv.LineItems {
		items[i] = li.ToMap()
	}
	return map[string]any{
		"invoice_number": inv.InvoiceNumber,
		"provider_name":  inv.ProviderName,
		"line_items":     items,
		"grand_total":    inv.GrandTotal,
	}
}

// Table is a grid of cells as handed over by the line source: rows of
// columns, outer slice in reading order.
type Table [][]string
