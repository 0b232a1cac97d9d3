package constants

// AuditStatus is the overall outcome of an audit run.
type AuditStatus string

// Stable values (store these exact strings in DB).
const (
	AuditStatusPending AuditStatus = "PENDING" // extracted, audit not yet run
	AuditStatusPass    AuditStatus = "PASS"    // all checks passed
	AuditStatusFail    AuditStatus = "FAIL"    // at least one check failed
)

// Audit check names as they appear in reports. The presentation layer keys
// off these strings, so they are part of the output contract.
const (
	CheckTotalMismatch        = "Total Mismatch Check"
	CheckInternalDuplication  = "Internal Duplication Check"
	CheckHistoricalDuplicates = "Historical Duplication Check"
)

// RoundingTolerance is the allowance, in dollars, for floating rounding
// drift when comparing summed line items to the declared grand total.
const RoundingTolerance = 0.01
