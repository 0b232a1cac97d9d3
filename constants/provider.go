package constants

// ProviderName is the canonical name of a BGV vendor. The set is closed:
// grammars are registered at startup for exactly these names, and lookup of
// anything else is an error.
type ProviderName string

// Stable values (store these exact strings in DB and reports).
const (
	ProviderDisaGlobal     ProviderName = "Disa Global"
	ProviderFirstAdvantage ProviderName = "First Advantage"
	ProviderQuest          ProviderName = "Quest Diagnostics"
	ProviderInCheck        ProviderName = "InCheck"
	ProviderScoutLogic     ProviderName = "Scout Logic"
	ProviderSummitHealth   ProviderName = "Summit Health"
	ProviderCityMD         ProviderName = "CityMD"
	ProviderConcentra      ProviderName = "Concentra"
	ProviderHealthStreet   ProviderName = "HealthStreet"
	ProviderUniversal      ProviderName = "Universal"
	ProviderEScreen        ProviderName = "eScreen"
	ProviderFastMed        ProviderName = "FastMed"
	ProviderRelias         ProviderName = "Relias"
	ProviderUNAHealth      ProviderName = "UNA Health"
)

// AllProviders lists every supported vendor in registration order.
var AllProviders = []ProviderName{
	ProviderDisaGlobal,
	ProviderFirstAdvantage,
	ProviderQuest,
	ProviderInCheck,
	ProviderScoutLogic,
	ProviderSummitHealth,
	ProviderCityMD,
	ProviderConcentra,
	ProviderHealthStreet,
	ProviderUniversal,
	ProviderEScreen,
	ProviderFastMed,
	ProviderRelias,
	ProviderUNAHealth,
}

// ProviderNames returns the vendor names as plain strings.
func ProviderNames() []string {
	out := make([]string, len(AllProviders))
	for i, p := range AllProviders {
		out[i] = string(p)
	}
	return out
}

// IsProvider reports whether name is one of the supported vendors.
func IsProvider(name string) bool {
	for _, p := range AllProviders {
		if string(p) == name {
			return true
		}
	}
	return false
}

// UnknownInvoiceNumber is the placeholder used when no invoice number
// pattern matched. The processor appends a timestamp before persisting, so
// the placeholder never collides in storage.
const UnknownInvoiceNumber = "UNKNOWN"
