package catalog

import "strings"

// vendorNames maps free-text source identifiers to canonical display names.
// Unknown sources pass through unchanged rather than being dropped.
var vendorNames = map[string]string{
	"ebay":        "eBay",
	"amazon":      "Amazon",
	"autozone":    "AutoZone",
	"rockauto":    "RockAuto",
	"oreilly":     "O'Reilly Auto Parts",
	"o'reilly":    "O'Reilly Auto Parts",
	"napa":        "NAPA Auto Parts",
	"advance":     "Advance Auto Parts",
	"partsgeek":   "Parts Geek",
	"carparts":    "CarParts.com",
	"summit":      "Summit Racing",
	"fcpeuro":     "FCP Euro",
	"pepboys":     "Pep Boys",
	"walmart":     "Walmart",
	"carid":       "CARiD",
	"autopartswarehouse": "Auto Parts Warehouse",
}

// CanonicalVendor normalizes a free-text source string to a display vendor
// name. Unknown sources are returned as-is.
func CanonicalVendor(source string) string {
	if name, ok := vendorNames[strings.ToLower(strings.TrimSpace(source))]; ok {
		return name
	}
	return source
}

// KnownVendors returns the canonical vendor display names, deduplicated.
func KnownVendors() []string {
	seen := make(map[string]bool, len(vendorNames))
	var vendors []string
	for _, name := range vendorNames {
		if !seen[name] {
			seen[name] = true
			vendors = append(vendors, name)
		}
	}
	return vendors
}
