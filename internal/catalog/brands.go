package catalog

import "sort"

// knownBrands lists the brand names recognized during title scanning. Order
// does not matter here; the normalizer sorts longest-first so multi-word
// brands are matched before any single-word substring.
var knownBrands = []string{
	"ACDelco",
	"Akebono",
	"Bilstein",
	"Bosch",
	"Brembo",
	"Cardone",
	"Centric",
	"Dayco",
	"Denso",
	"Dorman",
	"Duralast",
	"EBC Brakes",
	"Gates",
	"Hawk Performance",
	"KYB",
	"Moog",
	"Monroe",
	"Motorcraft",
	"NGK",
	"Power Stop",
	"Raybestos",
	"StopTech",
	"Timken",
	"Wagner",
}

// KnownBrands returns the brand vocabulary sorted longest-first, the order
// the normalizer and smart-filter matching require.
func KnownBrands() []string {
	brands := make([]string, len(knownBrands))
	copy(brands, knownBrands)
	sort.SliceStable(brands, func(i, j int) bool {
		return len(brands[i]) > len(brands[j])
	})
	return brands
}
