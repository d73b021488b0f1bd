package catalog

import (
	"strings"

	"github.com/google/uuid"
)

const (
	maxTitleLen = 80

	// Pessimistic delivery defaults for listings without an explicit
	// estimate: free shipping implies a known carrier lane, anything else
	// gets the slowest assumption.
	freeShippingHours   = 48
	unknownDeliveryHours = 72
)

// materialVocabulary is scanned in order against the lowercased title; the
// first match wins. Multi-word spellings precede their collapsed variants.
var materialVocabulary = []struct {
	keyword  string
	material string
}{
	{"semi-metallic", "Semi-Metallic"},
	{"semi metallic", "Semi-Metallic"},
	{"carbon fiber", "Carbon Fiber"},
	{"ceramic", "Ceramic"},
	{"organic", "Organic"},
}

// Normalizer maps arbitrary upstream search-result payloads into canonical
// PartResult records. A malformed hit degrades field-by-field to safe
// defaults; it never aborts normalization of the batch.
type Normalizer struct {
	brands []string // longest-first
}

// NewNormalizer creates a normalizer with the built-in brand vocabulary.
func NewNormalizer() *Normalizer {
	return &Normalizer{brands: KnownBrands()}
}

// Normalize converts one upstream hit into a PartResult tagged with
// groupLabel. The second return value is false only when both the title and
// the price are unrecoverable, the one case where a hit is dropped.
func (n *Normalizer) Normalize(hit UpstreamHit, groupLabel string) (PartResult, bool) {
	title := strings.TrimSpace(hit.Title)
	if title == "" {
		title = strings.TrimSpace(hit.Name)
	}

	cost, hasPrice := extractPrice(hit)
	if title == "" && !hasPrice {
		return PartResult{}, false
	}

	brand := n.resolveBrand(hit.Brand, title)

	result := PartResult{
		ID:             hit.ID,
		PartName:       cleanTitle(title, brand),
		Brand:          brand,
		Category:       strings.TrimSpace(hit.Category),
		PartNumber:     strings.TrimSpace(hit.PartNumber),
		Material:       detectMaterial(title),
		Tier:           classifyTier(hit.QualityLabel),
		Vendor:         CanonicalVendor(hit.Source),
		Cost:           cost,
		DeliveryHours:  estimateDeliveryHours(hit),
		Fitment:        classifyFitment(hit),
		ImageURL:       hit.ImageURL,
		Condition:      hit.Condition,
		SourceURL:      hit.URL,
		RelevanceScore: clampRelevance(hit.Relevance),
		GroupLabel:     groupLabel,
	}

	if result.ID == "" {
		result.ID = uuid.New().String()
	}

	return result, true
}

// extractPrice prefers the explicit best-price field, falls back to the
// generic price field, and reports whether either was present. An absent
// price is valid, just unsellable.
func extractPrice(hit UpstreamHit) (float64, bool) {
	if hit.BestPrice != nil && *hit.BestPrice >= 0 {
		return *hit.BestPrice, true
	}
	if hit.Price != nil && *hit.Price >= 0 {
		return *hit.Price, true
	}
	return 0, false
}

// resolveBrand uses the explicit brand field when present, otherwise scans
// the title against the longest-first brand vocabulary. Multi-word brands
// must win over single-word substrings, e.g. "Power Stop" before any partial
// token.
func (n *Normalizer) resolveBrand(explicit, title string) string {
	if b := strings.TrimSpace(explicit); b != "" {
		return b
	}

	lowerTitle := strings.ToLower(title)
	for _, brand := range n.brands {
		if strings.Contains(lowerTitle, strings.ToLower(brand)) {
			return brand
		}
	}

	return "Unknown"
}

// classifyTier maps upstream quality labels onto the quality tiers. Better is
// the safe default for unknown or absent labels.
func classifyTier(label string) Tier {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "premium", "oem", "best":
		return TierBest
	case "economy", "good":
		return TierGood
	default:
		return TierBetter
	}
}

// detectMaterial scans the title for the fixed material vocabulary. No match
// leaves the material unset.
func detectMaterial(title string) string {
	lower := strings.ToLower(title)
	for _, entry := range materialVocabulary {
		if strings.Contains(lower, entry.keyword) {
			return entry.material
		}
	}
	return ""
}

// estimateDeliveryHours converts the hit's shipping signals into delivery
// hours, never below one hour.
func estimateDeliveryHours(hit UpstreamHit) int {
	if hit.EstimatedDays != nil {
		days := *hit.EstimatedDays
		if days < 1 {
			days = 1
		}
		return days * 24
	}
	if hit.FreeShipping {
		return freeShippingHours
	}
	return unknownDeliveryHours
}

// classifyFitment maps upstream fitment signals onto the three-state
// classification. Unknown is never collapsed into a boolean.
func classifyFitment(hit UpstreamHit) Fitment {
	if hit.FitmentVerified {
		return FitmentVerified
	}
	switch strings.ToLower(strings.TrimSpace(hit.FitmentConfidence)) {
	case "high", "medium":
		return FitmentLikely
	default:
		return FitmentUnknown
	}
}

// cleanTitle strips a leading brand name and separator punctuation, then
// truncates to the display length. The original title is preserved whenever
// cleanup would produce an empty string.
func cleanTitle(title, brand string) string {
	cleaned := title
	if brand != "" && brand != "Unknown" {
		lower := strings.ToLower(cleaned)
		if strings.HasPrefix(lower, strings.ToLower(brand)) {
			cleaned = cleaned[len(brand):]
			cleaned = strings.TrimLeft(cleaned, " -–,")
		}
	}

	if strings.TrimSpace(cleaned) == "" {
		cleaned = title
	}

	runes := []rune(cleaned)
	if len(runes) > maxTitleLen {
		cleaned = string(runes[:maxTitleLen-1]) + "…"
	}

	return cleaned
}

// clampRelevance bounds a relevance score to 0-100, defaulting to 0 when the
// provider sent none.
func clampRelevance(relevance *int) int {
	if relevance == nil {
		return 0
	}
	score := *relevance
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
