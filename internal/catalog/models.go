// Package catalog provides the canonical part result model and the normalizer
// that maps heterogeneous upstream search hits into it.
package catalog

// Tier classifies the quality segment of a part.
type Tier string

const (
	TierBest   Tier = "best"
	TierBetter Tier = "better"
	TierGood   Tier = "good"
)

// Fitment is the confidence that a part fits the requested vehicle. It is a
// three-state classification; Unknown must stay distinguishable from a
// verified or likely fit.
type Fitment string

const (
	FitmentVerified Fitment = "verified"
	FitmentLikely   Fitment = "likely"
	FitmentUnknown  Fitment = "unknown"
)

// PartResult is the canonical record produced by the normalizer from one
// upstream hit. It is enriched with pricing downstream and never persisted.
type PartResult struct {
	ID             string
	PartName       string
	Brand          string
	Category       string
	PartNumber     string
	Material       string
	Tier           Tier
	Vendor         string
	Cost           float64
	DeliveryHours  int // always >= 1; same-day delivery is modeled as 1
	Fitment        Fitment
	ImageURL       string
	Condition      string
	SourceURL      string
	RelevanceScore int // 0-100
	GroupLabel     string
}

// UpstreamHit is one raw record from the parts-search provider. Field shapes
// vary across sources; every field is optional and the normalizer degrades
// missing or malformed fields to safe defaults.
type UpstreamHit struct {
	ID                string   `json:"id,omitempty"`
	Title             string   `json:"title,omitempty"`
	Name              string   `json:"name,omitempty"`
	Brand             string   `json:"brand,omitempty"`
	PartNumber        string   `json:"partNumber,omitempty"`
	BestPrice         *float64 `json:"bestPrice,omitempty"`
	Price             *float64 `json:"price,omitempty"`
	QualityLabel      string   `json:"quality,omitempty"`
	EstimatedDays     *int     `json:"estimatedDays,omitempty"`
	FreeShipping      bool     `json:"freeShipping,omitempty"`
	FitmentVerified   bool     `json:"fitmentVerified,omitempty"`
	FitmentConfidence string   `json:"fitmentConfidence,omitempty"`
	Source            string   `json:"source,omitempty"`
	ImageURL          string   `json:"imageUrl,omitempty"`
	URL               string   `json:"url,omitempty"`
	Condition         string   `json:"condition,omitempty"`
	Relevance         *int     `json:"relevance,omitempty"`
	Category          string   `json:"category,omitempty"`
}
