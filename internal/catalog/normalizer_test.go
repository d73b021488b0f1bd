package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func TestNormalize_PricePreference(t *testing.T) {
	n := NewNormalizer()

	t.Run("best price wins over generic price", func(t *testing.T) {
		hit := UpstreamHit{Title: "Brake Pads", BestPrice: fptr(19.99), Price: fptr(24.99)}
		got, ok := n.Normalize(hit, "")
		require.True(t, ok)
		assert.Equal(t, 19.99, got.Cost)
	})

	t.Run("generic price is the fallback", func(t *testing.T) {
		hit := UpstreamHit{Title: "Brake Pads", Price: fptr(24.99)}
		got, ok := n.Normalize(hit, "")
		require.True(t, ok)
		assert.Equal(t, 24.99, got.Cost)
	})

	t.Run("no price yields zero cost, hit kept", func(t *testing.T) {
		hit := UpstreamHit{Title: "Brake Pads"}
		got, ok := n.Normalize(hit, "")
		require.True(t, ok)
		assert.Equal(t, 0.0, got.Cost)
	})
}

func TestNormalize_DropOnlyWhenTitleAndPriceMissing(t *testing.T) {
	n := NewNormalizer()

	_, ok := n.Normalize(UpstreamHit{Source: "ebay"}, "")
	assert.False(t, ok)

	// A priced hit with no title survives
	_, ok = n.Normalize(UpstreamHit{Price: fptr(9.99)}, "")
	assert.True(t, ok)

	// Name is accepted as a title alias
	got, ok := n.Normalize(UpstreamHit{Name: "Rotor Kit"}, "")
	require.True(t, ok)
	assert.Equal(t, "Rotor Kit", got.PartName)
}

func TestNormalize_BrandResolution(t *testing.T) {
	n := NewNormalizer()

	t.Run("explicit brand wins", func(t *testing.T) {
		hit := UpstreamHit{Title: "Bosch Brake Pads", Brand: "Wagner", Price: fptr(10)}
		got, _ := n.Normalize(hit, "")
		assert.Equal(t, "Wagner", got.Brand)
	})

	t.Run("multi-word brand matches before partial tokens", func(t *testing.T) {
		hit := UpstreamHit{Title: "power stop z23 carbon fiber pads", Price: fptr(10)}
		got, _ := n.Normalize(hit, "")
		assert.Equal(t, "Power Stop", got.Brand)
	})

	t.Run("no match defaults to Unknown", func(t *testing.T) {
		hit := UpstreamHit{Title: "generic pads", Price: fptr(10)}
		got, _ := n.Normalize(hit, "")
		assert.Equal(t, "Unknown", got.Brand)
	})
}

func TestNormalize_TierClassification(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		label    string
		expected Tier
	}{
		{"premium", TierBest},
		{"OEM", TierBest},
		{"best", TierBest},
		{"economy", TierGood},
		{"good", TierGood},
		{"standard", TierBetter},
		{"", TierBetter},
	}

	for _, tc := range tests {
		hit := UpstreamHit{Title: "pads", QualityLabel: tc.label, Price: fptr(10)}
		got, _ := n.Normalize(hit, "")
		assert.Equal(t, tc.expected, got.Tier, "label %q", tc.label)
	}
}

func TestNormalize_MaterialDetection(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		title    string
		expected string
	}{
		{"Akebono ceramic pads", "Ceramic"},
		{"semi-metallic front pads", "Semi-Metallic"},
		{"semi metallic front pads", "Semi-Metallic"},
		{"carbon fiber performance pads", "Carbon Fiber"},
		{"organic brake pads", "Organic"},
		{"plain brake pads", ""},
	}

	for _, tc := range tests {
		hit := UpstreamHit{Title: tc.title, Price: fptr(10)}
		got, _ := n.Normalize(hit, "")
		assert.Equal(t, tc.expected, got.Material, "title %q", tc.title)
	}
}

func TestNormalize_DeliveryEstimation(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name     string
		hit      UpstreamHit
		expected int
	}{
		{"explicit days", UpstreamHit{Title: "pads", Price: fptr(10), EstimatedDays: iptr(3)}, 72},
		{"zero days floors to one day", UpstreamHit{Title: "pads", Price: fptr(10), EstimatedDays: iptr(0)}, 24},
		{"free shipping default", UpstreamHit{Title: "pads", Price: fptr(10), FreeShipping: true}, 48},
		{"unknown default", UpstreamHit{Title: "pads", Price: fptr(10)}, 72},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, _ := n.Normalize(tc.hit, "")
			assert.Equal(t, tc.expected, got.DeliveryHours)
		})
	}
}

func TestNormalize_FitmentClassification(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name     string
		hit      UpstreamHit
		expected Fitment
	}{
		{"verified flag", UpstreamHit{Title: "pads", Price: fptr(10), FitmentVerified: true}, FitmentVerified},
		{"high confidence", UpstreamHit{Title: "pads", Price: fptr(10), FitmentConfidence: "high"}, FitmentLikely},
		{"medium confidence", UpstreamHit{Title: "pads", Price: fptr(10), FitmentConfidence: "medium"}, FitmentLikely},
		{"low confidence", UpstreamHit{Title: "pads", Price: fptr(10), FitmentConfidence: "low"}, FitmentUnknown},
		{"absent", UpstreamHit{Title: "pads", Price: fptr(10)}, FitmentUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, _ := n.Normalize(tc.hit, "")
			assert.Equal(t, tc.expected, got.Fitment)
		})
	}
}

func TestNormalize_VendorCanonicalization(t *testing.T) {
	n := NewNormalizer()

	got, _ := n.Normalize(UpstreamHit{Title: "pads", Price: fptr(10), Source: "ebay"}, "")
	assert.Equal(t, "eBay", got.Vendor)

	// Unknown sources pass through untouched
	got, _ = n.Normalize(UpstreamHit{Title: "pads", Price: fptr(10), Source: "PartsWarehouse"}, "")
	assert.Equal(t, "PartsWarehouse", got.Vendor)
}

func TestNormalize_TitleCleanup(t *testing.T) {
	n := NewNormalizer()

	t.Run("brand prefix and separators stripped", func(t *testing.T) {
		hit := UpstreamHit{Title: "Bosch - QuietCast Brake Pads", Brand: "Bosch", Price: fptr(10)}
		got, _ := n.Normalize(hit, "")
		assert.Equal(t, "QuietCast Brake Pads", got.PartName)
	})

	t.Run("title that is only the brand is preserved", func(t *testing.T) {
		hit := UpstreamHit{Title: "Bosch", Brand: "Bosch", Price: fptr(10)}
		got, _ := n.Normalize(hit, "")
		assert.Equal(t, "Bosch", got.PartName)
	})

	t.Run("long titles truncate with ellipsis", func(t *testing.T) {
		hit := UpstreamHit{Title: strings.Repeat("x", 120), Price: fptr(10)}
		got, _ := n.Normalize(hit, "")
		assert.Equal(t, 80, len([]rune(got.PartName)))
		assert.True(t, strings.HasSuffix(got.PartName, "…"))
	})
}

func TestNormalize_IDAndGroupLabel(t *testing.T) {
	n := NewNormalizer()

	got, _ := n.Normalize(UpstreamHit{ID: "abc-123", Title: "pads", Price: fptr(10)}, "front brakes")
	assert.Equal(t, "abc-123", got.ID)
	assert.Equal(t, "front brakes", got.GroupLabel)

	// Missing IDs are generated so downstream ranking can always reference one
	got, _ = n.Normalize(UpstreamHit{Title: "pads", Price: fptr(10)}, "")
	assert.NotEmpty(t, got.ID)
}

func TestNormalize_RelevanceClamping(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		relevance *int
		expected  int
	}{
		{nil, 0},
		{iptr(-5), 0},
		{iptr(50), 50},
		{iptr(150), 100},
	}

	for _, tc := range tests {
		got, _ := n.Normalize(UpstreamHit{Title: "pads", Price: fptr(10), Relevance: tc.relevance}, "")
		assert.Equal(t, tc.expected, got.RelevanceScore)
	}
}
