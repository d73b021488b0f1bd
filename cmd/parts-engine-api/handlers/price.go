package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/torquepoint/parts-engine/internal/observability"
	"github.com/torquepoint/parts-engine/pkg/engine"
)

// PriceHandler handles pricing-preview requests.
type PriceHandler struct {
	logger *observability.Logger
	engine *engine.Engine
}

// NewPriceHandler creates a new price handler.
func NewPriceHandler(logger *observability.Logger, eng *engine.Engine) *PriceHandler {
	return &PriceHandler{
		logger: logger,
		engine: eng,
	}
}

// PricePreviewRequestDTO represents the API request for a pricing preview.
type PricePreviewRequestDTO struct {
	ShopID   string  `json:"shopId"`
	Brand    string  `json:"brand,omitempty"`
	Category string  `json:"category,omitempty"`
	Cost     float64 `json:"cost"`
}

// PricePreviewResponseDTO represents the resolved rule and computed price.
type PricePreviewResponseDTO struct {
	Rule      RuleDTO `json:"rule"`
	ListPrice float64 `json:"listPrice"`
	Margin    float64 `json:"margin"`
	MarginPct float64 `json:"marginPct"`
}

// Preview handles POST /price/preview. It resolves the winning rule for the
// given brand and category and prices a hypothetical cost through it.
func (h *PriceHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var reqDTO PricePreviewRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if reqDTO.Cost < 0 {
		writeError(w, http.StatusBadRequest, "cost must not be negative", "")
		return
	}

	rule, breakdown := h.engine.PricePreview(r.Context(), reqDTO.ShopID, reqDTO.Brand, reqDTO.Category, reqDTO.Cost)

	writeJSON(w, http.StatusOK, PricePreviewResponseDTO{
		Rule:      toRuleDTO(rule),
		ListPrice: breakdown.ListPrice,
		Margin:    breakdown.Margin,
		MarginPct: breakdown.MarginPct,
	})
}
