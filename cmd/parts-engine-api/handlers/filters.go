package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/torquepoint/parts-engine/internal/observability"
	"github.com/torquepoint/parts-engine/internal/ranking"
	"github.com/torquepoint/parts-engine/pkg/engine"
)

// FiltersHandler handles natural-language filter parsing requests.
type FiltersHandler struct {
	logger *observability.Logger
	engine *engine.Engine
}

// NewFiltersHandler creates a new filters handler.
func NewFiltersHandler(logger *observability.Logger, eng *engine.Engine) *FiltersHandler {
	return &FiltersHandler{
		logger: logger,
		engine: eng,
	}
}

// ParseRequestDTO represents the API request for filter parsing.
type ParseRequestDTO struct {
	Text string `json:"text"`
}

// ParseResponseDTO represents the parsed filter criteria.
type ParseResponseDTO struct {
	Criteria ranking.FilterCriteria `json:"criteria"`
}

// Parse handles POST /filters/parse. Parsing never fails; text with no
// recognized phrases yields the identity filter.
func (h *FiltersHandler) Parse(w http.ResponseWriter, r *http.Request) {
	var reqDTO ParseRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	criteria := h.engine.ParseFilter(reqDTO.Text)

	writeJSON(w, http.StatusOK, ParseResponseDTO{Criteria: criteria})
}
