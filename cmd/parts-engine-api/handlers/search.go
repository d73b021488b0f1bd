package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/torquepoint/parts-engine/internal/observability"
	"github.com/torquepoint/parts-engine/internal/ranking"
	"github.com/torquepoint/parts-engine/internal/search"
	"github.com/torquepoint/parts-engine/pkg/engine"
)

// SearchHandler handles part-search requests.
type SearchHandler struct {
	logger *observability.Logger
	engine *engine.Engine
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(logger *observability.Logger, eng *engine.Engine) *SearchHandler {
	return &SearchHandler{
		logger: logger,
		engine: eng,
	}
}

// SearchRequestDTO represents the API request for a part search.
type SearchRequestDTO struct {
	ShopID  string                  `json:"shopId"`
	Queries []QueryDTO              `json:"queries"`
	Vehicle VehicleDTO              `json:"vehicle"`
	Filters *ranking.FilterCriteria `json:"filters,omitempty"`
	Sort    string                  `json:"sort,omitempty"`
}

// DiagnoseRequestDTO represents the API request for a symptom-driven search.
type DiagnoseRequestDTO struct {
	ShopID  string                  `json:"shopId"`
	Symptom string                  `json:"symptom"`
	Vehicle VehicleDTO              `json:"vehicle"`
	Filters *ranking.FilterCriteria `json:"filters,omitempty"`
	Sort    string                  `json:"sort,omitempty"`
}

// QueryDTO represents one part query.
type QueryDTO struct {
	Text  string `json:"text"`
	Label string `json:"label,omitempty"`
}

// VehicleDTO represents the vehicle a search is scoped to.
type VehicleDTO struct {
	Year  int    `json:"year,omitempty"`
	Make  string `json:"make,omitempty"`
	Model string `json:"model,omitempty"`
	VIN   string `json:"vin,omitempty"`
}

// SearchResponseDTO represents the API response for a part search.
type SearchResponseDTO struct {
	Results   []PartDTO       `json:"results"`
	Groups    []QueryGroupDTO `json:"groups"`
	TopPickID string          `json:"topPickId,omitempty"`
	LatencyMs int64           `json:"latencyMs"`
	FromCache bool            `json:"fromCache"`
}

// PartDTO represents one priced and ranked part result.
type PartDTO struct {
	ID             string         `json:"id"`
	PartName       string         `json:"partName"`
	Brand          string         `json:"brand"`
	Category       string         `json:"category,omitempty"`
	PartNumber     string         `json:"partNumber,omitempty"`
	Material       string         `json:"material,omitempty"`
	Tier           string         `json:"tier"`
	Vendor         string         `json:"vendor"`
	Cost           float64        `json:"cost"`
	ListPrice      float64        `json:"listPrice"`
	Margin         float64        `json:"margin"`
	MarginPct      float64        `json:"marginPct"`
	DeliveryHours  int            `json:"deliveryHours"`
	Fitment        string         `json:"fitment"`
	ImageURL       string         `json:"imageUrl,omitempty"`
	Condition      string         `json:"condition,omitempty"`
	SourceURL      string         `json:"sourceUrl,omitempty"`
	RelevanceScore int            `json:"relevanceScore"`
	GroupLabel     string         `json:"groupLabel,omitempty"`
	AppliedRule    AppliedRuleDTO `json:"appliedRule"`
}

// AppliedRuleDTO records which pricing rule produced a list price.
type AppliedRuleDTO struct {
	Type       string  `json:"type"`
	MarkupType string  `json:"markupType"`
	Value      float64 `json:"value"`
}

// QueryGroupDTO represents the outcome of one query's upstream call.
type QueryGroupDTO struct {
	Label       string `json:"label"`
	Query       string `json:"query"`
	ResultCount int    `json:"resultCount"`
	Error       string `json:"error,omitempty"`
}

// Search handles POST /search.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var reqDTO SearchRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if len(reqDTO.Queries) == 0 {
		writeError(w, http.StatusBadRequest, "at least one query is required", "")
		return
	}
	for _, q := range reqDTO.Queries {
		if q.Text == "" {
			writeError(w, http.StatusBadRequest, "query text is required", "")
			return
		}
	}

	resp, err := h.engine.Search(ctx, toEngineRequest(reqDTO.ShopID, reqDTO.Queries, reqDTO.Vehicle, reqDTO.Filters, reqDTO.Sort))
	if err != nil {
		h.logger.Error().Err(err).Msg("Search failed")
		writeError(w, http.StatusInternalServerError, "search failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toSearchResponseDTO(resp))
}

// Diagnose handles POST /search/diagnose.
func (h *SearchHandler) Diagnose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var reqDTO DiagnoseRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if reqDTO.Symptom == "" {
		writeError(w, http.StatusBadRequest, "symptom is required", "")
		return
	}

	resp, err := h.engine.SearchSymptom(ctx, toEngineRequest(reqDTO.ShopID, nil, reqDTO.Vehicle, reqDTO.Filters, reqDTO.Sort), reqDTO.Symptom)
	if err != nil {
		h.logger.Error().Err(err).Msg("Symptom search failed")
		writeError(w, http.StatusInternalServerError, "symptom search failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toSearchResponseDTO(resp))
}

func toEngineRequest(shopID string, queries []QueryDTO, vehicle VehicleDTO, filters *ranking.FilterCriteria, sortKey string) engine.SearchRequest {
	req := engine.SearchRequest{
		ShopID: shopID,
		Vehicle: search.VehicleContext{
			Year:  vehicle.Year,
			Make:  vehicle.Make,
			Model: vehicle.Model,
			VIN:   vehicle.VIN,
		},
		Sort: ranking.SortBestMargin,
	}

	for _, q := range queries {
		req.Queries = append(req.Queries, search.Query{Text: q.Text, Label: q.Label})
	}

	if filters != nil {
		req.Filters = *filters
	}

	if sortKey != "" {
		req.Sort = ranking.SortKey(sortKey)
	}

	return req
}

func toSearchResponseDTO(resp *engine.SearchResponse) SearchResponseDTO {
	dto := SearchResponseDTO{
		Results:   make([]PartDTO, 0, len(resp.Results)),
		Groups:    make([]QueryGroupDTO, 0, len(resp.Groups)),
		TopPickID: resp.TopPickID,
		LatencyMs: resp.LatencyMs,
		FromCache: resp.FromCache,
	}

	for _, part := range resp.Results {
		dto.Results = append(dto.Results, PartDTO{
			ID:             part.ID,
			PartName:       part.PartName,
			Brand:          part.Brand,
			Category:       part.Category,
			PartNumber:     part.PartNumber,
			Material:       part.Material,
			Tier:           string(part.Tier),
			Vendor:         part.Vendor,
			Cost:           part.Cost,
			ListPrice:      part.ListPrice,
			Margin:         part.Margin,
			MarginPct:      part.MarginPct,
			DeliveryHours:  part.DeliveryHours,
			Fitment:        string(part.Fitment),
			ImageURL:       part.ImageURL,
			Condition:      part.Condition,
			SourceURL:      part.SourceURL,
			RelevanceScore: part.RelevanceScore,
			GroupLabel:     part.GroupLabel,
			AppliedRule: AppliedRuleDTO{
				Type:       string(part.Applied.Type),
				MarkupType: string(part.Applied.MarkupType),
				Value:      part.Applied.Value,
			},
		})
	}

	for _, group := range resp.Groups {
		dto.Groups = append(dto.Groups, QueryGroupDTO{
			Label:       group.Label,
			Query:       group.Query,
			ResultCount: group.ResultCount,
			Error:       group.Error,
		})
	}

	return dto
}
