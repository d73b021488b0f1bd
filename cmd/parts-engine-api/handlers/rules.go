package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/torquepoint/parts-engine/internal/observability"
	"github.com/torquepoint/parts-engine/internal/pricing"
	"github.com/torquepoint/parts-engine/internal/storage"
)

// RulesHandler handles pricing-rule management requests.
type RulesHandler struct {
	logger *observability.Logger
	repo   *storage.RuleRepository
}

// NewRulesHandler creates a new rules handler.
func NewRulesHandler(logger *observability.Logger, repo *storage.RuleRepository) *RulesHandler {
	return &RulesHandler{
		logger: logger,
		repo:   repo,
	}
}

// RuleDTO represents one pricing rule.
type RuleDTO struct {
	ID          string          `json:"id,omitempty"`
	ShopID      string          `json:"shopId"`
	RuleType    string          `json:"ruleType"`
	Brand       string          `json:"brand,omitempty"`
	Category    string          `json:"category,omitempty"`
	MarkupType  string          `json:"markupType"`
	MarkupValue float64         `json:"markupValue"`
	MatrixTiers []MatrixTierDTO `json:"matrixTiers,omitempty"`
	Priority    int             `json:"priority"`
}

// MatrixTierDTO represents one cost interval of a matrix rule.
type MatrixTierDTO struct {
	Min     float64  `json:"min"`
	Max     *float64 `json:"max,omitempty"`
	Percent float64  `json:"pct"`
}

// List handles GET /shops/{shopID}/rules.
func (h *RulesHandler) List(w http.ResponseWriter, r *http.Request) {
	shopID := chi.URLParam(r, "shopID")

	rules, err := h.repo.ListByShop(r.Context(), shopID)
	if err != nil {
		h.logger.Error().Err(err).Str("shop_id", shopID).Msg("List rules failed")
		writeError(w, http.StatusInternalServerError, "list rules failed", err.Error())
		return
	}

	dtos := make([]RuleDTO, 0, len(rules))
	for _, rule := range rules {
		dtos = append(dtos, toRuleDTO(rule))
	}

	writeJSON(w, http.StatusOK, dtos)
}

// Get handles GET /shops/{shopID}/rules/{ruleID}.
func (h *RulesHandler) Get(w http.ResponseWriter, r *http.Request) {
	shopID := chi.URLParam(r, "shopID")
	ruleID := chi.URLParam(r, "ruleID")

	rule, err := h.repo.GetByID(r.Context(), shopID, ruleID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "rule not found", "")
			return
		}
		h.logger.Error().Err(err).Str("rule_id", ruleID).Msg("Get rule failed")
		writeError(w, http.StatusInternalServerError, "get rule failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toRuleDTO(*rule))
}

// Create handles POST /shops/{shopID}/rules.
func (h *RulesHandler) Create(w http.ResponseWriter, r *http.Request) {
	shopID := chi.URLParam(r, "shopID")

	var dto RuleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	rule, err := toRule(dto, shopID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	if err := h.repo.Create(r.Context(), &rule); err != nil {
		if errors.Is(err, storage.ErrGlobalRuleExists) {
			writeError(w, http.StatusConflict, "shop already has a global rule", "")
			return
		}
		h.logger.Error().Err(err).Str("shop_id", shopID).Msg("Create rule failed")
		writeError(w, http.StatusInternalServerError, "create rule failed", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toRuleDTO(rule))
}

// Update handles PUT /shops/{shopID}/rules/{ruleID}.
func (h *RulesHandler) Update(w http.ResponseWriter, r *http.Request) {
	shopID := chi.URLParam(r, "shopID")
	ruleID := chi.URLParam(r, "ruleID")

	var dto RuleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	rule, err := toRule(dto, shopID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	rule.ID = ruleID

	if err := h.repo.Update(r.Context(), &rule); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "rule not found", "")
			return
		}
		h.logger.Error().Err(err).Str("rule_id", ruleID).Msg("Update rule failed")
		writeError(w, http.StatusInternalServerError, "update rule failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toRuleDTO(rule))
}

// Delete handles DELETE /shops/{shopID}/rules/{ruleID}.
func (h *RulesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	shopID := chi.URLParam(r, "shopID")
	ruleID := chi.URLParam(r, "ruleID")

	if err := h.repo.Delete(r.Context(), shopID, ruleID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "rule not found", "")
			return
		}
		h.logger.Error().Err(err).Str("rule_id", ruleID).Msg("Delete rule failed")
		writeError(w, http.StatusInternalServerError, "delete rule failed", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toRuleDTO(rule pricing.Rule) RuleDTO {
	dto := RuleDTO{
		ID:          rule.ID,
		ShopID:      rule.ShopID,
		RuleType:    string(rule.RuleType),
		Brand:       rule.Brand,
		Category:    rule.Category,
		MarkupType:  string(rule.MarkupType),
		MarkupValue: rule.MarkupValue,
		Priority:    rule.Priority,
	}
	for _, tier := range rule.MatrixTiers {
		dto.MatrixTiers = append(dto.MatrixTiers, MatrixTierDTO{Min: tier.Min, Max: tier.Max, Percent: tier.Percent})
	}
	return dto
}

func toRule(dto RuleDTO, shopID string) (pricing.Rule, error) {
	ruleType := pricing.RuleType(dto.RuleType)
	switch ruleType {
	case pricing.RuleGlobal, pricing.RuleCategory, pricing.RuleBrand:
	default:
		return pricing.Rule{}, errors.New("ruleType must be global, category, or brand")
	}

	markupType := pricing.MarkupType(dto.MarkupType)
	switch markupType {
	case pricing.MarkupPercentage, pricing.MarkupFixed, pricing.MarkupMatrix:
	default:
		return pricing.Rule{}, errors.New("markupType must be percentage, fixed, or matrix")
	}

	if ruleType == pricing.RuleBrand && dto.Brand == "" {
		return pricing.Rule{}, errors.New("brand is required for a brand rule")
	}
	if ruleType == pricing.RuleCategory && dto.Category == "" {
		return pricing.Rule{}, errors.New("category is required for a category rule")
	}

	rule := pricing.Rule{
		ID:          dto.ID,
		ShopID:      shopID,
		RuleType:    ruleType,
		Brand:       dto.Brand,
		Category:    dto.Category,
		MarkupType:  markupType,
		MarkupValue: dto.MarkupValue,
		Priority:    dto.Priority,
	}
	for _, tier := range dto.MatrixTiers {
		rule.MatrixTiers = append(rule.MatrixTiers, pricing.MatrixTier{Min: tier.Min, Max: tier.Max, Percent: tier.Percent})
	}
	return rule, nil
}
