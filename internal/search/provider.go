// Package search provides the parts-search provider port and the concurrent
// query fan-out orchestrator.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/torquepoint/parts-engine/internal/catalog"
)

// VehicleContext identifies the vehicle a search is scoped to. All fields are
// optional; the provider tolerates partial context.
type VehicleContext struct {
	Year  int    `json:"vehicleYear,omitempty"`
	Make  string `json:"vehicleMake,omitempty"`
	Model string `json:"vehicleModel,omitempty"`
	VIN   string `json:"vehicleVin,omitempty"`
}

// ProviderRequest is one upstream search call.
type ProviderRequest struct {
	Query     string         `json:"queryText"`
	Vehicle   VehicleContext `json:"vehicle"`
	Limit     int            `json:"limit"`
	Condition string         `json:"condition"`
}

// Provider is the upstream parts-search collaborator. One call per query; the
// engine performs no retries beyond the single attempt.
type Provider interface {
	Search(ctx context.Context, req ProviderRequest) ([]catalog.UpstreamHit, error)
}

// HTTPProvider calls a parts-search API over HTTP.
type HTTPProvider struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// HTTPProviderConfig holds provider client configuration.
type HTTPProviderConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewHTTPProvider creates an HTTP provider client.
func NewHTTPProvider(cfg HTTPProviderConfig) (*HTTPProvider, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("provider base URL is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &HTTPProvider{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
	}, nil
}

// searchResponse is the provider's wire envelope.
type searchResponse struct {
	Results []catalog.UpstreamHit `json:"results"`
}

// Search issues one search call and decodes the heterogeneous hit list.
func (p *HTTPProvider) Search(ctx context.Context, req ProviderRequest) ([]catalog.UpstreamHit, error) {
	payload := map[string]interface{}{
		"queryText": req.Query,
		"limit":     req.Limit,
		"condition": req.Condition,
	}
	if req.Vehicle.Year > 0 {
		payload["vehicleYear"] = req.Vehicle.Year
	}
	if req.Vehicle.Make != "" {
		payload["vehicleMake"] = req.Vehicle.Make
	}
	if req.Vehicle.Model != "" {
		payload["vehicleModel"] = req.Vehicle.Model
	}
	if req.Vehicle.VIN != "" {
		payload["vehicleVin"] = req.Vehicle.VIN
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/parts/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search request returned %d: %s", resp.StatusCode, string(respBody))
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	return decoded.Results, nil
}
