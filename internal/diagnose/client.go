// Package diagnose provides the client for the symptom-diagnosis
// collaborator, which turns free-text symptoms into part queries. The engine
// consumes the resulting query list and knows nothing about the diagnosis
// reasoning.
package diagnose

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/torquepoint/parts-engine/internal/search"
)

// PartQuery is one diagnosed part suggestion.
type PartQuery struct {
	Query string `json:"partQuery"`
	Label string `json:"partLabel"`
}

// Diagnoser maps a free-text symptom to part queries.
type Diagnoser interface {
	Diagnose(ctx context.Context, symptom string, vehicle search.VehicleContext) ([]PartQuery, error)
}

// Client calls the diagnosis service over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Config holds diagnosis client configuration.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewClient creates a diagnosis client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("diagnosis base URL is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
	}, nil
}

type diagnoseRequest struct {
	Symptom string                `json:"symptom"`
	Vehicle search.VehicleContext `json:"vehicle"`
}

type diagnoseResponse struct {
	Parts []PartQuery `json:"parts"`
}

// Diagnose sends the symptom and vehicle context and returns the suggested
// part queries.
func (c *Client) Diagnose(ctx context.Context, symptom string, vehicle search.VehicleContext) ([]PartQuery, error) {
	body, err := json.Marshal(diagnoseRequest{Symptom: symptom, Vehicle: vehicle})
	if err != nil {
		return nil, fmt.Errorf("marshal diagnose request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/diagnose", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create diagnose request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("diagnose request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("diagnose request returned %d: %s", resp.StatusCode, string(respBody))
	}

	var decoded diagnoseResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode diagnose response: %w", err)
	}

	return decoded.Parts, nil
}
