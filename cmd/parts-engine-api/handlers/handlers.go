// Package handlers provides HTTP handlers for the Parts Engine API.
package handlers

import (
	"encoding/json"
	"net/http"
)

// ErrorResponseDTO is the uniform error body for all endpoints.
type ErrorResponseDTO struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message, detail string) {
	writeJSON(w, status, ErrorResponseDTO{Error: message, Detail: detail})
}
