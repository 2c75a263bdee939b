package helpers

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the JSON body for failed requests.
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error     string `json:"error"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Success   *bool  `json:"success,omitempty"`
}

// WriteJSON sets Content-Type to application/json, writes statusCode, and
// encodes v.
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes an ErrorResponse with the given message.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message})
}
