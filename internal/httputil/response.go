package httputil

import (
	"encoding/json"
	"log"
	"net/http"
)

// SuccessResponse is the envelope for successful responses.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the envelope for failed responses.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

// RespondJSON sends a JSON response with the given status code.
// Logs encoding errors to avoid silent failures.
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// RespondSuccess wraps data in the success envelope.
func RespondSuccess(w http.ResponseWriter, data any, message string, statusCode int) {
	RespondJSON(w, SuccessResponse{Success: true, Data: data, Message: message}, statusCode)
}

// RespondCreated wraps data in the success envelope with a 201 status.
func RespondCreated(w http.ResponseWriter, data any, message string) {
	RespondSuccess(w, data, message, http.StatusCreated)
}

// RespondError sends an error envelope with a machine-readable code.
func RespondError(w http.ResponseWriter, message string, code string, statusCode int) {
	RespondJSON(w, ErrorResponse{Success: false, Error: message, Code: code}, statusCode)
}
