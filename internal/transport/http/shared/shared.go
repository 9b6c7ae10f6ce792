// Package shared centralizes JSON response writing so every handler renders
// the same envelopes: {message, error?} on failure, payload or
// {message, enrollment} on success.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "enrollsvc/pkg/domain-errors"
)

// ErrorResponse is the error envelope for every failure mode.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// WriteJSON renders v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the error envelope. Causes are
// never rendered; only the client-safe message and code leave the process.
func WriteError(w http.ResponseWriter, err error) {
	status := dErrors.ToHTTPStatus(err)
	resp := ErrorResponse{Message: "Internal server error"}

	var de *dErrors.Error
	if errors.As(err, &de) {
		resp.Message = de.Message
		resp.Error = string(de.Code)
	}
	WriteJSON(w, status, resp)
}
