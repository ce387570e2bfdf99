// Package web provides shared helpers for HTTP response shaping and middleware.
package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

func RespondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	// Handle nil payload
	if payload == nil {
		w.WriteHeader(status)
		return
	}

	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error encoding response to JSON", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	RespondJSON(w, logger, status, map[string]string{"error": message})
}

// RespondCreated writes a 201 response with a Location header pointing at the
// new resource and the persisted entity as the body.
func RespondCreated(w http.ResponseWriter, logger *slog.Logger, location string, payload any) {
	w.Header().Set("Location", location)
	RespondJSON(w, logger, http.StatusCreated, payload)
}
