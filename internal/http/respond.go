package httpx

import (
	"encoding/json"
	"net/http"
)

const (
	kindValidation         = "validation_error"
	kindDuplicateEmail     = "duplicate_email"
	kindInvalidCredentials = "invalid_credentials"
	kindUnauthenticated    = "unauthenticated"
	kindNotFound           = "not_found"
	kindRateLimited        = "rate_limited"
	kindInternal           = "internal"
)

// writeJSON writes JSON response with status code.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError sends a machine-readable error body.
func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, map[string]string{"error": msg, "kind": kind})
}
