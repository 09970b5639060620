package middleware

import (
	"encoding/json"
	"net/http"

	"genstudio/internal/domain"
)

// writeFailure renders a failed Result so rejected requests look like every
// other API response.
func writeFailure(w http.ResponseWriter, status int, message string, code domain.ErrorCode) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.Result[struct{}]{Error: message, Code: code})
}
