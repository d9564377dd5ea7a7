package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/invomaker/invomaker/utils"
)

const maxPageLimit = 100

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// writeError maps service errors onto HTTP statuses. Known API errors
// keep their message; anything else is reported as an internal error
// without leaking detail.
func writeError(w http.ResponseWriter, err error) {
	status := utils.GetHTTPStatusFromError(err)

	var apiErr *utils.APIError
	if errors.As(err, &apiErr) {
		writeJSON(w, status, ErrorResponse{Error: apiErr.Message})
		return
	}
	if status == http.StatusInternalServerError {
		writeJSON(w, status, ErrorResponse{Error: "Internal server error"})
		return
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > maxPageLimit {
		return maxPageLimit
	}
	return limit
}

// requireUser pulls the authenticated user from the request context set
// by the auth middleware.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := utils.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return "", false
	}
	return userID, true
}
