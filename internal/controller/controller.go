// internal/controller/controller.go
package controller

import (
	"encoding/json"
	"net/http"
	"strconv"

	appErrors "github.com/spaceshq/spaces-backend/internal/errors"
)

// spaceID resolves the tenant from the X-Space-ID header, falling back to the
// space_id query param.
func spaceID(r *http.Request) int {
	raw := r.Header.Get("X-Space-ID")
	if raw == "" {
		raw = r.URL.Query().Get("space_id")
	}
	id, _ := strconv.Atoi(raw)
	return id
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// writeError maps sentinel not-found errors to 404, everything else to 500.
func writeError(w http.ResponseWriter, err error) {
	switch err.(type) {
	case *appErrors.ErrCampaignNotFound, *appErrors.ErrPostNotFound, *appErrors.ErrIntegrationNotFound:
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
