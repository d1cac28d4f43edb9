package handlers

import (
	"net/http"
	"time"
)

// Health handles GET /health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": h.config.Environment,
		"upstream":    h.config.UpstreamEnabled,
		"time":        time.Now().UTC().Format(time.RFC3339),
	})
}
