package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"iot-connector/internal/connector"
	"iot-connector/internal/models"
)

// ActivationsList handles GET /activations with optional location_id and
// status filters.
func (h *Handlers) ActivationsList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := connector.ActivationFilter{
		LocationID: query.Get("location_id"),
	}
	if raw := query.Get("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status := models.ActivationStatus(strings.TrimSpace(part))
			switch status {
			case models.ActivationPending, models.ActivationApplied, models.ActivationRejected:
				filter.Statuses = append(filter.Statuses, status)
			default:
				writeValidationError(w, h.logger, "status", "status values must be pending, applied or rejected")
				return
			}
		}
	}

	acts, err := h.facade.ListActivations(r.Context(), filter)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"activations": acts})
}

// ActivationsCreate handles POST /activations
func (h *Handlers) ActivationsCreate(w http.ResponseWriter, r *http.Request) {
	var req models.ActivationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, h.logger, "body", "request body must be a JSON activation")
		return
	}

	act, err := h.facade.CreateActivation(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, act)
}
