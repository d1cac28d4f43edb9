package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"iot-connector/internal/upstream"
)

// defaults for the measure-history window when the caller omits them
const (
	defaultHistoryFromSeconds      = 900
	defaultHistoryFrequencySeconds = 300
)

// LocationsList handles GET /locations
func (h *Handlers) LocationsList(w http.ResponseWriter, r *http.Request) {
	tree, err := h.facade.ListLocations(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"locations": tree})
}

// LocationGet handles GET /locations/{location_id}, optionally narrowed by
// asset_id and circuit_id query parameters.
func (h *Handlers) LocationGet(w http.ResponseWriter, r *http.Request) {
	locationID := mux.Vars(r)["location_id"]
	query := r.URL.Query()

	loc, err := h.facade.GetLocation(r.Context(), locationID, query.Get("asset_id"), query.Get("circuit_id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, loc)
}

// MeasuresGet handles GET /locations/{location_id}/measures
func (h *Handlers) MeasuresGet(w http.ResponseWriter, r *http.Request) {
	locationID := mux.Vars(r)["location_id"]
	query := r.URL.Query()

	property := query.Get("property")
	if property == "" {
		writeValidationError(w, h.logger, "property", "property query parameter is required")
		return
	}

	params := upstream.HistoryParams{
		FromSeconds:      defaultHistoryFromSeconds,
		To:               query.Get("to"),
		FrequencySeconds: defaultHistoryFrequencySeconds,
	}

	if raw := query.Get("from"); raw != "" {
		from, err := strconv.Atoi(raw)
		if err != nil || from <= 0 {
			writeValidationError(w, h.logger, "from", "from must be a positive number of seconds")
			return
		}
		params.FromSeconds = from
	}
	if raw := query.Get("frequency"); raw != "" {
		freq, err := strconv.Atoi(raw)
		if err != nil || freq <= 0 {
			writeValidationError(w, h.logger, "frequency", "frequency must be a positive number of seconds")
			return
		}
		params.FrequencySeconds = freq
	}

	series, err := h.facade.GetMeasures(r.Context(), locationID, property, params)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, series)
}
