package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"iot-connector/internal/models"
)

// propertyWriteBody is the inbound PUT body shape
type propertyWriteBody struct {
	Value interface{} `json:"value"`
}

// PropertyPut handles PUT /locations/{thing_id}/properties/{property_name}
func (h *Handlers) PropertyPut(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var body propertyWriteBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeValidationError(w, h.logger, "body", "request body must be JSON")
		return
	}
	if body.Value == nil {
		writeValidationError(w, h.logger, "value", "value is required")
		return
	}

	ack, err := h.facade.SetProperty(r.Context(), models.PropertyWriteRequest{
		ThingID:      vars["thing_id"],
		PropertyName: vars["property_name"],
		Value:        body.Value,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, ack)
}
