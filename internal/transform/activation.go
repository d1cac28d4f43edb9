package transform

import (
	"encoding/json"

	"github.com/google/uuid"

	"iot-connector/internal/common/errors"
	"iot-connector/internal/models"
)

// activationStatusMap translates the platform's lifecycle vocabulary to the
// canonical one. Unknown upstream statuses fall back to pending.
var activationStatusMap = map[string]models.ActivationStatus{
	"idle":      models.ActivationPending,
	"waiting":   models.ActivationPending,
	"active":    models.ActivationApplied,
	"completed": models.ActivationApplied,
	"cancelled": models.ActivationRejected,
}

// ToActivation maps one raw platform activation to the canonical shape
func ToActivation(raw map[string]interface{}) models.Activation {
	act := models.Activation{
		ID:         stringField(raw, "id"),
		LocationID: stringField(raw, "target_id"),
		Status:     models.ActivationPending,
	}

	if status, ok := raw["activation_status"].(string); ok {
		if mapped, known := activationStatusMap[status]; known {
			act.Status = mapped
		}
	}

	// Setpoint is the requested value; delta_setpoint is the fallback for
	// delta-only activations.
	if v, ok := raw["setpoint"]; ok && v != nil {
		act.RequestedValue = v
	} else if v, ok := raw["delta_setpoint"]; ok && v != nil {
		act.RequestedValue = v
	}

	if ts, ok := normalizeTimestamp(raw["requested_start_time"]); ok {
		act.CreatedAt = ts
	}

	return act
}

// ToActivations maps a raw activation list payload
func ToActivations(raw json.RawMessage) ([]models.Activation, error) {
	rows, err := historyRows(raw)
	if err != nil {
		return nil, errors.ProtocolError("activation payload has no recognizable collection", err)
	}

	out := make([]models.Activation, 0, len(rows))
	for _, row := range rows {
		node, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		out = append(out, ToActivation(node))
	}
	return out, nil
}

// FromActivationRequest builds the upstream payload for a new activation and
// the canonical entity the caller gets back. The connector assigns the id;
// status always starts as pending.
func FromActivationRequest(req models.ActivationRequest) (json.RawMessage, *models.Activation, error) {
	if req.LocationID == "" {
		return nil, nil, errors.ValidationError("location_id is required")
	}
	if req.RequestedValue == nil {
		return nil, nil, errors.ValidationError("requested_value is required")
	}

	act := &models.Activation{
		ID:             uuid.NewString(),
		LocationID:     req.LocationID,
		RequestedValue: req.RequestedValue,
		Status:         models.ActivationPending,
		CreatedAt:      req.CreatedAt,
	}

	payload, err := json.Marshal(map[string]interface{}{
		"id":                   act.ID,
		"target_id":            act.LocationID,
		"setpoint":             act.RequestedValue,
		"activation_status":    "waiting",
		"requested_start_time": act.CreatedAt,
	})
	if err != nil {
		return nil, nil, errors.ValidationError("activation payload is not serializable")
	}

	return payload, act, nil
}
