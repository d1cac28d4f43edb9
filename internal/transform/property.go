package transform

import (
	"encoding/json"
	"fmt"

	"iot-connector/internal/common/errors"
	"iot-connector/internal/models"
)

// propertyKind is the declared value type of a writable property
type propertyKind int

const (
	kindNumeric propertyKind = iota
	kindText
)

// propertyTypes declares the value type of every known measure property.
// Everything the platform exposes is numeric except operation_mode.
var propertyTypes = map[string]propertyKind{
	"power":          kindNumeric,
	"tempsp":         kindNumeric,
	"deltatempsp":    kindNumeric,
	"status":         kindNumeric,
	"operation_mode": kindText,
	"availability":   kindNumeric,
	"humidity":       kindNumeric,
	"temp":           kindNumeric,
	"quality":        kindNumeric,
}

// ValidateWriteValue checks a value against the property's declared type.
// It does not consult the allow-list; the caller decides writability.
func ValidateWriteValue(property string, value interface{}) error {
	kind, known := propertyTypes[property]
	if !known {
		return errors.ValidationError(fmt.Sprintf("unknown property %q", property))
	}

	switch kind {
	case kindNumeric:
		switch value.(type) {
		case float64, float32, int, int32, int64, json.Number:
			return nil
		}
		return errors.ValidationError(fmt.Sprintf("property %q requires a numeric value", property))
	case kindText:
		if _, ok := value.(string); ok {
			return nil
		}
		return errors.ValidationError(fmt.Sprintf("property %q requires a string value", property))
	}

	return nil
}

// ToPropertyWritePayload builds the upstream PUT body for a property write,
// rejecting values outside the property's declared type.
func ToPropertyWritePayload(req models.PropertyWriteRequest) (json.RawMessage, error) {
	if req.ThingID == "" {
		return nil, errors.ValidationError("thing_id is required")
	}
	if err := ValidateWriteValue(req.PropertyName, req.Value); err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]interface{}{"value": req.Value})
	if err != nil {
		return nil, errors.ValidationError("property value is not serializable")
	}
	return body, nil
}

// ToPropertyWriteAck builds the canonical acknowledgement for an applied write
func ToPropertyWriteAck(req models.PropertyWriteRequest) *models.PropertyWriteAck {
	return &models.PropertyWriteAck{
		ThingID:      req.ThingID,
		PropertyName: req.PropertyName,
		Value:        req.Value,
		Status:       "applied",
	}
}
