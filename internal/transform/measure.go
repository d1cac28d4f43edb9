package transform

import (
	"encoding/json"

	"iot-connector/internal/common/errors"
	"iot-connector/internal/models"
)

// ToMeasureSeries maps a raw history payload to a canonical series. Point
// order is preserved exactly as the platform returned it. Points missing a
// value field keep a nil Value rather than a zero.
func ToMeasureSeries(raw json.RawMessage, locationID, property string) (*models.MeasureSeries, error) {
	rows, err := historyRows(raw)
	if err != nil {
		return nil, err
	}

	series := &models.MeasureSeries{
		LocationID:   locationID,
		PropertyName: property,
		Points:       make([]models.Measure, 0, len(rows)),
	}

	for _, row := range rows {
		point, ok := row.(map[string]interface{})
		if !ok {
			continue
		}

		m := models.Measure{
			LocationID:   locationID,
			PropertyName: property,
			Value:        point["value"],
		}
		if ts, ok := normalizeTimestamp(point["timestamp"]); ok {
			m.Timestamp = ts
		}
		if q, ok := qualityField(point["quality"]); ok {
			m.Quality = &q
		}

		series.Points = append(series.Points, m)
	}

	return series, nil
}

// historyRows finds the point collection in the payload's known envelopes
func historyRows(raw json.RawMessage) ([]interface{}, error) {
	var bare []interface{}
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare, nil
	}

	var envelope map[string]interface{}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, errors.ProtocolError("history payload is not a JSON object or array", err)
	}

	for _, key := range []string{"rows", "values", "points"} {
		if rows, ok := envelope[key].([]interface{}); ok {
			return rows, nil
		}
	}

	return nil, errors.ProtocolError("history payload has no recognizable point collection", nil)
}
