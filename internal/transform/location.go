package transform

import (
	"encoding/json"

	"iot-connector/internal/common/errors"
	"iot-connector/internal/models"
)

// childKeys maps each hierarchy level's child collection key to the kind of
// the children it holds.
var childKeys = []struct {
	key  string
	kind models.LocationKind
}{
	{"locations", models.KindLocation},
	{"assets", models.KindAsset},
	{"circuits", models.KindCircuit},
}

// ToLocationTree walks the platform's nested locations/assets/circuits
// structure into canonical Location trees. Null or missing child collections
// become empty slices. Unknown fields are ignored.
func ToLocationTree(raw json.RawMessage) ([]models.Location, error) {
	var envelope map[string]interface{}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		// The platform sometimes returns the top-level collection bare
		var bare []interface{}
		if err := json.Unmarshal(raw, &bare); err != nil {
			return nil, errors.ProtocolError("location payload is not a JSON object or array", err)
		}
		return mapNodes(bare, models.KindLocation), nil
	}

	if rows, ok := envelope["locations"].([]interface{}); ok {
		return mapNodes(rows, models.KindLocation), nil
	}
	if rows, ok := envelope["rows"].([]interface{}); ok {
		return mapNodes(rows, models.KindLocation), nil
	}

	// A single-location payload has an id at the top level
	if _, ok := envelope["id"]; ok {
		loc := mapNode(envelope, models.KindLocation)
		return []models.Location{loc}, nil
	}

	return nil, errors.ProtocolError("location payload has no recognizable location collection", nil)
}

// ToLocation maps a single real-time location payload
func ToLocation(raw json.RawMessage) (*models.Location, error) {
	locations, err := ToLocationTree(raw)
	if err != nil {
		return nil, err
	}
	if len(locations) == 0 {
		return nil, errors.NotFoundError("location")
	}
	loc := locations[0]
	return &loc, nil
}

func mapNodes(rows []interface{}, kind models.LocationKind) []models.Location {
	out := make([]models.Location, 0, len(rows))
	for _, row := range rows {
		node, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		out = append(out, mapNode(node, kind))
	}
	return out
}

func mapNode(node map[string]interface{}, kind models.LocationKind) models.Location {
	loc := models.Location{
		ID:       stringField(node, "id"),
		Name:     nameField(node),
		Kind:     kind,
		Children: []models.Location{},
	}

	for _, child := range childKeys {
		if child.kind == kind {
			continue
		}
		if rows, ok := node[child.key].([]interface{}); ok {
			loc.Children = append(loc.Children, mapNodes(rows, child.kind)...)
		}
	}

	for name := range propertyTypes {
		if pv, ok := propertyValue(node[name]); ok {
			if loc.Properties == nil {
				loc.Properties = map[string]models.PropertyValue{}
			}
			loc.Properties[name] = pv
		}
	}
	for _, name := range aggregateProperties {
		if pv, ok := propertyValue(node[name]); ok {
			if loc.Properties == nil {
				loc.Properties = map[string]models.PropertyValue{}
			}
			loc.Properties[name] = pv
		}
	}

	return loc
}

// aggregateProperties are location-level power aggregates that are readable
// but never writable, so they live outside the writable type table.
var aggregateProperties = []string{"grid_power", "aggregated_power", "local_generated_power"}

// propertyValue maps a raw measure object to a canonical PropertyValue
func propertyValue(v interface{}) (models.PropertyValue, bool) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return models.PropertyValue{}, false
	}

	pv := models.PropertyValue{Value: m["value"]}
	if ts, ok := normalizeTimestamp(m["timestamp"]); ok {
		pv.Timestamp = ts
	}
	if q, ok := qualityField(m["quality"]); ok {
		pv.Quality = &q
	}
	return pv, true
}

// stringField reads a field that the platform emits as string or number
func stringField(node map[string]interface{}, key string) string {
	switch v := node[key].(type) {
	case string:
		return v
	case float64:
		return jsonNumber(v)
	default:
		return ""
	}
}

// nameField handles both a plain string name and the object form some
// platform exports use, where the label sits under "value".
func nameField(node map[string]interface{}) string {
	switch v := node["name"].(type) {
	case string:
		return v
	case map[string]interface{}:
		if s, ok := v["value"].(string); ok {
			return s
		}
	}
	return ""
}

// qualityField normalizes quality codes, which arrive as "0"/"1" strings or
// bare numbers.
func qualityField(v interface{}) (string, bool) {
	switch q := v.(type) {
	case string:
		return q, q != ""
	case float64:
		return jsonNumber(q), true
	default:
		return "", false
	}
}

func jsonNumber(f float64) string {
	b, _ := json.Marshal(f)
	return string(b)
}
