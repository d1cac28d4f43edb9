package connector

import (
	"context"
	"encoding/json"
	"fmt"

	"iot-connector/internal/common/errors"
	"iot-connector/internal/upstream"
)

// fixtureBase anchors all mock timestamps so responses are deterministic
const fixtureBase int64 = 1700000000000

// MockBackend serves a fixed site hierarchy in the upstream wire format.
// Because it speaks the same raw format the platform does, every mock
// response flows through the same transformer as real traffic.
type MockBackend struct{}

// NewMockBackend returns the deterministic fixture backend
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

func (m *MockBackend) ListLocations(ctx context.Context) (json.RawMessage, error) {
	return json.RawMessage(`{
		"locations": [
			{
				"id": "icepark-001",
				"name": "Ice Park",
				"assets": [
					{
						"id": "chiller-001",
						"name": "Chiller 1",
						"circuits": [
							{"id": "circuit-s1", "name": "South rink"},
							{"id": "circuit-s2", "name": "North rink"}
						]
					},
					{
						"id": "chiller-002",
						"name": "Chiller 2",
						"circuits": []
					}
				]
			}
		]
	}`), nil
}

func (m *MockBackend) GetLocation(ctx context.Context, locationID string) (json.RawMessage, error) {
	if locationID != "icepark-001" {
		return nil, errors.NotFoundError("location")
	}

	payload := fmt.Sprintf(`{
		"id": "icepark-001",
		"grid_power": {"value": 118.4, "timestamp": %d, "quality": "1"},
		"aggregated_power": {"value": 96.2, "timestamp": %d, "quality": "1"},
		"assets": [
			{
				"id": "chiller-001",
				"power": {"value": 52.0, "timestamp": %d, "quality": "1"},
				"temp": {"value": -6.5, "timestamp": %d, "quality": "1"},
				"tempsp": {"value": -7.0, "timestamp": %d, "quality": "1"},
				"operation_mode": {"value": "cooling", "timestamp": %d, "quality": "1"},
				"circuits": [
					{
						"id": "circuit-s1",
						"temp": {"value": -6.2, "timestamp": %d, "quality": "1"},
						"status": {"value": 1, "timestamp": %d, "quality": "1"}
					},
					{
						"id": "circuit-s2",
						"temp": {"value": -5.9, "timestamp": %d, "quality": "0"},
						"status": {"value": 1, "timestamp": %d, "quality": "1"}
					}
				]
			},
			{
				"id": "chiller-002",
				"power": {"value": 44.2, "timestamp": %d, "quality": "1"},
				"availability": {"value": 0, "timestamp": %d, "quality": "1"},
				"circuits": []
			}
		]
	}`, fixtureBase, fixtureBase, fixtureBase, fixtureBase, fixtureBase, fixtureBase,
		fixtureBase, fixtureBase, fixtureBase, fixtureBase, fixtureBase, fixtureBase)

	return json.RawMessage(payload), nil
}

func (m *MockBackend) GetMeasureHistory(ctx context.Context, locationID, property string, params upstream.HistoryParams) (json.RawMessage, error) {
	if locationID != "icepark-001" {
		return nil, errors.NotFoundError("location")
	}

	// Three points at the default 300s frequency, ascending
	step := int64(300_000)
	if params.FrequencySeconds > 0 {
		step = int64(params.FrequencySeconds) * 1000
	}

	payload := fmt.Sprintf(`{"rows":[
		{"timestamp": %d, "value": 21.5, "quality": "1"},
		{"timestamp": %d, "value": 21.7, "quality": "1"},
		{"timestamp": %d, "value": 21.6, "quality": "1"}
	]}`, fixtureBase, fixtureBase+step, fixtureBase+2*step)

	return json.RawMessage(payload), nil
}

func (m *MockBackend) ListActivations(ctx context.Context) (json.RawMessage, error) {
	return json.RawMessage(fmt.Sprintf(`{"rows":[
		{
			"id": "act-0001",
			"target_id": "circuit-s1",
			"target_type": "circuit",
			"setpoint": 7.5,
			"delta_setpoint": 0.5,
			"activation_status": "active",
			"requested_start_time": %d
		},
		{
			"id": "act-0002",
			"target_id": "chiller-001",
			"target_type": "asset",
			"setpoint": null,
			"delta_setpoint": 1.0,
			"activation_status": "completed",
			"requested_start_time": %d
		}
	]}`, fixtureBase, fixtureBase)), nil
}

func (m *MockBackend) CreateActivation(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	var req map[string]interface{}
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, errors.ValidationError("activation payload must be a JSON object")
	}
	// Echo the platform's per-activation response shape
	resp, _ := json.Marshal(map[string]interface{}{
		"id":       req["id"],
		"response": 200,
	})
	return resp, nil
}

func (m *MockBackend) SetProperty(ctx context.Context, thingID, property string, value interface{}) (json.RawMessage, error) {
	if !upstream.IsWritable(property) {
		return nil, errors.ValidationError(fmt.Sprintf("property %q is not allowed", property))
	}
	return json.RawMessage(`{}`), nil
}
