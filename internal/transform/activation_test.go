package transform

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iot-connector/internal/common/errors"
	"iot-connector/internal/models"
)

func TestToActivations_StatusMapping(t *testing.T) {
	tests := []struct {
		upstream string
		want     models.ActivationStatus
	}{
		{"idle", models.ActivationPending},
		{"waiting", models.ActivationPending},
		{"active", models.ActivationApplied},
		{"completed", models.ActivationApplied},
		{"cancelled", models.ActivationRejected},
		{"something-new", models.ActivationPending},
	}

	for _, tt := range tests {
		t.Run(tt.upstream, func(t *testing.T) {
			raw := json.RawMessage(`[{"id":"act-1","target_id":"circuit-s1","setpoint":7.5,"activation_status":"` + tt.upstream + `"}]`)

			acts, err := ToActivations(raw)
			require.NoError(t, err)
			require.Len(t, acts, 1)
			assert.Equal(t, tt.want, acts[0].Status)
		})
	}
}

func TestToActivation_Fields(t *testing.T) {
	acts, err := ToActivations(json.RawMessage(`[{
		"id": "act-1",
		"target_id": "chiller-001",
		"setpoint": 7.5,
		"delta_setpoint": 0.5,
		"activation_status": "active",
		"requested_start_time": 1700000000000
	}]`))
	require.NoError(t, err)
	require.Len(t, acts, 1)

	act := acts[0]
	assert.Equal(t, "act-1", act.ID)
	assert.Equal(t, "chiller-001", act.LocationID)
	assert.Equal(t, 7.5, act.RequestedValue)
	assert.Equal(t, models.ActivationApplied, act.Status)
	assert.Equal(t, "2023-11-14T22:13:20.000Z", act.CreatedAt)
}

func TestToActivation_DeltaSetpointFallback(t *testing.T) {
	acts, err := ToActivations(json.RawMessage(`[{"id":"a","target_id":"c","setpoint":null,"delta_setpoint":1.0,"activation_status":"waiting"}]`))
	require.NoError(t, err)
	assert.Equal(t, 1.0, acts[0].RequestedValue)
}

func TestFromActivationRequest(t *testing.T) {
	req := models.ActivationRequest{
		LocationID:     "circuit-s1",
		RequestedValue: 7.5,
		CreatedAt:      "2023-11-14T22:13:20.000Z",
	}

	payload, act, err := FromActivationRequest(req)
	require.NoError(t, err)

	assert.NotEmpty(t, act.ID)
	assert.Equal(t, "circuit-s1", act.LocationID)
	assert.Equal(t, 7.5, act.RequestedValue)
	assert.Equal(t, models.ActivationPending, act.Status)

	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &sent))
	assert.Equal(t, "circuit-s1", sent["target_id"])
	assert.Equal(t, 7.5, sent["setpoint"])
	assert.Equal(t, "waiting", sent["activation_status"])
}

func TestActivationRoundTrip(t *testing.T) {
	req := models.ActivationRequest{LocationID: "loc-9", RequestedValue: 12.25}

	payload, _, err := FromActivationRequest(req)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &raw))
	back := ToActivation(raw)

	assert.Equal(t, req.LocationID, back.LocationID)
	assert.Equal(t, req.RequestedValue, back.RequestedValue)
}

func TestFromActivationRequest_Validation(t *testing.T) {
	_, _, err := FromActivationRequest(models.ActivationRequest{RequestedValue: 1.0})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))

	_, _, err = FromActivationRequest(models.ActivationRequest{LocationID: "loc-1"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
}
