package connector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iot-connector/internal/common/errors"
	"iot-connector/internal/models"
	"iot-connector/internal/oauth2"
	"iot-connector/internal/upstream"
)

// staticTokens satisfies upstream.TokenProvider with a fixed token
type staticTokens struct{}

func (staticTokens) GetToken(ctx context.Context, environment string) (*oauth2.Token, error) {
	return &oauth2.Token{Value: "test-token", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (staticTokens) Invalidate(environment string) {}

func mockFacade() *Facade {
	return NewFacade(NewMockBackend(), nil)
}

func TestListLocations_Mock(t *testing.T) {
	tree, err := mockFacade().ListLocations(context.Background())
	require.NoError(t, err)
	require.Len(t, tree, 1)

	assert.Equal(t, "icepark-001", tree[0].ID)
	require.Len(t, tree[0].Children, 2)
	assert.Equal(t, models.KindAsset, tree[0].Children[0].Kind)
}

func TestGetLocation_Mock(t *testing.T) {
	loc, err := mockFacade().GetLocation(context.Background(), "icepark-001", "", "")
	require.NoError(t, err)

	assert.Equal(t, "icepark-001", loc.ID)
	assert.Contains(t, loc.Properties, "grid_power")
	require.Len(t, loc.Children, 2)
	assert.Contains(t, loc.Children[0].Properties, "operation_mode")
}

func TestGetLocation_AssetFilter(t *testing.T) {
	loc, err := mockFacade().GetLocation(context.Background(), "icepark-001", "chiller-001", "")
	require.NoError(t, err)

	assert.Equal(t, "chiller-001", loc.ID)
	assert.Equal(t, models.KindAsset, loc.Kind)
	assert.Len(t, loc.Children, 2)
}

func TestGetLocation_CircuitFilter(t *testing.T) {
	loc, err := mockFacade().GetLocation(context.Background(), "icepark-001", "", "circuit-s2")
	require.NoError(t, err)

	assert.Equal(t, "circuit-s2", loc.ID)
	assert.Equal(t, models.KindCircuit, loc.Kind)
}

func TestGetLocation_UnknownAsset(t *testing.T) {
	_, err := mockFacade().GetLocation(context.Background(), "icepark-001", "no-such-asset", "")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeNotFound))
}

func TestGetLocation_Unknown(t *testing.T) {
	_, err := mockFacade().GetLocation(context.Background(), "no-such-location", "", "")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeNotFound))
}

func TestGetLocation_EmptyID(t *testing.T) {
	_, err := mockFacade().GetLocation(context.Background(), "", "", "")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
}

func TestGetMeasures_Mock(t *testing.T) {
	series, err := mockFacade().GetMeasures(context.Background(), "icepark-001", "temp", upstream.HistoryParams{})
	require.NoError(t, err)

	assert.Equal(t, "temp", series.PropertyName)
	require.Len(t, series.Points, 3)
	assert.Equal(t, "2023-11-14T22:13:20.000Z", series.Points[0].Timestamp)
}

func TestListActivations_Mock(t *testing.T) {
	acts, err := mockFacade().ListActivations(context.Background(), ActivationFilter{})
	require.NoError(t, err)
	require.Len(t, acts, 2)

	assert.Equal(t, models.ActivationApplied, acts[0].Status)
	assert.Equal(t, "circuit-s1", acts[0].LocationID)
}

func TestListActivations_Filtered(t *testing.T) {
	acts, err := mockFacade().ListActivations(context.Background(), ActivationFilter{LocationID: "chiller-001"})
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, "act-0002", acts[0].ID)
}

func TestCreateActivation_Mock(t *testing.T) {
	act, err := mockFacade().CreateActivation(context.Background(), models.ActivationRequest{
		LocationID:     "circuit-s1",
		RequestedValue: 7.5,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, act.ID)
	assert.Equal(t, models.ActivationPending, act.Status)
}

func TestSetProperty_Mock(t *testing.T) {
	ack, err := mockFacade().SetProperty(context.Background(), models.PropertyWriteRequest{
		ThingID:      "CHILLER_0001",
		PropertyName: "power",
		Value:        float64(25),
	})
	require.NoError(t, err)
	assert.Equal(t, "applied", ack.Status)
}

func TestSetProperty_AllowListEnforced(t *testing.T) {
	_, err := mockFacade().SetProperty(context.Background(), models.PropertyWriteRequest{
		ThingID:      "CHILLER_0001",
		PropertyName: "firmware_version",
		Value:        float64(1),
	})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
}

func TestSetProperty_TypeEnforced(t *testing.T) {
	_, err := mockFacade().SetProperty(context.Background(), models.PropertyWriteRequest{
		ThingID:      "CHILLER_0001",
		PropertyName: "power",
		Value:        "not a number",
	})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
}

// TestMockRealParity drives a real upstream.Client against a stub server
// serving the mock fixture and checks both paths produce identically shaped
// canonical trees.
func TestMockRealParity(t *testing.T) {
	mockRaw, err := NewMockBackend().ListLocations(context.Background())
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(mockRaw)
	}))
	defer server.Close()

	realBackend := upstream.NewClient(server.URL, "key", "dev", staticTokens{})
	realFacade := NewFacade(realBackend, nil)
	mock := mockFacade()

	fromReal, err := realFacade.ListLocations(context.Background())
	require.NoError(t, err)
	fromMock, err := mock.ListLocations(context.Background())
	require.NoError(t, err)

	realJSON, err := json.Marshal(fromReal)
	require.NoError(t, err)
	mockJSON, err := json.Marshal(fromMock)
	require.NoError(t, err)
	assert.JSONEq(t, string(realJSON), string(mockJSON))
}
