// Package connector composes the upstream client and the transformer behind
// a single facade. Each operation validates its input shape, calls the
// backend, and maps the raw payload to a canonical entity; typed errors pass
// through unchanged.
package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"iot-connector/internal/common/errors"
	"iot-connector/internal/common/logging"
	"iot-connector/internal/models"
	"iot-connector/internal/transform"
	"iot-connector/internal/upstream"
)

// Backend is the raw-payload surface the facade composes over. The real
// implementation is upstream.Client; MockBackend serves fixture payloads in
// the same wire format so both paths share one transformer.
type Backend interface {
	ListLocations(ctx context.Context) (json.RawMessage, error)
	GetLocation(ctx context.Context, locationID string) (json.RawMessage, error)
	GetMeasureHistory(ctx context.Context, locationID, property string, params upstream.HistoryParams) (json.RawMessage, error)
	ListActivations(ctx context.Context) (json.RawMessage, error)
	CreateActivation(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)
	SetProperty(ctx context.Context, thingID, property string, value interface{}) (json.RawMessage, error)
}

// ActivationFilter narrows a ListActivations result. Statuses is an OR of
// acceptable canonical statuses; empty means all.
type ActivationFilter struct {
	LocationID string
	Statuses   []models.ActivationStatus
}

func (f ActivationFilter) matches(act models.Activation) bool {
	if f.LocationID != "" && act.LocationID != f.LocationID {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if act.Status == s {
			return true
		}
	}
	return false
}

// Facade is the connector's single entry point for canonical operations.
// Backend selection happens once, at construction, never per call.
type Facade struct {
	backend Backend
	logger  logging.Logger
}

// NewFacade builds a facade over the given backend
func NewFacade(backend Backend, logger logging.Logger) *Facade {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Facade{backend: backend, logger: logger}
}

// ListLocations returns the full canonical location hierarchy
func (f *Facade) ListLocations(ctx context.Context) ([]models.Location, error) {
	raw, err := f.backend.ListLocations(ctx)
	if err != nil {
		return nil, err
	}
	return transform.ToLocationTree(raw)
}

// GetLocation returns the real-time view of one location, optionally
// narrowed to a single asset or circuit subtree.
func (f *Facade) GetLocation(ctx context.Context, locationID, assetID, circuitID string) (*models.Location, error) {
	if locationID == "" {
		return nil, errors.ValidationError("location id is required")
	}

	raw, err := f.backend.GetLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}

	loc, err := transform.ToLocation(raw)
	if err != nil {
		return nil, err
	}

	if assetID != "" {
		loc = narrowTree(loc, models.KindAsset, assetID)
		if loc == nil {
			return nil, errors.NotFoundError(fmt.Sprintf("asset %s", assetID))
		}
	}
	if circuitID != "" {
		loc = narrowTree(loc, models.KindCircuit, circuitID)
		if loc == nil {
			return nil, errors.NotFoundError(fmt.Sprintf("circuit %s", circuitID))
		}
	}

	return loc, nil
}

// GetMeasures returns the measure history for one property of a location
func (f *Facade) GetMeasures(ctx context.Context, locationID, property string, params upstream.HistoryParams) (*models.MeasureSeries, error) {
	if locationID == "" {
		return nil, errors.ValidationError("location id is required")
	}
	if property == "" {
		return nil, errors.ValidationError("property is required")
	}

	raw, err := f.backend.GetMeasureHistory(ctx, locationID, property, params)
	if err != nil {
		return nil, err
	}
	return transform.ToMeasureSeries(raw, locationID, property)
}

// ListActivations returns all activations, optionally filtered
func (f *Facade) ListActivations(ctx context.Context, filter ActivationFilter) ([]models.Activation, error) {
	raw, err := f.backend.ListActivations(ctx)
	if err != nil {
		return nil, err
	}

	acts, err := transform.ToActivations(raw)
	if err != nil {
		return nil, err
	}

	if filter.LocationID == "" && len(filter.Statuses) == 0 {
		return acts, nil
	}

	filtered := make([]models.Activation, 0, len(acts))
	for _, act := range acts {
		if filter.matches(act) {
			filtered = append(filtered, act)
		}
	}
	return filtered, nil
}

// CreateActivation submits a new activation and returns the canonical
// pending entity with its connector-assigned id.
func (f *Facade) CreateActivation(ctx context.Context, req models.ActivationRequest) (*models.Activation, error) {
	payload, act, err := transform.FromActivationRequest(req)
	if err != nil {
		return nil, err
	}

	if _, err := f.backend.CreateActivation(ctx, payload); err != nil {
		return nil, err
	}

	f.logger.Info("Activation submitted",
		logging.Field{Key: "activation_id", Value: act.ID},
		logging.Field{Key: "location_id", Value: act.LocationID},
	)

	return act, nil
}

// SetProperty writes one allow-listed property of a Thing. Writability and
// value type are both checked before any backend call.
func (f *Facade) SetProperty(ctx context.Context, req models.PropertyWriteRequest) (*models.PropertyWriteAck, error) {
	if req.ThingID == "" {
		return nil, errors.ValidationError("thing_id is required")
	}
	if !upstream.IsWritable(req.PropertyName) {
		return nil, errors.ValidationError(fmt.Sprintf(
			"property %q is not allowed; allowed properties: %s",
			req.PropertyName, strings.Join(upstream.WritableProperties(), ", "),
		))
	}
	if err := transform.ValidateWriteValue(req.PropertyName, req.Value); err != nil {
		return nil, err
	}

	if _, err := f.backend.SetProperty(ctx, req.ThingID, req.PropertyName, req.Value); err != nil {
		return nil, err
	}

	return transform.ToPropertyWriteAck(req), nil
}

// narrowTree finds the subtree of the given kind and id, searching depth
// first. Returns nil when no such node exists.
func narrowTree(loc *models.Location, kind models.LocationKind, id string) *models.Location {
	if loc.Kind == kind && loc.ID == id {
		return loc
	}
	for i := range loc.Children {
		if found := narrowTree(&loc.Children[i], kind, id); found != nil {
			return found
		}
	}
	return nil
}
