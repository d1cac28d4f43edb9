// Package models defines the connector's canonical entities, independent of
// the upstream platform's wire format.
package models

// LocationKind identifies a node's level in the site hierarchy
type LocationKind string

const (
	KindLocation LocationKind = "location"
	KindAsset    LocationKind = "asset"
	KindCircuit  LocationKind = "circuit"
)

// PropertyValue is a single observation of a named property
type PropertyValue struct {
	Timestamp string      `json:"timestamp"`
	Value     interface{} `json:"value"`
	Quality   *string     `json:"quality"`
}

// Location is a node in the canonical site hierarchy. Children always holds
// a slice, never nil, so consumers can range without nil checks.
type Location struct {
	ID         string                   `json:"id"`
	Name       string                   `json:"name"`
	Kind       LocationKind             `json:"kind"`
	Children   []Location               `json:"children"`
	Properties map[string]PropertyValue `json:"properties,omitempty"`
}

// Measure is one observation point in a history query response
type Measure struct {
	LocationID   string      `json:"location_id"`
	PropertyName string      `json:"property_name"`
	Timestamp    string      `json:"timestamp"`
	Value        interface{} `json:"value"`
	Quality      *string     `json:"quality"`
}

// MeasureSeries is an ordered sequence of measures for one property of one
// location. Order is upstream order; the connector never re-sorts.
type MeasureSeries struct {
	LocationID   string    `json:"location_id"`
	PropertyName string    `json:"property_name"`
	Points       []Measure `json:"points"`
}

// ActivationStatus is the canonical lifecycle state of an activation
type ActivationStatus string

const (
	ActivationPending  ActivationStatus = "pending"
	ActivationApplied  ActivationStatus = "applied"
	ActivationRejected ActivationStatus = "rejected"
)

// Activation is a requested setpoint change against a location
type Activation struct {
	ID             string           `json:"id"`
	LocationID     string           `json:"location_id"`
	RequestedValue interface{}      `json:"requested_value"`
	Status         ActivationStatus `json:"status"`
	CreatedAt      string           `json:"created_at"`
}

// ActivationRequest is the caller's payload for creating an activation
type ActivationRequest struct {
	LocationID     string      `json:"location_id"`
	RequestedValue interface{} `json:"requested_value"`
	CreatedAt      string      `json:"created_at,omitempty"`
}

// PropertyWriteRequest is a transient request to set a writable Thing property
type PropertyWriteRequest struct {
	ThingID      string      `json:"thing_id"`
	PropertyName string      `json:"property_name"`
	Value        interface{} `json:"value"`
}

// PropertyWriteAck confirms an applied property write
type PropertyWriteAck struct {
	ThingID      string      `json:"thing_id"`
	PropertyName string      `json:"property_name"`
	Value        interface{} `json:"value"`
	Status       string      `json:"status"`
}

// ErrorDetail carries field-level information inside an error body
type ErrorDetail struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ErrorInfo is the inner object of the structured error body
type ErrorInfo struct {
	Code    int           `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// ErrorBody is the structured JSON error response shape
type ErrorBody struct {
	Error ErrorInfo `json:"error"`
}
