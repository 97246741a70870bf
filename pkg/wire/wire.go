// Package wire defines the JSON message envelope exchanged with the sensing
// backend over the push channel, plus the payload shapes for every message
// kind. Field names are snake_case to match the backend.
package wire

import (
	"encoding/json"
	"fmt"
)

// Message kinds carried in the envelope's event field.
const (
	// Inbound
	KindTrackingUpdate = "coordinate_tracking_update"
	KindQueryResponse  = "query_response"
	KindAlert          = "system_alert"

	// Outbound
	KindQuerySubmit      = "submit_query"
	KindTelemetryRequest = "request_telemetry"
)

// Envelope frames every channel message: {"event": "...", "data": {...}}.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope marshals payload into an Envelope of the given kind.
func NewEnvelope(kind string, payload any) (Envelope, error) {
	if payload == nil {
		return Envelope{Event: kind}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("wire: marshal %s payload: %w", kind, err)
	}
	return Envelope{Event: kind, Data: data}, nil
}

// Entity is one tracked object as reported by the backend, in source pixel
// space. CenterPixel and RealWorld come from the backend's geometry service
// and may be absent.
type Entity struct {
	ID          uint64      `json:"id"`
	X           float64     `json:"x"`
	Y           float64     `json:"y"`
	Width       float64     `json:"width"`
	Height      float64     `json:"height"`
	Confidence  float64     `json:"confidence"`
	Active      bool        `json:"active"`
	Age         uint        `json:"age"`
	Color       [3]uint8    `json:"color"`
	CenterPixel *[2]float64 `json:"center_pixel,omitempty"`
	RealWorld   *WorldPoint `json:"real_world,omitempty"`
}

// WorldPoint is a position in calibrated real-world coordinates.
type WorldPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TrackingUpdate is the payload of KindTrackingUpdate, pushed at roughly
// ten events per second.
type TrackingUpdate struct {
	ActiveCount uint     `json:"active_count"`
	FPS         float64  `json:"fps"`
	People      []Entity `json:"people"`
}

// QueryResponse is the payload of KindQueryResponse. Replies carry no
// correlation identifier; the bridge's single-pending-query rule makes the
// association unambiguous.
type QueryResponse struct {
	Text string `json:"text"`
}

// Alert severities.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeveritySuccess = "success"
)

// Alert is the payload of KindAlert: an unsolicited, system-generated
// notification not tied to any query.
type Alert struct {
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// QueryContext is a small snapshot of tracking state attached to outbound
// queries so the backend can answer questions about the current scene.
type QueryContext struct {
	ActiveCount uint    `json:"active_count"`
	FPS         float64 `json:"fps"`
}

// QuerySubmit is the payload of KindQuerySubmit.
type QuerySubmit struct {
	Text    string       `json:"text"`
	Context QueryContext `json:"context"`
}
