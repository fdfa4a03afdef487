package model

import "time"

// Geofence is a circular region used to test whether a device position is
// "on site". Each project defines one around its site.
type Geofence struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	RadiusMeters float64 `json:"radius_meters"`
}

// Position is a single GPS fix from a crew device. Transient, not persisted.
type Position struct {
	Lat            float64   `json:"lat"`
	Lng            float64   `json:"lng"`
	AccuracyMeters float64   `json:"accuracy_meters"`
	Timestamp      time.Time `json:"timestamp"`
}

// GeofenceEventType is the kind of geofence state transition.
type GeofenceEventType string

const (
	GeofenceEnter GeofenceEventType = "enter"
	GeofenceExit  GeofenceEventType = "exit"
)

// GeofenceEvent is raised when a position sequence crosses a fence boundary.
type GeofenceEvent struct {
	Type     GeofenceEventType `json:"type"`
	Geofence Geofence          `json:"geofence"`
}

// TrustReport annotates a clock-in with a heuristic confidence value in
// [0.1, 1.0] plus the reasons that lowered it. Advisory only: it is reported,
// never thrown, and never blocks the clock-in.
type TrustReport struct {
	Score   float64           `json:"score"`
	Reasons map[string]string `json:"reasons,omitempty"`
}

// SiteAlert is the message published to NATS when a crew member enters or
// exits a project's site geofence.
type SiteAlert struct {
	CompanyID   uint              `json:"company_id"`
	UserID      uint              `json:"user_id"`
	UserName    string            `json:"user_name"`
	ProjectID   uint              `json:"project_id"`
	ProjectName string            `json:"project_name"`
	EventType   GeofenceEventType `json:"event_type"`
	Lat         float64           `json:"lat"`
	Lng         float64           `json:"lng"`
	Timestamp   int64             `json:"timestamp"`
}

// CrewPosition is a location update from a crew device as carried on the
// uplink subject.
type CrewPosition struct {
	UserID         uint    `json:"user_id"`
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
	AccuracyMeters float64 `json:"accuracy_meters"`
	Timestamp      int64   `json:"timestamp"`
}
