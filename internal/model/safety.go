package model

import "time"

// IncidentSeverity classifies how serious a safety incident is.
type IncidentSeverity string

const (
	SeverityLow      IncidentSeverity = "LOW"
	SeverityMedium   IncidentSeverity = "MEDIUM"
	SeverityHigh     IncidentSeverity = "HIGH"
	SeverityCritical IncidentSeverity = "CRITICAL"
)

// IncidentStatus is the handling state of a safety incident.
//
// REPORTED -> INVESTIGATING -> RESOLVED.
type IncidentStatus string

const (
	IncidentReported      IncidentStatus = "REPORTED"
	IncidentInvestigating IncidentStatus = "INVESTIGATING"
	IncidentResolved      IncidentStatus = "RESOLVED"
)

// SafetyIncident is a reported incident on a project site.
type SafetyIncident struct {
	ID          uint             `json:"id"`
	CompanyID   uint             `json:"company_id"`
	ProjectID   uint             `json:"project_id"`
	ReporterID  uint             `json:"reporter_id"`
	Severity    IncidentSeverity `json:"severity"`
	Description string           `json:"description"`
	Status      IncidentStatus   `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}
