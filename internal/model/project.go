package model

import "time"

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "PLANNING"
	ProjectActive    ProjectStatus = "ACTIVE"
	ProjectOnHold    ProjectStatus = "ON_HOLD"
	ProjectCompleted ProjectStatus = "COMPLETED"
)

// Project is a construction project with a circular site geofence used for
// presence tracking and clock-in trust scoring.
type Project struct {
	ID           uint          `json:"id"`
	CompanyID    uint          `json:"company_id"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	Status       ProjectStatus `json:"status"`
	Lat          float64       `json:"lat"`
	Lng          float64       `json:"lng"`
	RadiusMeters float64       `json:"radius_meters"`
	StartDate    time.Time     `json:"start_date"`
	EndDate      *time.Time    `json:"end_date,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// SiteGeofence returns the project's site as a geofence snapshot.
func (p *Project) SiteGeofence() Geofence {
	return Geofence{
		ID:           p.ID,
		Name:         p.Name,
		Lat:          p.Lat,
		Lng:          p.Lng,
		RadiusMeters: p.RadiusMeters,
	}
}
