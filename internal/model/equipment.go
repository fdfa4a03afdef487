package model

import "time"

// EquipmentStatus is the availability state of a piece of equipment.
type EquipmentStatus string

const (
	EquipmentAvailable   EquipmentStatus = "AVAILABLE"
	EquipmentInUse       EquipmentStatus = "IN_USE"
	EquipmentMaintenance EquipmentStatus = "MAINTENANCE"
)

// Equipment is a company asset assignable to at most one project at a time.
type Equipment struct {
	ID        uint            `json:"id"`
	CompanyID uint            `json:"company_id"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Status    EquipmentStatus `json:"status"`
	ProjectID *uint           `json:"project_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
