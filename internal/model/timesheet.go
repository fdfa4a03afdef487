package model

import "time"

// TimesheetStatus is the review state of a time entry.
//
// PENDING -> APPROVED | REJECTED. A clock-in with a low trust score is
// created as FLAGGED instead of PENDING; FLAGGED resolves the same way.
// APPROVED and REJECTED are terminal.
type TimesheetStatus string

const (
	TimesheetPending  TimesheetStatus = "PENDING"
	TimesheetApproved TimesheetStatus = "APPROVED"
	TimesheetRejected TimesheetStatus = "REJECTED"
	TimesheetFlagged  TimesheetStatus = "FLAGGED"
)

// Timesheet is a single clock-in/clock-out record. The trust score is derived
// at clock-in from the distance to the project site and the GPS accuracy; it
// annotates the record for manager review and never blocks the clock-in.
type Timesheet struct {
	ID              uint              `json:"id"`
	CompanyID       uint              `json:"company_id"`
	ProjectID       uint              `json:"project_id"`
	UserID          uint              `json:"user_id"`
	ClockIn         time.Time         `json:"clock_in"`
	ClockOut        *time.Time        `json:"clock_out,omitempty"`
	Status          TimesheetStatus   `json:"status"`
	TrustScore      float64           `json:"trust_score"`
	TrustReasons    map[string]string `json:"trust_reasons,omitempty"`
	RejectionReason string            `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}
