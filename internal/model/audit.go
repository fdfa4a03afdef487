package model

import "time"

// AuditAction identifies what a mutating operation did.
type AuditAction string

const (
	AuditUserCreated            AuditAction = "USER_CREATED"
	AuditUserRoleUpdated        AuditAction = "USER_ROLE_UPDATED"
	AuditUserDeactivated        AuditAction = "USER_DEACTIVATED"
	AuditProjectCreated         AuditAction = "PROJECT_CREATED"
	AuditProjectStatusUpdated   AuditAction = "PROJECT_STATUS_UPDATED"
	AuditTimesheetSubmitted     AuditAction = "TIMESHEET_SUBMITTED"
	AuditTimesheetClockedOut    AuditAction = "TIMESHEET_CLOCKED_OUT"
	AuditTimesheetApproved      AuditAction = "TIMESHEET_APPROVED"
	AuditTimesheetRejected      AuditAction = "TIMESHEET_REJECTED"
	AuditDocumentUploadStarted  AuditAction = "DOCUMENT_UPLOAD_STARTED"
	AuditDocumentFinalized      AuditAction = "DOCUMENT_FINALIZED"
	AuditTodoCreated            AuditAction = "TODO_CREATED"
	AuditTodoUpdated            AuditAction = "TODO_UPDATED"
	AuditEquipmentCreated       AuditAction = "EQUIPMENT_CREATED"
	AuditEquipmentAssigned      AuditAction = "EQUIPMENT_ASSIGNED"
	AuditEquipmentReleased      AuditAction = "EQUIPMENT_RELEASED"
	AuditEquipmentStatusUpdated AuditAction = "EQUIPMENT_STATUS_UPDATED"
	AuditInvoiceCreated         AuditAction = "INVOICE_CREATED"
	AuditInvoiceStatusUpdated   AuditAction = "INVOICE_STATUS_UPDATED"
	AuditIncidentReported       AuditAction = "INCIDENT_REPORTED"
	AuditIncidentStatusUpdated  AuditAction = "INCIDENT_STATUS_UPDATED"
)

// AuditTarget describes the entity a mutating operation acted on.
type AuditTarget struct {
	Type string `json:"type"`
	ID   uint   `json:"id"`
	Name string `json:"name,omitempty"`
}

// AuditLogEntry is a who-did-what-to-what record. Entries are append-only,
// kept newest first, and never written for calls that failed.
type AuditLogEntry struct {
	ID        uint         `json:"id"`
	ActorID   uint         `json:"actor_id"`
	ActorName string       `json:"actor_name"`
	Action    AuditAction  `json:"action"`
	Target    *AuditTarget `json:"target,omitempty"`
	ProjectID *uint        `json:"project_id,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}
