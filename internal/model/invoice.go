package model

import "time"

// InvoiceStatus is the billing state of an invoice.
//
// DRAFT -> SENT -> PAID | OVERDUE; OVERDUE -> PAID.
type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "DRAFT"
	InvoiceSent    InvoiceStatus = "SENT"
	InvoicePaid    InvoiceStatus = "PAID"
	InvoiceOverdue InvoiceStatus = "OVERDUE"
)

// Invoice is a client invoice attached to a project.
type Invoice struct {
	ID         uint          `json:"id"`
	CompanyID  uint          `json:"company_id"`
	ProjectID  uint          `json:"project_id"`
	ClientName string        `json:"client_name"`
	Amount     float64       `json:"amount"`
	Status     InvoiceStatus `json:"status"`
	DueDate    time.Time     `json:"due_date"`
	PaidAt     *time.Time    `json:"paid_at,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}
