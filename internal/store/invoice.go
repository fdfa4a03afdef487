package store

import (
	"time"

	"opensite/api/internal/model"
)

// invoiceTransitions is the allowed invoice status state machine.
var invoiceTransitions = map[model.InvoiceStatus][]model.InvoiceStatus{
	model.InvoiceDraft:   {model.InvoiceSent},
	model.InvoiceSent:    {model.InvoicePaid, model.InvoiceOverdue},
	model.InvoiceOverdue: {model.InvoicePaid},
}

// CreateInvoice drafts an invoice against a project.
func (s *Store) CreateInvoice(actorID, projectID uint, clientName string, amount float64, dueDate time.Time) (*model.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}
	if err := s.require(actor, model.PermissionManageFinancials); err != nil {
		return nil, err
	}

	project, err := s.project(actor, projectID)
	if err != nil {
		return nil, err
	}
	if clientName == "" {
		return nil, &ValidationError{Msg: "client name is required"}
	}
	if amount <= 0 {
		return nil, &ValidationError{Msg: "amount must be positive"}
	}

	now := s.now()
	inv := &model.Invoice{
		ID:         s.nextID(),
		CompanyID:  project.CompanyID,
		ProjectID:  project.ID,
		ClientName: clientName,
		Amount:     amount,
		Status:     model.InvoiceDraft,
		DueDate:    dueDate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.invoices[inv.ID] = inv
	s.appendAudit(actor, model.AuditInvoiceCreated, &model.AuditTarget{Type: "invoice", ID: inv.ID, Name: clientName}, &project.ID)

	copied := *inv
	return &copied, nil
}

// UpdateInvoiceStatus moves an invoice through its billing lifecycle.
func (s *Store) UpdateInvoiceStatus(actorID, invoiceID uint, status model.InvoiceStatus) (*model.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}
	if err := s.require(actor, model.PermissionManageFinancials); err != nil {
		return nil, err
	}

	inv, ok := s.invoices[invoiceID]
	if !ok {
		return nil, &NotFoundError{Resource: "invoice", ID: invoiceID}
	}
	if err := s.sameTenant(actor, inv.CompanyID); err != nil {
		return nil, &NotFoundError{Resource: "invoice", ID: invoiceID}
	}
	if !allowedTransition(invoiceTransitions[inv.Status], status) {
		return nil, &TransitionError{Entity: "invoice", From: string(inv.Status), To: string(status)}
	}

	inv.Status = status
	if status == model.InvoicePaid {
		now := s.now()
		inv.PaidAt = &now
	}
	inv.UpdatedAt = s.now()
	s.appendAudit(actor, model.AuditInvoiceStatusUpdated, &model.AuditTarget{Type: "invoice", ID: inv.ID, Name: inv.ClientName}, &inv.ProjectID)

	copied := *inv
	return &copied, nil
}

// ListInvoices returns the company's invoices.
func (s *Store) ListInvoices(actorID uint) ([]model.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}
	if err := s.require(actor, model.PermissionManageFinancials); err != nil {
		return nil, err
	}

	var invoices []model.Invoice
	for _, inv := range s.invoices {
		if actor.Role == model.RolePrincipalAdmin || inv.CompanyID == actor.CompanyID {
			invoices = append(invoices, *inv)
		}
	}
	sortByID(invoices, func(i model.Invoice) uint { return i.ID })
	return invoices, nil
}
