package store

import (
	"opensite/api/internal/model"
)

// incidentTransitions is the allowed incident handling state machine.
var incidentTransitions = map[model.IncidentStatus][]model.IncidentStatus{
	model.IncidentReported:      {model.IncidentInvestigating},
	model.IncidentInvestigating: {model.IncidentResolved},
}

// ReportIncident records a safety incident on a project site.
func (s *Store) ReportIncident(actorID, projectID uint, severity model.IncidentSeverity, description string) (*model.SafetyIncident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}
	if err := s.require(actor, model.PermissionReportIncident); err != nil {
		return nil, err
	}

	project, err := s.project(actor, projectID)
	if err != nil {
		return nil, err
	}
	if description == "" {
		return nil, &ValidationError{Msg: "incident description is required"}
	}
	switch severity {
	case model.SeverityLow, model.SeverityMedium, model.SeverityHigh, model.SeverityCritical:
	default:
		return nil, &ValidationError{Msg: "unknown severity " + string(severity)}
	}

	now := s.now()
	incident := &model.SafetyIncident{
		ID:          s.nextID(),
		CompanyID:   project.CompanyID,
		ProjectID:   project.ID,
		ReporterID:  actor.ID,
		Severity:    severity,
		Description: description,
		Status:      model.IncidentReported,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.incidents[incident.ID] = incident
	s.appendAudit(actor, model.AuditIncidentReported, &model.AuditTarget{Type: "incident", ID: incident.ID}, &project.ID)

	copied := *incident
	return &copied, nil
}

// UpdateIncidentStatus advances an incident through its handling lifecycle.
func (s *Store) UpdateIncidentStatus(actorID, incidentID uint, status model.IncidentStatus) (*model.SafetyIncident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}
	if err := s.require(actor, model.PermissionManageSafety); err != nil {
		return nil, err
	}

	incident, ok := s.incidents[incidentID]
	if !ok {
		return nil, &NotFoundError{Resource: "incident", ID: incidentID}
	}
	if err := s.sameTenant(actor, incident.CompanyID); err != nil {
		return nil, &NotFoundError{Resource: "incident", ID: incidentID}
	}
	if !allowedTransition(incidentTransitions[incident.Status], status) {
		return nil, &TransitionError{Entity: "incident", From: string(incident.Status), To: string(status)}
	}

	incident.Status = status
	incident.UpdatedAt = s.now()
	s.appendAudit(actor, model.AuditIncidentStatusUpdated, &model.AuditTarget{Type: "incident", ID: incident.ID}, &incident.ProjectID)

	copied := *incident
	return &copied, nil
}

// ListIncidents returns the company's safety incidents.
func (s *Store) ListIncidents(actorID uint) ([]model.SafetyIncident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}

	var incidents []model.SafetyIncident
	for _, inc := range s.incidents {
		if actor.Role == model.RolePrincipalAdmin || inc.CompanyID == actor.CompanyID {
			incidents = append(incidents, *inc)
		}
	}
	sortByID(incidents, func(i model.SafetyIncident) uint { return i.ID })
	return incidents, nil
}
