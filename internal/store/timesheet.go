package store

import (
	"opensite/api/internal/geo"
	"opensite/api/internal/model"
)

// flagThreshold is the trust score below which a clock-in is created as
// FLAGGED instead of PENDING.
const flagThreshold = 0.5

// ClockIn opens a timesheet for the actor on a project. When a position is
// supplied, a trust score is derived from the distance to the site geofence
// and the GPS accuracy; a low score flags the record for manager review but
// never blocks the clock-in.
func (s *Store) ClockIn(actorID, projectID uint, pos *model.Position) (*model.Timesheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}
	if err := s.require(actor, model.PermissionSubmitTimesheet); err != nil {
		return nil, err
	}

	project, err := s.project(actor, projectID)
	if err != nil {
		return nil, err
	}
	for _, ts := range s.timesheets {
		if ts.UserID == actor.ID && ts.ClockOut == nil {
			return nil, &ValidationError{Msg: "already clocked in"}
		}
	}

	trust := model.TrustReport{Score: 1.0}
	if pos != nil {
		trust = geo.LocationTrust(*pos, project.SiteGeofence())
	}
	status := model.TimesheetPending
	if trust.Score < flagThreshold {
		status = model.TimesheetFlagged
	}

	now := s.now()
	ts := &model.Timesheet{
		ID:           s.nextID(),
		CompanyID:    project.CompanyID,
		ProjectID:    project.ID,
		UserID:       actor.ID,
		ClockIn:      now,
		Status:       status,
		TrustScore:   trust.Score,
		TrustReasons: trust.Reasons,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.timesheets[ts.ID] = ts
	s.appendAudit(actor, model.AuditTimesheetSubmitted, &model.AuditTarget{Type: "timesheet", ID: ts.ID, Name: project.Name}, &project.ID)

	copied := *ts
	return &copied, nil
}

// ClockOut closes the actor's open timesheet.
func (s *Store) ClockOut(actorID, timesheetID uint) (*model.Timesheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}
	if err := s.require(actor, model.PermissionSubmitTimesheet); err != nil {
		return nil, err
	}

	ts, ok := s.timesheets[timesheetID]
	if !ok || ts.UserID != actor.ID {
		return nil, &NotFoundError{Resource: "timesheet", ID: timesheetID}
	}
	if ts.ClockOut != nil {
		return nil, &ValidationError{Msg: "already clocked out"}
	}

	now := s.now()
	ts.ClockOut = &now
	ts.UpdatedAt = now
	s.appendAudit(actor, model.AuditTimesheetClockedOut, &model.AuditTarget{Type: "timesheet", ID: ts.ID}, &ts.ProjectID)

	copied := *ts
	return &copied, nil
}

// ReviewTimesheet approves or rejects a pending or flagged timesheet.
// Rejection requires a reason, persisted on the record. APPROVED and
// REJECTED are terminal.
func (s *Store) ReviewTimesheet(actorID, timesheetID uint, status model.TimesheetStatus, reason string) (*model.Timesheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}
	if err := s.require(actor, model.PermissionManageTimesheets); err != nil {
		return nil, err
	}

	ts, ok := s.timesheets[timesheetID]
	if !ok {
		return nil, &NotFoundError{Resource: "timesheet", ID: timesheetID}
	}
	if err := s.sameTenant(actor, ts.CompanyID); err != nil {
		return nil, &NotFoundError{Resource: "timesheet", ID: timesheetID}
	}

	if status != model.TimesheetApproved && status != model.TimesheetRejected {
		return nil, &TransitionError{Entity: "timesheet", From: string(ts.Status), To: string(status)}
	}
	if ts.Status != model.TimesheetPending && ts.Status != model.TimesheetFlagged {
		return nil, &TransitionError{Entity: "timesheet", From: string(ts.Status), To: string(status)}
	}
	if status == model.TimesheetRejected && reason == "" {
		return nil, &ValidationError{Msg: "rejection requires a reason"}
	}

	action := model.AuditTimesheetApproved
	if status == model.TimesheetRejected {
		action = model.AuditTimesheetRejected
		ts.RejectionReason = reason
	}
	ts.Status = status
	ts.UpdatedAt = s.now()
	s.appendAudit(actor, action, &model.AuditTarget{Type: "timesheet", ID: ts.ID}, &ts.ProjectID)

	copied := *ts
	return &copied, nil
}

// TimesheetFilter narrows ListTimesheets results. Zero values match all.
type TimesheetFilter struct {
	ProjectID uint
	UserID    uint
	Status    model.TimesheetStatus
}

// ListTimesheets returns the timesheets of the actor's company. Actors
// without the timesheet management permission only see their own records.
func (s *Store) ListTimesheets(actorID uint, filter TimesheetFilter) ([]model.Timesheet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}
	ownOnly := !actor.Role.HasPermission(model.PermissionManageTimesheets)

	var sheets []model.Timesheet
	for _, ts := range s.timesheets {
		if actor.Role != model.RolePrincipalAdmin && ts.CompanyID != actor.CompanyID {
			continue
		}
		if ownOnly && ts.UserID != actor.ID {
			continue
		}
		if filter.ProjectID != 0 && ts.ProjectID != filter.ProjectID {
			continue
		}
		if filter.UserID != 0 && ts.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && ts.Status != filter.Status {
			continue
		}
		sheets = append(sheets, *ts)
	}
	sortByID(sheets, func(t model.Timesheet) uint { return t.ID })
	return sheets, nil
}

// GetTimesheet returns a timesheet visible to the actor.
func (s *Store) GetTimesheet(actorID, timesheetID uint) (*model.Timesheet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}
	ts, ok := s.timesheets[timesheetID]
	if !ok {
		return nil, &NotFoundError{Resource: "timesheet", ID: timesheetID}
	}
	if err := s.sameTenant(actor, ts.CompanyID); err != nil {
		return nil, &NotFoundError{Resource: "timesheet", ID: timesheetID}
	}
	if !actor.Role.HasPermission(model.PermissionManageTimesheets) && ts.UserID != actor.ID {
		return nil, &NotFoundError{Resource: "timesheet", ID: timesheetID}
	}
	copied := *ts
	return &copied, nil
}
