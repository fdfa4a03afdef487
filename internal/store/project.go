package store

import (
	"time"

	"opensite/api/internal/model"
)

// projectTransitions is the allowed project status state machine.
var projectTransitions = map[model.ProjectStatus][]model.ProjectStatus{
	model.ProjectPlanning: {model.ProjectActive},
	model.ProjectActive:   {model.ProjectOnHold, model.ProjectCompleted},
	model.ProjectOnHold:   {model.ProjectActive, model.ProjectCompleted},
}

// CreateProject creates a project with its site geofence.
func (s *Store) CreateProject(actorID uint, name, description string, lat, lng, radiusMeters float64, startDate time.Time) (*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}
	if err := s.require(actor, model.PermissionManageProjects); err != nil {
		return nil, err
	}

	if name == "" {
		return nil, &ValidationError{Msg: "project name is required"}
	}
	if lat < -90 || lat > 90 {
		return nil, &ValidationError{Msg: "invalid latitude"}
	}
	if lng < -180 || lng > 180 {
		return nil, &ValidationError{Msg: "invalid longitude"}
	}
	if radiusMeters <= 0 {
		return nil, &ValidationError{Msg: "radius must be positive"}
	}

	now := s.now()
	project := &model.Project{
		ID:           s.nextID(),
		CompanyID:    actor.CompanyID,
		Name:         name,
		Description:  description,
		Status:       model.ProjectPlanning,
		Lat:          lat,
		Lng:          lng,
		RadiusMeters: radiusMeters,
		StartDate:    startDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.projects[project.ID] = project
	s.appendAudit(actor, model.AuditProjectCreated, &model.AuditTarget{Type: "project", ID: project.ID, Name: project.Name}, &project.ID)

	copied := *project
	return &copied, nil
}

// UpdateProjectStatus moves a project through its lifecycle.
func (s *Store) UpdateProjectStatus(actorID, projectID uint, status model.ProjectStatus) (*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}
	if err := s.require(actor, model.PermissionManageProjects); err != nil {
		return nil, err
	}

	project, err := s.project(actor, projectID)
	if err != nil {
		return nil, err
	}
	if !allowedTransition(projectTransitions[project.Status], status) {
		return nil, &TransitionError{Entity: "project", From: string(project.Status), To: string(status)}
	}

	project.Status = status
	if status == model.ProjectCompleted {
		now := s.now()
		project.EndDate = &now
	}
	project.UpdatedAt = s.now()
	s.appendAudit(actor, model.AuditProjectStatusUpdated, &model.AuditTarget{Type: "project", ID: project.ID, Name: project.Name}, &project.ID)

	copied := *project
	return &copied, nil
}

// ListProjects returns the projects of the actor's company.
func (s *Store) ListProjects(actorID uint) ([]model.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}

	var projects []model.Project
	for _, p := range s.projects {
		if actor.Role == model.RolePrincipalAdmin || p.CompanyID == actor.CompanyID {
			projects = append(projects, *p)
		}
	}
	sortByID(projects, func(p model.Project) uint { return p.ID })
	return projects, nil
}

// GetProject returns a project visible to the actor.
func (s *Store) GetProject(actorID, projectID uint) (*model.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}
	project, err := s.project(actor, projectID)
	if err != nil {
		return nil, err
	}
	copied := *project
	return &copied, nil
}

// ActiveSiteGeofences returns the site geofences of a company's active
// projects. Used by the crew tracker; not permission-gated.
func (s *Store) ActiveSiteGeofences(companyID uint) []model.Geofence {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var fences []model.Geofence
	for _, p := range s.projects {
		if p.CompanyID == companyID && p.Status == model.ProjectActive {
			fences = append(fences, p.SiteGeofence())
		}
	}
	sortByID(fences, func(g model.Geofence) uint { return g.ID })
	return fences
}

// project locates a project within the actor's tenant. Call with s.mu held.
func (s *Store) project(actor *model.User, projectID uint) (*model.Project, error) {
	project, ok := s.projects[projectID]
	if !ok {
		return nil, &NotFoundError{Resource: "project", ID: projectID}
	}
	if err := s.sameTenant(actor, project.CompanyID); err != nil {
		return nil, &NotFoundError{Resource: "project", ID: projectID}
	}
	return project, nil
}

// allowedTransition reports whether to is in the allowed set.
func allowedTransition[T comparable](allowed []T, to T) bool {
	for _, t := range allowed {
		if t == to {
			return true
		}
	}
	return false
}
