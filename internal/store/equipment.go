package store

import (
	"opensite/api/internal/model"
)

// CreateEquipment registers a company asset.
func (s *Store) CreateEquipment(actorID uint, name, equipmentType string) (*model.Equipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}
	if err := s.require(actor, model.PermissionManageEquipment); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, &ValidationError{Msg: "equipment name is required"}
	}

	now := s.now()
	eq := &model.Equipment{
		ID:        s.nextID(),
		CompanyID: actor.CompanyID,
		Name:      name,
		Type:      equipmentType,
		Status:    model.EquipmentAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.equipment[eq.ID] = eq
	s.appendAudit(actor, model.AuditEquipmentCreated, &model.AuditTarget{Type: "equipment", ID: eq.ID, Name: eq.Name}, nil)

	copied := *eq
	return &copied, nil
}

// AssignEquipment puts an available asset to use on a project.
func (s *Store) AssignEquipment(actorID, equipmentID, projectID uint) (*model.Equipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}
	if err := s.require(actor, model.PermissionManageEquipment); err != nil {
		return nil, err
	}

	eq, err := s.equipmentByID(actor, equipmentID)
	if err != nil {
		return nil, err
	}
	project, err := s.project(actor, projectID)
	if err != nil {
		return nil, err
	}
	if eq.Status != model.EquipmentAvailable {
		return nil, &TransitionError{Entity: "equipment", From: string(eq.Status), To: string(model.EquipmentInUse)}
	}

	eq.Status = model.EquipmentInUse
	eq.ProjectID = &project.ID
	eq.UpdatedAt = s.now()
	s.appendAudit(actor, model.AuditEquipmentAssigned, &model.AuditTarget{Type: "equipment", ID: eq.ID, Name: eq.Name}, &project.ID)

	copied := *eq
	return &copied, nil
}

// ReleaseEquipment returns an in-use asset to the pool.
func (s *Store) ReleaseEquipment(actorID, equipmentID uint) (*model.Equipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}
	if err := s.require(actor, model.PermissionManageEquipment); err != nil {
		return nil, err
	}

	eq, err := s.equipmentByID(actor, equipmentID)
	if err != nil {
		return nil, err
	}
	if eq.Status != model.EquipmentInUse {
		return nil, &TransitionError{Entity: "equipment", From: string(eq.Status), To: string(model.EquipmentAvailable)}
	}

	projectID := eq.ProjectID
	eq.Status = model.EquipmentAvailable
	eq.ProjectID = nil
	eq.UpdatedAt = s.now()
	s.appendAudit(actor, model.AuditEquipmentReleased, &model.AuditTarget{Type: "equipment", ID: eq.ID, Name: eq.Name}, projectID)

	copied := *eq
	return &copied, nil
}

// SetEquipmentMaintenance toggles an asset between AVAILABLE and MAINTENANCE.
func (s *Store) SetEquipmentMaintenance(actorID, equipmentID uint, underMaintenance bool) (*model.Equipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}
	if err := s.require(actor, model.PermissionManageEquipment); err != nil {
		return nil, err
	}

	eq, err := s.equipmentByID(actor, equipmentID)
	if err != nil {
		return nil, err
	}

	target := model.EquipmentAvailable
	if underMaintenance {
		target = model.EquipmentMaintenance
	}
	// In-use assets must be released before maintenance.
	if eq.Status == model.EquipmentInUse || eq.Status == target {
		return nil, &TransitionError{Entity: "equipment", From: string(eq.Status), To: string(target)}
	}

	eq.Status = target
	eq.UpdatedAt = s.now()
	s.appendAudit(actor, model.AuditEquipmentStatusUpdated, &model.AuditTarget{Type: "equipment", ID: eq.ID, Name: eq.Name}, nil)

	copied := *eq
	return &copied, nil
}

// ListEquipment returns the company's assets.
func (s *Store) ListEquipment(actorID uint) ([]model.Equipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}

	var items []model.Equipment
	for _, eq := range s.equipment {
		if actor.Role == model.RolePrincipalAdmin || eq.CompanyID == actor.CompanyID {
			items = append(items, *eq)
		}
	}
	sortByID(items, func(e model.Equipment) uint { return e.ID })
	return items, nil
}

// equipmentByID locates an asset within the actor's tenant. Call with s.mu held.
func (s *Store) equipmentByID(actor *model.User, equipmentID uint) (*model.Equipment, error) {
	eq, ok := s.equipment[equipmentID]
	if !ok {
		return nil, &NotFoundError{Resource: "equipment", ID: equipmentID}
	}
	if err := s.sameTenant(actor, eq.CompanyID); err != nil {
		return nil, &NotFoundError{Resource: "equipment", ID: equipmentID}
	}
	return eq, nil
}
