package store

import (
	"strings"

	"opensite/api/internal/model"
)

// CreateUser adds a user to the actor's company. The password must already be
// hashed by the caller.
func (s *Store) CreateUser(actorID uint, username, passwordHash, name string, role model.Role) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}
	if err := s.require(actor, model.PermissionManageUsers); err != nil {
		return nil, err
	}

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || name == "" {
		return nil, &ValidationError{Msg: "username and name are required"}
	}
	if !role.Valid() {
		return nil, &ValidationError{Msg: "unknown role " + string(role)}
	}
	// Only a principal admin can mint another principal admin.
	if role == model.RolePrincipalAdmin && actor.Role != model.RolePrincipalAdmin {
		return nil, &PermissionDeniedError{Permission: model.PermissionManageUsers}
	}
	for _, existing := range s.users {
		if existing.Username == username {
			return nil, &ValidationError{Msg: "username already taken"}
		}
	}

	now := s.now()
	user := &model.User{
		ID:        s.nextID(),
		CompanyID: actor.CompanyID,
		Username:  username,
		Password:  passwordHash,
		Name:      name,
		Role:      role,
		Status:    1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.users[user.ID] = user
	s.appendAudit(actor, model.AuditUserCreated, &model.AuditTarget{Type: "user", ID: user.ID, Name: user.Name}, nil)

	copied := *user
	return &copied, nil
}

// UpdateUserRole changes a user's role.
func (s *Store) UpdateUserRole(actorID, userID uint, role model.Role) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}
	if err := s.require(actor, model.PermissionManageUsers); err != nil {
		return nil, err
	}

	user, ok := s.users[userID]
	if !ok {
		return nil, &NotFoundError{Resource: "user", ID: userID}
	}
	if err := s.sameTenant(actor, user.CompanyID); err != nil {
		return nil, &NotFoundError{Resource: "user", ID: userID}
	}
	if !role.Valid() {
		return nil, &ValidationError{Msg: "unknown role " + string(role)}
	}
	if role == model.RolePrincipalAdmin && actor.Role != model.RolePrincipalAdmin {
		return nil, &PermissionDeniedError{Permission: model.PermissionManageUsers}
	}

	user.Role = role
	user.UpdatedAt = s.now()
	s.appendAudit(actor, model.AuditUserRoleUpdated, &model.AuditTarget{Type: "user", ID: user.ID, Name: user.Name}, nil)

	copied := *user
	return &copied, nil
}

// DeactivateUser marks a user inactive. Users are never hard-deleted.
func (s *Store) DeactivateUser(actorID, userID uint) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}
	if err := s.require(actor, model.PermissionManageUsers); err != nil {
		return nil, err
	}

	user, ok := s.users[userID]
	if !ok {
		return nil, &NotFoundError{Resource: "user", ID: userID}
	}
	if err := s.sameTenant(actor, user.CompanyID); err != nil {
		return nil, &NotFoundError{Resource: "user", ID: userID}
	}

	user.Status = 0
	user.UpdatedAt = s.now()
	s.appendAudit(actor, model.AuditUserDeactivated, &model.AuditTarget{Type: "user", ID: user.ID, Name: user.Name}, nil)

	copied := *user
	return &copied, nil
}

// ListUsers returns the users of the actor's company.
func (s *Store) ListUsers(actorID uint) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}

	var users []model.User
	for _, u := range s.users {
		if actor.Role == model.RolePrincipalAdmin || u.CompanyID == actor.CompanyID {
			users = append(users, *u)
		}
	}
	sortByID(users, func(u model.User) uint { return u.ID })
	return users, nil
}

// GetUser returns a user visible to the actor.
func (s *Store) GetUser(actorID, userID uint) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}
	user, ok := s.users[userID]
	if !ok {
		return nil, &NotFoundError{Resource: "user", ID: userID}
	}
	if err := s.sameTenant(actor, user.CompanyID); err != nil {
		return nil, &NotFoundError{Resource: "user", ID: userID}
	}
	copied := *user
	return &copied, nil
}

// UserByUsername looks a user up for credential checks. Internal to the
// service layer; not permission-gated.
func (s *Store) UserByUsername(username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	username = strings.ToLower(strings.TrimSpace(username))
	for _, u := range s.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, &NotFoundError{Resource: "user", ID: 0}
}

// UserByID looks a user up by ID for the auth middleware and tracker.
// Internal to the service layer; not permission-gated.
func (s *Store) UserByID(userID uint) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, &NotFoundError{Resource: "user", ID: userID}
	}
	copied := *u
	return &copied, nil
}
