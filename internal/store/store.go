package store

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"opensite/api/internal/model"
)

// Store is the single source of truth for every domain entity. It is an
// explicitly constructed in-memory repository: callers receive it by
// injection, never through a package-level singleton.
//
// One mutex guards every read-check-mutate-log sequence, so each mutating
// operation either fully succeeds (mutation, audit entry, returned copy) or
// fully fails with no partial effect. Mutating operations follow a fixed
// order: resolve actor, check permission, locate target, apply, audit.
// A failed call never writes an audit entry. All returned entities are
// copies; callers never hold live references into the store.
type Store struct {
	mu  sync.RWMutex
	lg  *zap.SugaredLogger
	now func() time.Time

	lastID uint

	companies  map[uint]*model.Company
	users      map[uint]*model.User
	projects   map[uint]*model.Project
	timesheets map[uint]*model.Timesheet
	documents  map[uint]*model.Document
	todos      map[uint]*model.Todo
	equipment  map[uint]*model.Equipment
	invoices   map[uint]*model.Invoice
	incidents  map[uint]*model.SafetyIncident

	// audit is append-only, newest first. Entries are never mutated.
	audit []model.AuditLogEntry
}

// New creates an empty store.
func New(lg *zap.SugaredLogger) *Store {
	return &Store{
		lg:         lg,
		now:        time.Now,
		companies:  make(map[uint]*model.Company),
		users:      make(map[uint]*model.User),
		projects:   make(map[uint]*model.Project),
		timesheets: make(map[uint]*model.Timesheet),
		documents:  make(map[uint]*model.Document),
		todos:      make(map[uint]*model.Todo),
		equipment:  make(map[uint]*model.Equipment),
		invoices:   make(map[uint]*model.Invoice),
		incidents:  make(map[uint]*model.SafetyIncident),
	}
}

// nextID returns the next entity ID from a monotonic counter.
// Call with s.mu held.
func (s *Store) nextID() uint {
	s.lastID++
	return s.lastID
}

// actor resolves the acting user. Call with s.mu held.
func (s *Store) actor(actorID uint) (*model.User, error) {
	u, ok := s.users[actorID]
	if !ok {
		return nil, &NotFoundError{Resource: "user", ID: actorID}
	}
	return u, nil
}

// require checks that the actor's role grants the permission.
func (s *Store) require(actor *model.User, p model.Permission) error {
	if !actor.Role.HasPermission(p) {
		return &PermissionDeniedError{Permission: p}
	}
	return nil
}

// sameTenant checks that the actor may act on an entity of the given company.
// Principal admins operate across tenants.
func (s *Store) sameTenant(actor *model.User, companyID uint) error {
	if actor.Role == model.RolePrincipalAdmin || actor.CompanyID == companyID {
		return nil
	}
	// Cross-tenant access reads as absence, not as a permission hint.
	return &NotFoundError{Resource: "company", ID: companyID}
}

// appendAudit records one entry for a successful mutating call, newest first.
// Call with s.mu held, inside the same critical section as the mutation.
func (s *Store) appendAudit(actor *model.User, action model.AuditAction, target *model.AuditTarget, projectID *uint) {
	entry := model.AuditLogEntry{
		ID:        s.nextID(),
		ActorID:   actor.ID,
		ActorName: actor.Name,
		Action:    action,
		Target:    target,
		ProjectID: projectID,
		CreatedAt: s.now(),
	}
	s.audit = append([]model.AuditLogEntry{entry}, s.audit...)
	s.lg.Infow("audit", "action", action, "actor_id", actor.ID)
}

// sortByID orders listing results by ascending entity ID. Map iteration is
// unordered, so listings sort before returning.
func sortByID[T any](items []T, id func(T) uint) {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
}
