package store

import (
	"opensite/api/internal/model"
)

// AuditLog returns the audit trail, newest first, limited to limit entries
// (0 means all). Reading the trail is itself permission-gated: only roles
// holding VIEW_AUDIT_LOG see it.
func (s *Store) AuditLog(actorID uint, limit int) ([]model.AuditLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}
	if err := s.require(actor, model.PermissionViewAuditLog); err != nil {
		return nil, err
	}

	entries := s.audit
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	out := make([]model.AuditLogEntry, len(entries))
	copy(out, entries)
	return out, nil
}

// AuditStats summarizes the audit trail: total entries and a per-action count.
func (s *Store) AuditStats(actorID uint) (int, map[model.AuditAction]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	actor, err := s.actor(actorID)
	if err != nil {
		return 0, nil, err
	}
	if err := s.require(actor, model.PermissionViewAuditLog); err != nil {
		return 0, nil, err
	}

	byAction := make(map[model.AuditAction]int)
	for _, entry := range s.audit {
		byAction[entry.Action]++
	}
	return len(s.audit), byAction, nil
}

// AuditLogLen reports the number of audit entries without a permission gate.
// Intended for tests and internal health reporting.
func (s *Store) AuditLogLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.audit)
}
