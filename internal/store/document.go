package store

import (
	"strings"

	"github.com/google/uuid"

	"opensite/api/internal/model"
)

// InitiateUpload creates a document in the UPLOADING state and returns it
// with the upload task ID clients use to report progress.
func (s *Store) InitiateUpload(actorID, projectID uint, name, mimeType string, sizeBytes int64) (*model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}
	if err := s.require(actor, model.PermissionUploadDocument); err != nil {
		return nil, err
	}

	project, err := s.project(actor, projectID)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, &ValidationError{Msg: "document name is required"}
	}
	if sizeBytes <= 0 {
		return nil, &ValidationError{Msg: "document size must be positive"}
	}

	now := s.now()
	doc := &model.Document{
		ID:           s.nextID(),
		CompanyID:    project.CompanyID,
		ProjectID:    project.ID,
		UploaderID:   actor.ID,
		Name:         name,
		MimeType:     mimeType,
		SizeBytes:    sizeBytes,
		Status:       model.DocumentUploading,
		UploadTaskID: uuid.NewString(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.documents[doc.ID] = doc
	s.appendAudit(actor, model.AuditDocumentUploadStarted, &model.AuditTarget{Type: "document", ID: doc.ID, Name: doc.Name}, &project.ID)

	copied := *doc
	return &copied, nil
}

// UploadProgress records chunked upload progress for the task. Reaching 100%
// moves the document into SCANNING. Progress is keyed by the upload task, not
// an actor, so it is not audited.
func (s *Store) UploadProgress(taskID string, progress int) (*model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.documentByTask(taskID)
	if doc == nil {
		return nil, &NotFoundError{Resource: "upload task", ID: 0}
	}
	if doc.Status != model.DocumentUploading {
		return nil, &TransitionError{Entity: "document", From: string(doc.Status), To: string(model.DocumentUploading)}
	}

	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	if progress < doc.UploadProgress {
		// Chunks may arrive out of order; progress never moves backwards.
		progress = doc.UploadProgress
	}
	doc.UploadProgress = progress
	if progress == 100 {
		doc.Status = model.DocumentScanning
	}
	doc.UpdatedAt = s.now()

	copied := *doc
	return &copied, nil
}

// FinalizeUpload assigns the document's terminal state. A clean scan approves
// the document and attaches its indexed content for search; otherwise it is
// quarantined. A finalized document can never return to UPLOADING.
func (s *Store) FinalizeUpload(actorID uint, taskID string, clean bool, indexedContent string) (*model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}
	if err := s.require(actor, model.PermissionUploadDocument); err != nil {
		return nil, err
	}

	doc := s.documentByTask(taskID)
	if doc == nil {
		return nil, &NotFoundError{Resource: "upload task", ID: 0}
	}
	if err := s.sameTenant(actor, doc.CompanyID); err != nil {
		return nil, &NotFoundError{Resource: "document", ID: doc.ID}
	}
	if doc.Status != model.DocumentScanning {
		return nil, &TransitionError{Entity: "document", From: string(doc.Status), To: string(model.DocumentApproved)}
	}

	if clean {
		doc.Status = model.DocumentApproved
		doc.IndexedContent = indexedContent
	} else {
		doc.Status = model.DocumentQuarantined
	}
	doc.UpdatedAt = s.now()
	s.appendAudit(actor, model.AuditDocumentFinalized, &model.AuditTarget{Type: "document", ID: doc.ID, Name: doc.Name}, &doc.ProjectID)

	copied := *doc
	return &copied, nil
}

// ListDocuments returns a project's documents visible to the actor.
func (s *Store) ListDocuments(actorID, projectID uint) ([]model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.project(actor, projectID); err != nil {
		return nil, err
	}

	var docs []model.Document
	for _, d := range s.documents {
		if d.ProjectID == projectID {
			docs = append(docs, *d)
		}
	}
	sortByID(docs, func(d model.Document) uint { return d.ID })
	return docs, nil
}

// SearchDocuments matches the query against document names and the indexed
// content attached at finalize time. Quarantined documents are excluded.
func (s *Store) SearchDocuments(actorID uint, query string) ([]model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	var docs []model.Document
	for _, d := range s.documents {
		if actor.Role != model.RolePrincipalAdmin && d.CompanyID != actor.CompanyID {
			continue
		}
		if d.Status == model.DocumentQuarantined {
			continue
		}
		if query == "" ||
			strings.Contains(strings.ToLower(d.Name), query) ||
			strings.Contains(strings.ToLower(d.IndexedContent), query) {
			docs = append(docs, *d)
		}
	}
	sortByID(docs, func(d model.Document) uint { return d.ID })
	return docs, nil
}

// documentByTask finds a document by its upload task ID. Call with s.mu held.
func (s *Store) documentByTask(taskID string) *model.Document {
	for _, d := range s.documents {
		if d.UploadTaskID == taskID {
			return d
		}
	}
	return nil
}
