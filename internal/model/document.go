package model

import "time"

// DocumentStatus is the upload/scan state of a document.
//
// UPLOADING -> SCANNING -> APPROVED | QUARANTINED. A document never returns
// to UPLOADING once it has left it.
type DocumentStatus string

const (
	DocumentUploading   DocumentStatus = "UPLOADING"
	DocumentScanning    DocumentStatus = "SCANNING"
	DocumentApproved    DocumentStatus = "APPROVED"
	DocumentQuarantined DocumentStatus = "QUARANTINED"
)

// Document is a project file. Upload is split into initiate / progress /
// finalize so clients can report chunked progress; finalize assigns the
// terminal state and attaches indexed content for search.
type Document struct {
	ID             uint           `json:"id"`
	CompanyID      uint           `json:"company_id"`
	ProjectID      uint           `json:"project_id"`
	UploaderID     uint           `json:"uploader_id"`
	Name           string         `json:"name"`
	MimeType       string         `json:"mime_type"`
	SizeBytes      int64          `json:"size_bytes"`
	Status         DocumentStatus `json:"status"`
	UploadTaskID   string         `json:"upload_task_id,omitempty"`
	UploadProgress int            `json:"upload_progress"`
	IndexedContent string         `json:"-"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
