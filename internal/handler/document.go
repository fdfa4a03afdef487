package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"opensite/api/internal/store"
)

// DocumentHandler handles document upload and search requests.
type DocumentHandler struct {
	store *store.Store
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(s *store.Store) *DocumentHandler {
	return &DocumentHandler{store: s}
}

type initiateUploadRequest struct {
	ProjectID uint   `json:"project_id" binding:"required"`
	Name      string `json:"name" binding:"required"`
	MimeType  string `json:"mime_type" binding:"required"`
	SizeBytes int64  `json:"size_bytes" binding:"required,gt=0"`
}

// InitiateUpload starts an upload task
// @Summary Start document upload
// @Description Creates the document in UPLOADING state and returns a task ID
// @Tags Documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param upload body initiateUploadRequest true "Upload"
// @Success 201 {object} map[string]interface{}
// @Router /documents/uploads [post]
func (h *DocumentHandler) InitiateUpload(c *gin.Context) {
	var req initiateUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.store.InitiateUpload(getUserIDFromContext(c), req.ProjectID, req.Name, req.MimeType, req.SizeBytes)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": doc, "task_id": doc.UploadTaskID})
}

type progressRequest struct {
	Progress int `json:"progress" binding:"min=0,max=100"`
}

// ReportProgress records upload progress for a task
// @Summary Report upload progress
// @Description Progress only moves forward; 100 moves the document to SCANNING
// @Tags Documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param task_id path string true "Upload task ID"
// @Param progress body progressRequest true "Progress"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]string
// @Router /documents/uploads/{task_id}/progress [post]
func (h *DocumentHandler) ReportProgress(c *gin.Context) {
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.store.UploadProgress(c.Param("task_id"), req.Progress)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": doc})
}

type finalizeRequest struct {
	Clean   bool   `json:"clean"`
	Content string `json:"content"`
}

// FinalizeUpload completes the scan and settles the document
// @Summary Finalize upload
// @Description A clean scan approves and indexes the document; otherwise it is quarantined
// @Tags Documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param task_id path string true "Upload task ID"
// @Param result body finalizeRequest true "Scan result"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]string
// @Router /documents/uploads/{task_id}/finalize [post]
func (h *DocumentHandler) FinalizeUpload(c *gin.Context) {
	var req finalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.store.FinalizeUpload(getUserIDFromContext(c), c.Param("task_id"), req.Clean, req.Content)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": doc})
}

// List returns a project's documents
// @Summary List documents
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Param project_id query int true "Project ID"
// @Success 200 {object} map[string]interface{}
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	projectID, err := strconv.ParseUint(c.Query("project_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project_id is required"})
		return
	}

	docs, err := h.store.ListDocuments(getUserIDFromContext(c), uint(projectID))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": docs, "total": len(docs)})
}

// Search searches indexed document content
// @Summary Search documents
// @Description Full-text search over indexed content; quarantined documents are excluded
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Param q query string true "Query"
// @Success 200 {object} map[string]interface{}
// @Router /documents/search [get]
func (h *DocumentHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}

	docs, err := h.store.SearchDocuments(getUserIDFromContext(c), query)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": docs, "total": len(docs)})
}
