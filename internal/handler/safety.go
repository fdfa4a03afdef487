package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"opensite/api/internal/model"
	"opensite/api/internal/service"
	"opensite/api/internal/store"
)

// SafetyHandler handles safety incident requests.
type SafetyHandler struct {
	store     *store.Store
	assistant *service.Assistant
}

// NewSafetyHandler creates a new safety handler.
func NewSafetyHandler(s *store.Store, assistant *service.Assistant) *SafetyHandler {
	return &SafetyHandler{store: s, assistant: assistant}
}

type reportIncidentRequest struct {
	ProjectID   uint   `json:"project_id" binding:"required"`
	Severity    string `json:"severity" binding:"required,oneof=LOW MEDIUM HIGH CRITICAL"`
	Description string `json:"description" binding:"required"`
}

// Report records a safety incident
// @Summary Report incident
// @Tags Safety
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param incident body reportIncidentRequest true "Incident"
// @Success 201 {object} map[string]interface{}
// @Router /incidents [post]
func (h *SafetyHandler) Report(c *gin.Context) {
	var req reportIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	incident, err := h.store.ReportIncident(getUserIDFromContext(c), req.ProjectID,
		model.IncidentSeverity(req.Severity), req.Description)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": incident})
}

type incidentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus moves an incident through its handling flow
// @Summary Update incident status
// @Tags Safety
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Incident ID"
// @Param status body incidentStatusRequest true "New status"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]string
// @Router /incidents/{id}/status [put]
func (h *SafetyHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident id"})
		return
	}

	var req incidentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	incident, err := h.store.UpdateIncidentStatus(getUserIDFromContext(c), uint(id), model.IncidentStatus(req.Status))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": incident})
}

// List returns the company's incidents
// @Summary List incidents
// @Tags Safety
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /incidents [get]
func (h *SafetyHandler) List(c *gin.Context) {
	incidents, err := h.store.ListIncidents(getUserIDFromContext(c))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": incidents, "total": len(incidents)})
}

// Analyze asks the assistant for a structured read of an incident
// @Summary Analyze incident
// @Description Assistant-backed severity, root cause and recommendation analysis
// @Tags Safety
// @Produce json
// @Security BearerAuth
// @Param id path int true "Incident ID"
// @Success 200 {object} map[string]interface{}
// @Failure 502 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /incidents/{id}/analyze [post]
func (h *SafetyHandler) Analyze(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident id"})
		return
	}

	incidents, err := h.store.ListIncidents(getUserIDFromContext(c))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	var incident *model.SafetyIncident
	for i := range incidents {
		if incidents[i].ID == uint(id) {
			incident = &incidents[i]
			break
		}
	}
	if incident == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "incident not found"})
		return
	}

	analysis, err := h.assistant.AnalyzeIncident(c.Request.Context(), incident)
	if err != nil {
		writeAssistantError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": analysis})
}
