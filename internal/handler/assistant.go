package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"opensite/api/internal/service"
	"opensite/api/internal/store"
)

// AssistantHandler exposes the LLM-backed helpers.
type AssistantHandler struct {
	store     *store.Store
	assistant *service.Assistant
}

// NewAssistantHandler creates a new assistant handler.
func NewAssistantHandler(s *store.Store, assistant *service.Assistant) *AssistantHandler {
	return &AssistantHandler{store: s, assistant: assistant}
}

// writeAssistantError maps assistant error kinds to HTTP statuses.
func writeAssistantError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssistantDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "assistant is not configured"})
	case errors.Is(err, service.ErrBadResponse):
		c.JSON(http.StatusBadGateway, gin.H{"error": "assistant returned an unusable response"})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}

type estimateCostRequest struct {
	Description string `json:"description" binding:"required"`
}

// EstimateCost asks the assistant for a cost range
// @Summary Estimate cost
// @Description Assistant-backed rough cost range for described work
// @Tags Assistant
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param work body estimateCostRequest true "Work description"
// @Success 200 {object} map[string]interface{}
// @Failure 502 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /assistant/estimate-cost [post]
func (h *AssistantHandler) EstimateCost(c *gin.Context) {
	var req estimateCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	estimate, err := h.assistant.EstimateCost(c.Request.Context(), req.Description)
	if err != nil {
		writeAssistantError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": estimate})
}

// ProjectRisks asks the assistant for a project's top risks
// @Summary List project risks
// @Description Assistant-backed risk list for a project
// @Tags Assistant
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Success 200 {object} map[string]interface{}
// @Failure 502 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /projects/{id}/risks [get]
func (h *AssistantHandler) ProjectRisks(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	project, err := h.store.GetProject(getUserIDFromContext(c), uint(id))
	if err != nil {
		writeStoreError(c, err)
		return
	}

	risks, err := h.assistant.ProjectRisks(c.Request.Context(), project)
	if err != nil {
		writeAssistantError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": risks})
}
