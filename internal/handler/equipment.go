package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"opensite/api/internal/store"
)

// EquipmentHandler handles plant and equipment requests.
type EquipmentHandler struct {
	store *store.Store
}

// NewEquipmentHandler creates a new equipment handler.
func NewEquipmentHandler(s *store.Store) *EquipmentHandler {
	return &EquipmentHandler{store: s}
}

type createEquipmentRequest struct {
	Name string `json:"name" binding:"required"`
	Type string `json:"type" binding:"required"`
}

// Create registers a piece of equipment
// @Summary Create equipment
// @Tags Equipment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param equipment body createEquipmentRequest true "Equipment"
// @Success 201 {object} map[string]interface{}
// @Router /equipment [post]
func (h *EquipmentHandler) Create(c *gin.Context) {
	var req createEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	eq, err := h.store.CreateEquipment(getUserIDFromContext(c), req.Name, req.Type)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": eq})
}

type assignEquipmentRequest struct {
	ProjectID uint `json:"project_id" binding:"required"`
}

// Assign puts equipment into use on a project
// @Summary Assign equipment
// @Tags Equipment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Equipment ID"
// @Param assignment body assignEquipmentRequest true "Target project"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]string
// @Router /equipment/{id}/assign [post]
func (h *EquipmentHandler) Assign(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid equipment id"})
		return
	}

	var req assignEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	eq, err := h.store.AssignEquipment(getUserIDFromContext(c), uint(id), req.ProjectID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": eq})
}

// Release returns equipment to the available pool
// @Summary Release equipment
// @Tags Equipment
// @Produce json
// @Security BearerAuth
// @Param id path int true "Equipment ID"
// @Success 200 {object} map[string]interface{}
// @Router /equipment/{id}/release [post]
func (h *EquipmentHandler) Release(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid equipment id"})
		return
	}

	eq, err := h.store.ReleaseEquipment(getUserIDFromContext(c), uint(id))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": eq})
}

type maintenanceRequest struct {
	UnderMaintenance bool `json:"under_maintenance"`
}

// SetMaintenance moves equipment in or out of maintenance
// @Summary Set equipment maintenance
// @Tags Equipment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Equipment ID"
// @Param maintenance body maintenanceRequest true "Maintenance flag"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]string
// @Router /equipment/{id}/maintenance [post]
func (h *EquipmentHandler) SetMaintenance(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid equipment id"})
		return
	}

	var req maintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	eq, err := h.store.SetEquipmentMaintenance(getUserIDFromContext(c), uint(id), req.UnderMaintenance)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": eq})
}

// List returns the company's equipment
// @Summary List equipment
// @Tags Equipment
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /equipment [get]
func (h *EquipmentHandler) List(c *gin.Context) {
	items, err := h.store.ListEquipment(getUserIDFromContext(c))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items, "total": len(items)})
}
