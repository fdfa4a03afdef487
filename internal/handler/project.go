package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"opensite/api/internal/geo"
	"opensite/api/internal/model"
	"opensite/api/internal/store"
)

// ProjectHandler handles project-related requests.
type ProjectHandler struct {
	store *store.Store
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(s *store.Store) *ProjectHandler {
	return &ProjectHandler{store: s}
}

// Lat/Lng are pointers so zero coordinates still bind as present.
type createProjectRequest struct {
	Name         string   `json:"name" binding:"required"`
	Description  string   `json:"description"`
	Lat          *float64 `json:"lat" binding:"required"`
	Lng          *float64 `json:"lng" binding:"required"`
	RadiusMeters float64  `json:"radius_meters" binding:"required,gt=0"`
	StartDate    string   `json:"start_date"`
}

// Create creates a project
// @Summary Create project
// @Description Create a project with its site geofence
// @Tags Projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param project body createProjectRequest true "Project"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	startDate := time.Now()
	if req.StartDate != "" {
		parsed, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
			return
		}
		startDate = parsed
	}

	project, err := h.store.CreateProject(getUserIDFromContext(c), req.Name, req.Description,
		*req.Lat, *req.Lng, req.RadiusMeters, startDate)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": project})
}

// List returns the actor's projects
// @Summary List projects
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.store.ListProjects(getUserIDFromContext(c))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": projects, "total": len(projects)})
}

// Get returns a single project
// @Summary Get project
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /projects/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
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
	c.JSON(http.StatusOK, gin.H{"data": project})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus moves a project through its lifecycle
// @Summary Update project status
// @Tags Projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Param status body updateStatusRequest true "New status"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]string
// @Router /projects/{id}/status [put]
func (h *ProjectHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.store.UpdateProjectStatus(getUserIDFromContext(c), uint(id), model.ProjectStatus(req.Status))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": project})
}

type checkLocationRequest struct {
	Lat            *float64 `json:"lat" binding:"required"`
	Lng            *float64 `json:"lng" binding:"required"`
	AccuracyMeters float64  `json:"accuracy_meters"`
}

// CheckLocation tests a position against the project's site geofence
// @Summary Check location against site
// @Description Returns distance, inside flag and clock-in trust for a position
// @Tags Projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Param position body checkLocationRequest true "Position"
// @Success 200 {object} map[string]interface{}
// @Router /projects/{id}/geofence/check [post]
func (h *ProjectHandler) CheckLocation(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var req checkLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.store.GetProject(getUserIDFromContext(c), uint(id))
	if err != nil {
		writeStoreError(c, err)
		return
	}

	site := project.SiteGeofence()
	pos := model.Position{
		Lat:            *req.Lat,
		Lng:            *req.Lng,
		AccuracyMeters: req.AccuracyMeters,
		Timestamp:      time.Now(),
	}
	distance := geo.Distance(*req.Lat, *req.Lng, site.Lat, site.Lng)

	c.JSON(http.StatusOK, gin.H{
		"distance_meters": distance,
		"inside":          distance <= site.RadiusMeters,
		"trust":           geo.LocationTrust(pos, site),
	})
}
