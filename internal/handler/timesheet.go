package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"opensite/api/internal/model"
	"opensite/api/internal/service"
	"opensite/api/internal/store"
)

// TimesheetHandler handles clock-in/out and review requests.
type TimesheetHandler struct {
	store         *store.Store
	reportService *service.ReportService
}

// NewTimesheetHandler creates a new timesheet handler.
func NewTimesheetHandler(s *store.Store, reportService *service.ReportService) *TimesheetHandler {
	return &TimesheetHandler{store: s, reportService: reportService}
}

// Lat/Lng are pointers so zero coordinates still bind as present.
type clockInRequest struct {
	ProjectID      uint     `json:"project_id" binding:"required"`
	Lat            *float64 `json:"lat" binding:"required"`
	Lng            *float64 `json:"lng" binding:"required"`
	AccuracyMeters float64  `json:"accuracy_meters"`
}

// ClockIn opens a timesheet for the actor
// @Summary Clock in
// @Description Open a timesheet; the position is scored against the site geofence
// @Tags Timesheets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param position body clockInRequest true "Clock-in position"
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} map[string]string
// @Router /timesheets/clock-in [post]
func (h *TimesheetHandler) ClockIn(c *gin.Context) {
	var req clockInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pos := &model.Position{
		Lat:            *req.Lat,
		Lng:            *req.Lng,
		AccuracyMeters: req.AccuracyMeters,
		Timestamp:      time.Now(),
	}
	ts, err := h.store.ClockIn(getUserIDFromContext(c), req.ProjectID, pos)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": ts})
}

// ClockOut closes the actor's open timesheet
// @Summary Clock out
// @Tags Timesheets
// @Produce json
// @Security BearerAuth
// @Param id path int true "Timesheet ID"
// @Success 200 {object} map[string]interface{}
// @Router /timesheets/{id}/clock-out [post]
func (h *TimesheetHandler) ClockOut(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid timesheet id"})
		return
	}

	ts, err := h.store.ClockOut(getUserIDFromContext(c), uint(id))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": ts})
}

type reviewRequest struct {
	Status string `json:"status" binding:"required,oneof=APPROVED REJECTED"`
	Reason string `json:"reason"`
}

// Review approves or rejects a timesheet
// @Summary Review timesheet
// @Description Approve or reject a pending or flagged timesheet
// @Tags Timesheets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Timesheet ID"
// @Param review body reviewRequest true "Decision"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]string
// @Router /timesheets/{id}/review [post]
func (h *TimesheetHandler) Review(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid timesheet id"})
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ts, err := h.store.ReviewTimesheet(getUserIDFromContext(c), uint(id), model.TimesheetStatus(req.Status), req.Reason)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": ts})
}

// List returns timesheets visible to the actor
// @Summary List timesheets
// @Tags Timesheets
// @Produce json
// @Security BearerAuth
// @Param project_id query int false "Filter by project"
// @Param user_id query int false "Filter by user"
// @Param status query string false "Filter by status"
// @Success 200 {object} map[string]interface{}
// @Router /timesheets [get]
func (h *TimesheetHandler) List(c *gin.Context) {
	filter := timesheetFilterFromQuery(c)
	sheets, err := h.store.ListTimesheets(getUserIDFromContext(c), filter)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sheets, "total": len(sheets)})
}

// Get returns a single timesheet
// @Summary Get timesheet
// @Tags Timesheets
// @Produce json
// @Security BearerAuth
// @Param id path int true "Timesheet ID"
// @Success 200 {object} map[string]interface{}
// @Router /timesheets/{id} [get]
func (h *TimesheetHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid timesheet id"})
		return
	}

	ts, err := h.store.GetTimesheet(getUserIDFromContext(c), uint(id))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": ts})
}

// Export downloads the visible timesheets as an xlsx workbook
// @Summary Export timesheets
// @Tags Timesheets
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} binary
// @Router /timesheets/export [get]
func (h *TimesheetHandler) Export(c *gin.Context) {
	filter := timesheetFilterFromQuery(c)
	buf, err := h.reportService.TimesheetReport(getUserIDFromContext(c), filter)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	filename := fmt.Sprintf("timesheets_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func timesheetFilterFromQuery(c *gin.Context) store.TimesheetFilter {
	var filter store.TimesheetFilter
	if v, err := strconv.ParseUint(c.Query("project_id"), 10, 32); err == nil {
		filter.ProjectID = uint(v)
	}
	if v, err := strconv.ParseUint(c.Query("user_id"), 10, 32); err == nil {
		filter.UserID = uint(v)
	}
	if v := c.Query("status"); v != "" {
		filter.Status = model.TimesheetStatus(v)
	}
	return filter
}
