package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"opensite/api/internal/service"
	"opensite/api/internal/store"
)

// AuditHandler handles audit log requests.
type AuditHandler struct {
	store         *store.Store
	reportService *service.ReportService
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(s *store.Store, reportService *service.ReportService) *AuditHandler {
	return &AuditHandler{store: s, reportService: reportService}
}

// RegisterRoutes registers the audit routes.
func (h *AuditHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/audit-logs", h.List)
	r.GET("/audit-logs/stats", h.GetStats)
	r.GET("/audit-logs/export", h.Export)
}

// List returns the audit log, newest first
// @Summary List audit log
// @Tags Audit
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max entries" default(100)
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string
// @Router /audit-logs [get]
func (h *AuditHandler) List(c *gin.Context) {
	limit := 100
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}

	entries, err := h.store.AuditLog(getUserIDFromContext(c), limit)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries, "total": len(entries)})
}

// GetStats returns audit log totals per action
// @Summary Audit log stats
// @Tags Audit
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string
// @Router /audit-logs/stats [get]
func (h *AuditHandler) GetStats(c *gin.Context) {
	total, byAction, err := h.store.AuditStats(getUserIDFromContext(c))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":     total,
		"by_action": byAction,
	})
}

// Export downloads the audit log as an xlsx workbook
// @Summary Export audit log
// @Tags Audit
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param limit query int false "Max entries" default(1000)
// @Success 200 {file} binary
// @Router /audit-logs/export [get]
func (h *AuditHandler) Export(c *gin.Context) {
	limit := 1000
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}

	buf, err := h.reportService.AuditReport(getUserIDFromContext(c), limit)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	filename := fmt.Sprintf("audit_log_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
