package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"opensite/api/internal/model"
	"opensite/api/internal/service"
	"opensite/api/internal/store"
)

// Publisher is the subset of the NATS connection the position handler needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// PositionHandler handles crew position uplink and queries.
type PositionHandler struct {
	pub     Publisher
	tracker *service.CrewTracker
	store   *store.Store
}

// NewPositionHandler creates a new position handler.
func NewPositionHandler(pub Publisher, tracker *service.CrewTracker, s *store.Store) *PositionHandler {
	return &PositionHandler{pub: pub, tracker: tracker, store: s}
}

// Lat/Lng are pointers so a fix on the equator or the Greenwich meridian
// still binds; gin treats zero-valued required fields as missing.
type uplinkRequest struct {
	Lat            *float64 `json:"lat" binding:"required"`
	Lng            *float64 `json:"lng" binding:"required"`
	AccuracyMeters float64  `json:"accuracy_meters"`
}

// Uplink publishes the actor's position to the tracker
// @Summary Position uplink
// @Description Publish a GPS fix; the tracker evaluates it against active site geofences
// @Tags Positions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param position body uplinkRequest true "Position"
// @Success 202 {object} map[string]interface{}
// @Router /positions/uplink [post]
func (h *PositionHandler) Uplink(c *gin.Context) {
	var req uplinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fix := model.CrewPosition{
		UserID:         getUserIDFromContext(c),
		Lat:            *req.Lat,
		Lng:            *req.Lng,
		AccuracyMeters: req.AccuracyMeters,
		Timestamp:      time.Now().Unix(),
	}
	data, err := json.Marshal(fix)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.pub.Publish(service.SubjectLocation, data); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to publish position"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// GetLatest returns a user's last known position
// @Summary Latest position
// @Tags Positions
// @Produce json
// @Security BearerAuth
// @Param user_id path int true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /positions/{user_id}/latest [get]
func (h *PositionHandler) GetLatest(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	// The target must be visible to the actor; cross-tenant users read as
	// absent, same as everywhere else in the store.
	if _, err := h.store.GetUser(getUserIDFromContext(c), uint(userID)); err != nil {
		writeStoreError(c, err)
		return
	}

	fix, err := h.tracker.LastPosition(c.Request.Context(), uint(userID))
	if err != nil {
		if err == redis.Nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no position recorded"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": fix})
}

// RecentAlerts returns the most recent geofence alerts for the actor's company
// @Summary Recent geofence alerts
// @Tags Positions
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max alerts" default(100)
// @Param company_id query int false "Company (principal admin only)"
// @Success 200 {object} map[string]interface{}
// @Router /alerts/recent [get]
func (h *PositionHandler) RecentAlerts(c *gin.Context) {
	actor, err := h.store.UserByID(getUserIDFromContext(c))
	if err != nil {
		writeStoreError(c, err)
		return
	}

	companyID := actor.CompanyID
	if actor.Role == model.RolePrincipalAdmin {
		if v, err := strconv.ParseUint(c.Query("company_id"), 10, 32); err == nil {
			companyID = uint(v)
		}
	}

	limit := int64(100)
	if v, err := strconv.ParseInt(c.Query("limit"), 10, 64); err == nil && v > 0 {
		limit = v
	}

	alerts, err := h.tracker.RecentAlerts(c.Request.Context(), companyID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": alerts, "total": len(alerts)})
}

// EndSession discards the actor's geofence watch session
// @Summary End watch session
// @Description Clears the inside-set so the next fix starts a fresh session
// @Tags Positions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /positions/session [delete]
func (h *PositionHandler) EndSession(c *gin.Context) {
	h.tracker.EndSession(getUserIDFromContext(c))
	c.JSON(http.StatusOK, gin.H{"status": "session ended"})
}
