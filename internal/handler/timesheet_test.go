package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opensite/api/internal/model"
	"opensite/api/internal/service"
	"opensite/api/internal/store"
)

func newTimesheetRouter(t *testing.T, st *store.Store, actorID uint) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewTimesheetHandler(st, service.NewReportService(st))
	r := gin.New()
	r.Use(actAs(actorID))
	r.POST("/api/v1/timesheets/clock-in", h.ClockIn)
	return r
}

// A clock-in on the Greenwich meridian carries lng 0; the request must bind
// rather than 400 on a "missing" coordinate.
func TestClockInBindsZeroLongitude(t *testing.T) {
	st := newSeededStore(t)
	dana := seededUserID(t, st, "dana")
	tom := seededUserID(t, st, "tom")

	projects, err := st.ListProjects(dana)
	require.NoError(t, err)
	var projectID uint
	for _, p := range projects {
		if p.Status == model.ProjectActive {
			projectID = p.ID
			break
		}
	}
	require.NotZero(t, projectID)

	r := newTimesheetRouter(t, st, tom)
	body, _ := json.Marshal(gin.H{
		"project_id":      projectID,
		"lat":             51.4778,
		"lng":             0.0,
		"accuracy_meters": 12.0,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/timesheets/clock-in", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "trust_score")
}
