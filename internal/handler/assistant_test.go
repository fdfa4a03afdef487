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
	"go.uber.org/zap"

	"opensite/api/internal/middleware"
	"opensite/api/internal/model"
	"opensite/api/internal/service"
	"opensite/api/internal/store"
)

func newAssistantRouter(t *testing.T, st *store.Store, actorID uint) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gen := &service.MockGenerator{
		Default: `{"low_gbp":4000,"high_gbp":9000,"assumption":"standard groundworks rates","line_items":["labour","materials"]}`,
	}
	assistant := service.NewAssistant(gen, zap.NewNop().Sugar())
	h := NewAssistantHandler(st, assistant)
	rbac := middleware.NewRBACMiddleware(st)

	r := gin.New()
	r.Use(actAs(actorID))
	r.POST("/api/v1/assistant/estimate-cost",
		rbac.RequirePermission(model.PermissionUseAssistant), h.EstimateCost)
	return r
}

func postEstimate(t *testing.T, r *gin.Engine) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(gin.H{"description": "replace 40m of perimeter hoarding"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assistant/estimate-cost", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// Operatives hold no USE_ASSISTANT grant; the route must reject them
// before the assistant is invoked.
func TestEstimateCostDeniedForOperative(t *testing.T) {
	st := newSeededStore(t)
	tom := seededUserID(t, st, "tom")
	r := newAssistantRouter(t, st, tom)

	w := postEstimate(t, r)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "permission denied")
	assert.Contains(t, w.Body.String(), string(model.PermissionUseAssistant))
}

func TestEstimateCostAllowedForForeman(t *testing.T) {
	st := newSeededStore(t)
	priya := seededUserID(t, st, "priya")
	r := newAssistantRouter(t, st, priya)

	w := postEstimate(t, r)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "low_gbp")
}
