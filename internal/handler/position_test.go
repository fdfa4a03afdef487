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

	"opensite/api/internal/model"
	"opensite/api/internal/store"
)

func newSeededStore(t *testing.T) *store.Store {
	t.Helper()
	st := store.New(zap.NewNop().Sugar())
	require.NoError(t, st.SeedDemo("site-pass-1"))
	return st
}

func seededUserID(t *testing.T, st *store.Store, username string) uint {
	t.Helper()
	u, err := st.UserByUsername(username)
	require.NoError(t, err)
	return u.ID
}

// actAs stands in for the auth middleware in handler tests.
func actAs(actorID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", actorID)
		c.Next()
	}
}

type fakePublisher struct {
	subjects []string
	payloads [][]byte
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func newPositionRouter(t *testing.T, st *store.Store, actorID uint, pub Publisher) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewPositionHandler(pub, nil, st)
	r := gin.New()
	r.Use(actAs(actorID))
	r.POST("/api/v1/positions/uplink", h.Uplink)
	r.GET("/api/v1/positions/:user_id/latest", h.GetLatest)
	return r
}

func TestUplinkAcceptsZeroCoordinates(t *testing.T) {
	st := newSeededStore(t)
	dana := seededUserID(t, st, "dana")
	pub := &fakePublisher{}
	r := newPositionRouter(t, st, dana, pub)

	// A fix on the Greenwich meridian must not read as a missing field.
	body, _ := json.Marshal(gin.H{"lat": 0.0, "lng": 0.0, "accuracy_meters": 8.0})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/positions/uplink", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, pub.payloads, 1)

	var fix model.CrewPosition
	require.NoError(t, json.Unmarshal(pub.payloads[0], &fix))
	assert.Equal(t, dana, fix.UserID)
	assert.Zero(t, fix.Lat)
	assert.Zero(t, fix.Lng)
}

func TestUplinkRejectsMissingCoordinate(t *testing.T) {
	st := newSeededStore(t)
	dana := seededUserID(t, st, "dana")
	pub := &fakePublisher{}
	r := newPositionRouter(t, st, dana, pub)

	body, _ := json.Marshal(gin.H{"lat": 51.5})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/positions/uplink", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, pub.payloads)
}

// A position query for a user the actor cannot see must 404 before the
// tracker is consulted; the nil tracker here would panic otherwise.
func TestGetLatestInvisibleUserReadsAsNotFound(t *testing.T) {
	st := newSeededStore(t)
	dana := seededUserID(t, st, "dana")
	r := newPositionRouter(t, st, dana, &fakePublisher{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/positions/9999/latest", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
