package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"opensite/api/internal/model"
)

func newTestTracker(t *testing.T) *CrewTracker {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	tracker := NewCrewTracker(nil, client, nil, zap.NewNop().Sugar())
	t.Cleanup(tracker.cancel)
	return tracker
}

func pushAlert(t *testing.T, tracker *CrewTracker, alert model.SiteAlert) {
	t.Helper()
	data, err := json.Marshal(alert)
	require.NoError(t, err)
	require.NoError(t, tracker.redis.LPush(context.Background(), recentAlertsKey(alert.CompanyID), data).Err())
}

// Alert lists are keyed per company; one tenant's alerts never appear in
// another tenant's feed.
func TestRecentAlertsScopedToCompany(t *testing.T) {
	tracker := newTestTracker(t)

	pushAlert(t, tracker, model.SiteAlert{CompanyID: 1, UserID: 5, ProjectName: "Riverside Plaza", EventType: model.GeofenceEnter})
	pushAlert(t, tracker, model.SiteAlert{CompanyID: 2, UserID: 9, ProjectName: "Rival Yard", EventType: model.GeofenceEnter})

	alerts, err := tracker.RecentAlerts(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, uint(1), alerts[0].CompanyID)
	assert.Equal(t, "Riverside Plaza", alerts[0].ProjectName)

	other, err := tracker.RecentAlerts(context.Background(), 2, 10)
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "Rival Yard", other[0].ProjectName)
}

func TestRecentAlertsNewestFirstWithLimit(t *testing.T) {
	tracker := newTestTracker(t)

	for _, name := range []string{"first", "second", "third"} {
		pushAlert(t, tracker, model.SiteAlert{CompanyID: 1, UserID: 5, ProjectName: name, EventType: model.GeofenceExit})
	}

	alerts, err := tracker.RecentAlerts(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "third", alerts[0].ProjectName)
	assert.Equal(t, "second", alerts[1].ProjectName)
}

func TestLastPositionShadowRoundTrip(t *testing.T) {
	tracker := newTestTracker(t)

	fix := &model.CrewPosition{UserID: 7, Lat: 51.5074, Lng: -0.1278, AccuracyMeters: 6, Timestamp: 1767225600}
	tracker.cacheShadow(fix.UserID, fix)

	got, err := tracker.LastPosition(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, fix, got)

	_, err = tracker.LastPosition(context.Background(), 8)
	assert.ErrorIs(t, err, redis.Nil)
}
