package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opensite/api/internal/model"
)

func TestLocationTrustOnSiteAccurate(t *testing.T) {
	report := LocationTrust(model.Position{Lat: site.Lat, Lng: site.Lng, AccuracyMeters: 10}, site)
	assert.Equal(t, 1.0, report.Score)
	assert.Empty(t, report.Reasons)
}

// 300 m from a 200 m site with 60 m accuracy: 1.0 - 0.5 - 0.2 = 0.3 with
// both reasons recorded.
func TestLocationTrustOffSiteAndInaccurate(t *testing.T) {
	// ~300 m north of the site center (1 deg latitude ~= 111,195 m).
	offSite := model.Position{Lat: site.Lat + 300/111195.0, Lng: site.Lng, AccuracyMeters: 60}

	report := LocationTrust(offSite, site)
	assert.InDelta(t, 0.3, report.Score, 1e-9)
	require.Contains(t, report.Reasons, "location")
	require.Contains(t, report.Reasons, "accuracy")
	assert.Contains(t, report.Reasons["location"], "100 m")
	assert.Contains(t, report.Reasons["accuracy"], "60 m")
}

func TestLocationTrustClampedToFloor(t *testing.T) {
	farAway := model.Position{Lat: site.Lat + 1, Lng: site.Lng, AccuracyMeters: 500}
	report := LocationTrust(farAway, site)
	assert.GreaterOrEqual(t, report.Score, 0.1)
	assert.LessOrEqual(t, report.Score, 1.0)
}

// Moving further off site never raises the score.
func TestLocationTrustMonotonicInDistance(t *testing.T) {
	prev := 2.0
	for _, meters := range []float64{0, 100, 199, 201, 500, 5000, 50000} {
		p := model.Position{Lat: site.Lat + meters/111195.0, Lng: site.Lng, AccuracyMeters: 10}
		score := LocationTrust(p, site).Score
		assert.LessOrEqual(t, score, prev, "score rose at %f m", meters)
		assert.GreaterOrEqual(t, score, 0.1)
		assert.LessOrEqual(t, score, 1.0)
		prev = score
	}
}

func TestLocationTrustAccuracyBoundary(t *testing.T) {
	// Exactly 50 m accuracy is still trusted.
	at := LocationTrust(model.Position{Lat: site.Lat, Lng: site.Lng, AccuracyMeters: 50}, site)
	assert.Equal(t, 1.0, at.Score)

	over := LocationTrust(model.Position{Lat: site.Lat, Lng: site.Lng, AccuracyMeters: 51}, site)
	assert.InDelta(t, 0.8, over.Score, 1e-9)
}
