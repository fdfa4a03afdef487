package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceIdenticalPoints(t *testing.T) {
	assert.Zero(t, Distance(51.5074, -0.1278, 51.5074, -0.1278))
}

func TestDistanceOneDegreeLatitudeAtEquator(t *testing.T) {
	// One degree of latitude is ~111,195 m on a sphere of radius 6,371 km.
	d := Distance(0, 0, 1, 0)
	assert.InEpsilon(t, 111195.0, d, 0.005)
}

func TestDistanceSymmetric(t *testing.T) {
	a := Distance(51.5074, -0.1278, 48.8566, 2.3522)
	b := Distance(48.8566, 2.3522, 51.5074, -0.1278)
	assert.InDelta(t, a, b, 1e-6)
	assert.Greater(t, a, 0.0)
}

func TestDistanceKnownPair(t *testing.T) {
	// London -> Paris is roughly 344 km.
	d := Distance(51.5074, -0.1278, 48.8566, 2.3522)
	assert.InDelta(t, 344000.0, d, 2000.0)
}
