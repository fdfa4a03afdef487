package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opensite/api/internal/model"
)

var site = model.Geofence{ID: 1, Name: "Riverside Plaza", Lat: 51.5074, Lng: -0.1278, RadiusMeters: 200}

func pos(lat, lng float64) model.Position {
	return model.Position{Lat: lat, Lng: lng, AccuracyMeters: 10}
}

// A walk from outside to inside and back out must produce exactly one enter
// and one exit, with no duplicates for repeated fixes on either side.
func TestEvaluatorEnterExitSymmetry(t *testing.T) {
	e := NewEvaluator()
	fences := []model.Geofence{site}

	outside := pos(51.52, -0.1278) // ~1.4 km north
	inside := pos(51.5074, -0.1278)

	var events []model.GeofenceEvent
	for _, p := range []model.Position{outside, outside, inside, inside, inside, outside, outside} {
		res := e.Evaluate(p, fences)
		events = append(events, res.Events...)
	}

	require.Len(t, events, 2)
	assert.Equal(t, model.GeofenceEnter, events[0].Type)
	assert.Equal(t, model.GeofenceExit, events[1].Type)
	assert.Equal(t, site.ID, events[0].Geofence.ID)
	assert.Equal(t, site.ID, events[1].Geofence.ID)
}

func TestEvaluatorStartsOutside(t *testing.T) {
	e := NewEvaluator()
	res := e.Evaluate(pos(51.5074, -0.1278), []model.Geofence{site})
	require.Len(t, res.Events, 1)
	assert.Equal(t, model.GeofenceEnter, res.Events[0].Type)
	assert.True(t, res.Inside[site.ID])
}

func TestEvaluatorEmptyFenceListIsNoOp(t *testing.T) {
	e := NewEvaluator()
	res := e.Evaluate(pos(51.5074, -0.1278), nil)
	assert.Empty(t, res.Events)
	assert.Empty(t, res.Inside)
}

// Removing a fence from the evaluated set while inside it still yields an
// exit naming the remembered fence.
func TestEvaluatorExitOnFenceRemoval(t *testing.T) {
	e := NewEvaluator()
	e.Evaluate(pos(51.5074, -0.1278), []model.Geofence{site})

	res := e.Evaluate(pos(51.5074, -0.1278), nil)
	require.Len(t, res.Events, 1)
	assert.Equal(t, model.GeofenceExit, res.Events[0].Type)
	assert.Equal(t, site.Name, res.Events[0].Geofence.Name)
}

func TestEvaluatorMultipleFences(t *testing.T) {
	other := model.Geofence{ID: 2, Name: "Depot", Lat: 51.52, Lng: -0.1278, RadiusMeters: 150}
	e := NewEvaluator()

	res := e.Evaluate(pos(51.5074, -0.1278), []model.Geofence{site, other})
	require.Len(t, res.Events, 1)
	assert.True(t, res.Inside[site.ID])
	assert.False(t, res.Inside[other.ID])

	// Move to the depot: exit the site, enter the depot.
	res = e.Evaluate(pos(51.52, -0.1278), []model.Geofence{site, other})
	require.Len(t, res.Events, 2)
	types := map[model.GeofenceEventType]uint{}
	for _, ev := range res.Events {
		types[ev.Type] = ev.Geofence.ID
	}
	assert.Equal(t, other.ID, types[model.GeofenceEnter])
	assert.Equal(t, site.ID, types[model.GeofenceExit])
}

// Independent sessions own independent inside-sets.
func TestEvaluatorSessionsAreIsolated(t *testing.T) {
	a := NewEvaluator()
	b := NewEvaluator()
	fences := []model.Geofence{site}

	a.Evaluate(pos(51.5074, -0.1278), fences)

	res := b.Evaluate(pos(51.5074, -0.1278), fences)
	require.Len(t, res.Events, 1)
	assert.Equal(t, model.GeofenceEnter, res.Events[0].Type)
}

func TestEvaluatorReset(t *testing.T) {
	e := NewEvaluator()
	fences := []model.Geofence{site}
	e.Evaluate(pos(51.5074, -0.1278), fences)

	e.Reset()

	// After a reset the same inside fix is a fresh enter, not a repeat.
	res := e.Evaluate(pos(51.5074, -0.1278), fences)
	require.Len(t, res.Events, 1)
	assert.Equal(t, model.GeofenceEnter, res.Events[0].Type)
}
