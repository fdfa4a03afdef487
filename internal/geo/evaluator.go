package geo

import (
	"opensite/api/internal/model"
)

// Evaluator classifies positions against a set of circular geofences and
// reports enter/exit transitions. It carries the inside-set of one watch
// session between calls; create a new Evaluator per session and do not share
// one across sessions.
type Evaluator struct {
	// fences the last evaluated position was inside, by fence ID. The
	// snapshot is kept so an exit can still name a fence that has since
	// been removed from the evaluated set.
	inside map[uint]model.Geofence
}

// Result is the outcome of evaluating one position.
type Result struct {
	Inside map[uint]bool
	Events []model.GeofenceEvent
}

// NewEvaluator creates an evaluator with an empty inside-set.
func NewEvaluator() *Evaluator {
	return &Evaluator{inside: make(map[uint]model.Geofence)}
}

// Evaluate computes which fences contain the position, diffs the result
// against the previous call's inside-set and emits an enter event for every
// newly contained fence and an exit event for every fence left. The stored
// set is replaced afterwards. An empty fence list yields no enter events.
func (e *Evaluator) Evaluate(pos model.Position, fences []model.Geofence) Result {
	current := make(map[uint]model.Geofence, len(fences))
	var events []model.GeofenceEvent

	for _, fence := range fences {
		if Distance(pos.Lat, pos.Lng, fence.Lat, fence.Lng) <= fence.RadiusMeters {
			current[fence.ID] = fence
			if _, was := e.inside[fence.ID]; !was {
				events = append(events, model.GeofenceEvent{Type: model.GeofenceEnter, Geofence: fence})
			}
		}
	}

	for id, fence := range e.inside {
		if _, still := current[id]; !still {
			events = append(events, model.GeofenceEvent{Type: model.GeofenceExit, Geofence: fence})
		}
	}

	e.inside = current

	insideIDs := make(map[uint]bool, len(current))
	for id := range current {
		insideIDs[id] = true
	}
	return Result{Inside: insideIDs, Events: events}
}

// Reset clears the session state, as at the start of a new watch session.
func (e *Evaluator) Reset() {
	e.inside = make(map[uint]model.Geofence)
}
