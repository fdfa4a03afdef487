package geo

import (
	"fmt"
	"math"

	"opensite/api/internal/model"
)

const (
	// accuracyThresholdMeters is the GPS accuracy above which a fix is
	// considered too imprecise to fully trust.
	accuracyThresholdMeters = 50.0

	offSitePenalty     = 0.5
	lowAccuracyPenalty = 0.2
	minTrustScore      = 0.1
)

// LocationTrust derives a confidence score for a clock-in position against a
// project's site geofence. The score starts at 1.0, loses 0.5 when the fix is
// outside the site radius and 0.2 when the GPS accuracy exceeds 50 m, and is
// clamped to a 0.1 floor so the record stays reviewable instead of being
// silently rejected. Advisory only: callers must not block the clock-in on it.
func LocationTrust(pos model.Position, site model.Geofence) model.TrustReport {
	score := 1.0
	reasons := make(map[string]string)

	d := Distance(pos.Lat, pos.Lng, site.Lat, site.Lng)
	if d > site.RadiusMeters {
		score -= offSitePenalty
		excess := math.Round(d - site.RadiusMeters)
		reasons["location"] = fmt.Sprintf("clock-in %.0f m outside the site geofence", excess)
	}

	if pos.AccuracyMeters > accuracyThresholdMeters {
		score -= lowAccuracyPenalty
		reasons["accuracy"] = fmt.Sprintf("GPS accuracy %.0f m exceeds %.0f m", pos.AccuracyMeters, accuracyThresholdMeters)
	}

	if score < minTrustScore {
		score = minTrustScore
	}

	if len(reasons) == 0 {
		reasons = nil
	}
	return model.TrustReport{Score: score, Reasons: reasons}
}
