package eta

import (
	"context"

	"github.com/Joncarre/aplicacion-de-seguimiento/internal/utils"
)

// Verdict is the inferred direction of travel relative to a target stop.
type Verdict int

const (
	// Indeterminate means fewer than two fixes exist, so no direction can
	// be inferred. Callers must exclude such vehicles rather than guess.
	Indeterminate Verdict = iota
	Approaching
	Receding
)

func (v Verdict) String() string {
	switch v {
	case Approaching:
		return "approaching"
	case Receding:
		return "receding"
	default:
		return "indeterminate"
	}
}

// DetectApproach compares the distances of the two most recent fixes to the
// target. The vehicle is approaching iff the latest fix is strictly closer
// than the previous one. A single inequality decides the verdict: there is
// no smoothing or hysteresis band, so GPS jitter can flip the result
// between consecutive samples. That matches the reporting cadence the rest
// of the system is built around and is a known limitation.
func DetectApproach(latest, previous Fix, targetLat, targetLon float64) Verdict {
	latestDistance := utils.Distance(latest.Lat, latest.Lon, targetLat, targetLon)
	previousDistance := utils.Distance(previous.Lat, previous.Lon, targetLat, targetLon)

	if latestDistance < previousDistance {
		return Approaching
	}
	return Receding
}

// approachVerdict fetches the session's two most recent fixes and infers
// the direction of travel relative to the target stop. With fewer than two
// fixes on record the verdict is Indeterminate.
func (s *Service) approachVerdict(ctx context.Context, sessionID string, targetLat, targetLon float64) (Verdict, error) {
	fixes, err := s.store.GetRecentFixes(ctx, sessionID, 2)
	if err != nil {
		return Indeterminate, err
	}

	if len(fixes) < 2 {
		return Indeterminate, nil
	}

	// fixes[0] is the latest, fixes[1] the previous sample.
	return DetectApproach(fixes[0], fixes[1], targetLat, targetLon), nil
}
