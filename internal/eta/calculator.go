package eta

import "math"

const (
	// AverageSpeedKmh is the assumed in-city cruising speed.
	AverageSpeedKmh = 30.0
	// DwellMinutesPerStop is the average time spent serving each
	// intermediate stop.
	DwellMinutesPerStop = 1.0
)

// Estimate is a computed arrival estimate. A zero Estimate means "not
// computable" and must be excluded from user-facing results.
type Estimate struct {
	EstimatedMinutes int
	DistanceMeters   int
}

// EstimateAlongRoute computes the arrival estimate for a vehicle whose
// nearest stop is closest, targeting targetStopID on the given ordered stop
// list. The total distance is the vehicle's last-mile segment to its
// nearest stop plus the accumulated route distance; each hop between stops
// adds dwell time. Travel time assumes a fixed average speed.
//
// When the target stop is not on the list, or the list is empty, the zero
// Estimate is returned rather than an error.
func EstimateAlongRoute(closest ClosestStopResult, targetStopID string, stops []StopPosition) Estimate {
	targetIdx := -1
	for i, s := range stops {
		if s.ID == targetStopID {
			targetIdx = i
			break
		}
	}
	if targetIdx == -1 {
		return Estimate{}
	}

	routeMeters, hops := routeDistance(stops, closest.Index, targetIdx)
	totalMeters := closest.DistanceMeters + routeMeters

	travelMinutes := (totalMeters / 1000 / AverageSpeedKmh) * 60
	dwellMinutes := float64(hops) * DwellMinutesPerStop

	return Estimate{
		EstimatedMinutes: int(math.Ceil(travelMinutes + dwellMinutes)),
		DistanceMeters:   int(math.Round(totalMeters)),
	}
}
