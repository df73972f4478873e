package eta

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joncarre/aplicacion-de-seguimiento/internal/utils"
)

func TestEstimateAlongRouteTargetMissing(t *testing.T) {
	stops := threeStopLine()
	closest, err := ClosestStop(0, 0.009, stops)
	require.NoError(t, err)

	estimate := EstimateAlongRoute(closest, "nope", stops)
	assert.Zero(t, estimate.EstimatedMinutes)
	assert.Zero(t, estimate.DistanceMeters)
}

func TestEstimateAlongRouteEmptyStops(t *testing.T) {
	estimate := EstimateAlongRoute(ClosestStopResult{}, "A", nil)
	assert.Zero(t, estimate.EstimatedMinutes)
	assert.Zero(t, estimate.DistanceMeters)
}

func TestEstimateAlongRouteForward(t *testing.T) {
	stops := threeStopLine()

	// Vehicle between A and B, slightly closer to B, targeting C.
	busLat, busLon := 0.0, 0.009
	closest, err := ClosestStop(busLat, busLon, stops)
	require.NoError(t, err)
	require.Equal(t, 1, closest.Index)

	estimate := EstimateAlongRoute(closest, "C", stops)

	lastMile := utils.Distance(busLat, busLon, stops[1].Lat, stops[1].Lon)
	hop := utils.Distance(stops[1].Lat, stops[1].Lon, stops[2].Lat, stops[2].Lon)
	expectedMeters := lastMile + hop
	expectedMinutes := int(math.Ceil((expectedMeters/1000/AverageSpeedKmh)*60 + 1*DwellMinutesPerStop))

	assert.Equal(t, int(math.Round(expectedMeters)), estimate.DistanceMeters)
	assert.Equal(t, expectedMinutes, estimate.EstimatedMinutes)
	assert.Greater(t, estimate.EstimatedMinutes, 0)
}

func TestEstimateAlongRouteVehicleAtTarget(t *testing.T) {
	stops := threeStopLine()

	// Vehicle exactly at the target stop: no distance, no hops, zero
	// estimate. Callers treat a zero estimate as "not computable".
	closest, err := ClosestStop(stops[2].Lat, stops[2].Lon, stops)
	require.NoError(t, err)

	estimate := EstimateAlongRoute(closest, "C", stops)
	assert.Zero(t, estimate.EstimatedMinutes)
	assert.Zero(t, estimate.DistanceMeters)
}

func TestEstimateAlongRouteWraparound(t *testing.T) {
	stops := fourStopLoop()

	// Vehicle sits exactly on the last stop, targeting the second one.
	closest, err := ClosestStop(stops[3].Lat, stops[3].Lon, stops)
	require.NoError(t, err)
	require.Equal(t, 3, closest.Index)

	estimate := EstimateAlongRoute(closest, "s1", stops)

	// Wraparound: only the segment s0->s1 counts, plus a zero last-mile.
	expectedMeters := segment(stops, 0, 1)
	assert.Equal(t, int(math.Round(expectedMeters)), estimate.DistanceMeters)
	assert.Greater(t, estimate.EstimatedMinutes, 0)
}

func TestEstimateMinutesAreCeiled(t *testing.T) {
	stops := threeStopLine()

	closest, err := ClosestStop(0, 0.009, stops)
	require.NoError(t, err)

	estimate := EstimateAlongRoute(closest, "C", stops)

	// ~1223 m at 30 km/h is ~2.45 min, plus 1 dwell minute: ceil to 4.
	assert.Equal(t, 4, estimate.EstimatedMinutes)
}
