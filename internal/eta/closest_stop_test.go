package eta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeStopLine() []StopPosition {
	return []StopPosition{
		{ID: "A", Lat: 0, Lon: 0, SequenceOrder: 1},
		{ID: "B", Lat: 0, Lon: 0.01, SequenceOrder: 2},
		{ID: "C", Lat: 0, Lon: 0.02, SequenceOrder: 3},
	}
}

func TestClosestStopEmptyList(t *testing.T) {
	_, err := ClosestStop(0, 0, nil)
	assert.ErrorIs(t, err, ErrNoStops)

	_, err = ClosestStop(0, 0, []StopPosition{})
	assert.ErrorIs(t, err, ErrNoStops)
}

func TestClosestStopCoincidentPosition(t *testing.T) {
	stops := threeStopLine()

	for i, stop := range stops {
		result, err := ClosestStop(stop.Lat, stop.Lon, stops)
		require.NoError(t, err)
		assert.Equal(t, i, result.Index)
		assert.Equal(t, stop.ID, result.Stop.ID)
		assert.Zero(t, result.DistanceMeters)
	}
}

func TestClosestStopPicksMinimum(t *testing.T) {
	stops := threeStopLine()

	// Slightly closer to B than to A or C.
	result, err := ClosestStop(0, 0.009, stops)
	require.NoError(t, err)
	assert.Equal(t, "B", result.Stop.ID)
	assert.Equal(t, 1, result.Index)
	assert.Greater(t, result.DistanceMeters, 0.0)
}

func TestClosestStopTieBreakFirstWins(t *testing.T) {
	// Two stops at the same coordinates: the earliest-indexed one wins.
	stops := []StopPosition{
		{ID: "first", Lat: 10, Lon: 10, SequenceOrder: 1},
		{ID: "duplicate", Lat: 10, Lon: 10, SequenceOrder: 2},
	}

	result, err := ClosestStop(10, 10, stops)
	require.NoError(t, err)
	assert.Equal(t, "first", result.Stop.ID)
	assert.Equal(t, 0, result.Index)
}

func TestClosestStopSingleStop(t *testing.T) {
	stops := []StopPosition{{ID: "only", Lat: 5, Lon: 5, SequenceOrder: 1}}

	result, err := ClosestStop(0, 0, stops)
	require.NoError(t, err)
	assert.Equal(t, "only", result.Stop.ID)
	assert.Greater(t, result.DistanceMeters, 0.0)
}
