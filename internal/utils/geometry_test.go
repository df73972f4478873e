package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name      string
		lat1      float64
		lon1      float64
		lat2      float64
		lon2      float64
		expected  float64
		tolerance float64
	}{
		{
			name:      "Same point (zero distance)",
			lat1:      40.0331,
			lon1:      -3.6024,
			lat2:      40.0331,
			lon2:      -3.6024,
			expected:  0,
			tolerance: 0,
		},
		{
			name:      "Madrid to Aranjuez",
			lat1:      40.4168,
			lon1:      -3.7038,
			lat2:      40.0331,
			lon2:      -3.6024,
			expected:  43500, // approximately 43.5 km
			tolerance: 500,
		},
		{
			name:      "One degree of latitude at the equator",
			lat1:      0,
			lon1:      0,
			lat2:      1,
			lon2:      0,
			expected:  111195, // pi * R / 180
			tolerance: 10,
		},
		{
			name:      "Short hop between adjacent stops",
			lat1:      40.030000,
			lon1:      -3.600000,
			lat2:      40.031000,
			lon2:      -3.601000,
			expected:  139,
			tolerance: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.expected, got, tt.tolerance)
		})
	}
}

func TestDistanceIsExactlyZeroForIdenticalPoints(t *testing.T) {
	assert.Zero(t, Distance(39.123456, -3.987654, 39.123456, -3.987654))
}

func TestDistanceSymmetry(t *testing.T) {
	pairs := [][4]float64{
		{40.0331, -3.6024, 40.4168, -3.7038},
		{0, 0, 0, 1},
		{-33.4489, -70.6693, 51.5074, -0.1278},
	}

	for _, p := range pairs {
		forward := Distance(p[0], p[1], p[2], p[3])
		backward := Distance(p[2], p[3], p[0], p[1])
		assert.InDelta(t, forward, backward, 1e-9)
	}
}

func TestCalculateBounds(t *testing.T) {
	lat := 40.0331
	lon := -3.6024
	radius := 500.0

	bounds := CalculateBounds(lat, lon, radius)

	assert.Less(t, bounds.MinLat, lat)
	assert.Greater(t, bounds.MaxLat, lat)
	assert.Less(t, bounds.MinLon, lon)
	assert.Greater(t, bounds.MaxLon, lon)

	// The box should be roughly 1000m tall: ~0.009 degrees of latitude.
	latDiff := bounds.MaxLat - bounds.MinLat
	assert.InDelta(t, 0.00899, latDiff, 0.0005)
}

func TestBoundsContains(t *testing.T) {
	bounds := CalculateBounds(40.0331, -3.6024, 500)

	assert.True(t, bounds.Contains(40.0331, -3.6024))
	assert.True(t, bounds.Contains(40.0355, -3.6024))
	assert.False(t, bounds.Contains(40.1, -3.6024))
	assert.False(t, bounds.Contains(40.0331, -3.7))
}
