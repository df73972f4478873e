package eta

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectApproach(t *testing.T) {
	targetLat, targetLon := 0.0, 0.02

	tests := []struct {
		name     string
		latest   Fix
		previous Fix
		expected Verdict
	}{
		{
			name:     "strictly closer means approaching",
			latest:   Fix{Lat: 0, Lon: 0.015},
			previous: Fix{Lat: 0, Lon: 0.005},
			expected: Approaching,
		},
		{
			name:     "strictly farther means receding",
			latest:   Fix{Lat: 0, Lon: 0.005},
			previous: Fix{Lat: 0, Lon: 0.015},
			expected: Receding,
		},
		{
			name:     "equal distance means receding",
			latest:   Fix{Lat: 0, Lon: 0.01},
			previous: Fix{Lat: 0, Lon: 0.01},
			expected: Receding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := DetectApproach(tt.latest, tt.previous, targetLat, targetLon)
			assert.Equal(t, tt.expected, verdict)
		})
	}
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "approaching", Approaching.String())
	assert.Equal(t, "receding", Receding.String())
	assert.Equal(t, "indeterminate", Indeterminate.String())
}

func TestApproachVerdictRequiresTwoFixes(t *testing.T) {
	store := newFakeStore()
	store.fixes["s1"] = []Fix{{Lat: 0, Lon: 0.01, Timestamp: time.Now()}}

	service := newTestService(store)

	verdict, err := service.approachVerdict(context.Background(), "s1", 0, 0.02)
	require.NoError(t, err)
	assert.Equal(t, Indeterminate, verdict)
}

func TestApproachVerdictNoFixes(t *testing.T) {
	store := newFakeStore()

	service := newTestService(store)

	verdict, err := service.approachVerdict(context.Background(), "ghost", 0, 0.02)
	require.NoError(t, err)
	assert.Equal(t, Indeterminate, verdict)
}

func TestApproachVerdictUsesLatestTwoFixes(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	// Descending order: latest first. The vehicle moved toward the target.
	store.fixes["s1"] = []Fix{
		{Lat: 0, Lon: 0.015, Timestamp: now},
		{Lat: 0, Lon: 0.005, Timestamp: now.Add(-10 * time.Second)},
	}

	service := newTestService(store)

	verdict, err := service.approachVerdict(context.Background(), "s1", 0, 0.02)
	require.NoError(t, err)
	assert.Equal(t, Approaching, verdict)
}
