package eta

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joncarre/aplicacion-de-seguimiento/internal/clock"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/metrics"
)

// fakeStore is an in-memory Store for exercising the engine without a
// database.
type fakeStore struct {
	stops    map[string][]StopPosition
	sessions map[string][]string
	fixes    map[string][]Fix // newest first, like the real store

	stopsErr    error
	sessionsErr error
	fixErrFor   map[string]error

	latestFixCalls  int
	recentFixesCall int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		stops:     make(map[string][]StopPosition),
		sessions:  make(map[string][]string),
		fixes:     make(map[string][]Fix),
		fixErrFor: make(map[string]error),
	}
}

func (f *fakeStore) GetOrderedStopsForLine(_ context.Context, lineID string) ([]StopPosition, error) {
	if f.stopsErr != nil {
		return nil, f.stopsErr
	}
	return f.stops[lineID], nil
}

func (f *fakeStore) GetActiveSessionsForLine(_ context.Context, lineID string, _ time.Time) ([]string, error) {
	if f.sessionsErr != nil {
		return nil, f.sessionsErr
	}
	return f.sessions[lineID], nil
}

func (f *fakeStore) GetLatestFix(_ context.Context, sessionID string) (*Fix, error) {
	f.latestFixCalls++
	if err := f.fixErrFor[sessionID]; err != nil {
		return nil, err
	}
	fixes := f.fixes[sessionID]
	if len(fixes) == 0 {
		return nil, nil
	}
	fix := fixes[0]
	return &fix, nil
}

func (f *fakeStore) GetRecentFixes(_ context.Context, sessionID string, limit int) ([]Fix, error) {
	f.recentFixesCall++
	if err := f.fixErrFor[sessionID]; err != nil {
		return nil, err
	}
	fixes := f.fixes[sessionID]
	if len(fixes) > limit {
		fixes = fixes[:limit]
	}
	return fixes, nil
}

func newTestService(store Store) *Service {
	clk := clock.NewMockClock(time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC))
	return NewService(store, nil, clk, metrics.New())
}

// seedApproachingSession records two fixes moving toward lon, newest first.
func (f *fakeStore) seedApproachingSession(sessionID string, latestLon, previousLon float64) {
	now := time.Date(2024, 6, 15, 11, 59, 50, 0, time.UTC)
	f.fixes[sessionID] = []Fix{
		{Lat: 0, Lon: latestLon, Timestamp: now},
		{Lat: 0, Lon: previousLon, Timestamp: now.Add(-10 * time.Second)},
	}
}

func TestComputeETAsTargetNotOnLine(t *testing.T) {
	store := newFakeStore()
	store.stops["L1"] = threeStopLine()
	store.sessions["L1"] = []string{"s1"}
	store.seedApproachingSession("s1", 0.009, 0.005)

	service := newTestService(store)

	etas := service.ComputeETAsForStop(context.Background(), "L1", "not-a-stop")
	assert.Empty(t, etas)
}

func TestComputeETAsNoActiveSessions(t *testing.T) {
	store := newFakeStore()
	store.stops["L1"] = threeStopLine()

	service := newTestService(store)

	etas := service.ComputeETAsForStop(context.Background(), "L1", "C")
	assert.Empty(t, etas)
	// With no sessions there must be no position reads at all.
	assert.Zero(t, store.latestFixCalls)
	assert.Zero(t, store.recentFixesCall)
}

func TestComputeETAsApproachingVehicleScenario(t *testing.T) {
	// Line A-B-C, vehicle moved from lon 0.005 to 0.009: nearest stop is B,
	// it is approaching C and receding from A.
	store := newFakeStore()
	store.stops["L1"] = threeStopLine()
	store.sessions["L1"] = []string{"s1"}
	store.seedApproachingSession("s1", 0.009, 0.005)

	service := newTestService(store)

	forC := service.ComputeETAsForStop(context.Background(), "L1", "C")
	require.Len(t, forC, 1)
	assert.Equal(t, "s1", forC[0].SessionID)
	assert.True(t, forC[0].IsApproaching)
	assert.Greater(t, forC[0].EstimatedMinutes, 0)
	assert.Less(t, forC[0].EstimatedMinutes, MaxEstimatedMinutes)
	assert.Greater(t, forC[0].DistanceMeters, 0)

	// Nearest stop is B (order 2); the next stop in list order is C (order 3).
	assert.Equal(t, 2, forC[0].CurrentStopOrder)
	require.NotNil(t, forC[0].NextStopOrder)
	assert.Equal(t, 3, *forC[0].NextStopOrder)

	forA := service.ComputeETAsForStop(context.Background(), "L1", "A")
	assert.Empty(t, forA, "vehicle receding from A must not appear")
}

func TestComputeETAsSingleFixIsExcluded(t *testing.T) {
	store := newFakeStore()
	store.stops["L1"] = threeStopLine()
	store.sessions["L1"] = []string{"s1"}
	store.fixes["s1"] = []Fix{{Lat: 0, Lon: 0.009, Timestamp: time.Now()}}

	service := newTestService(store)

	for _, stopID := range []string{"A", "B", "C"} {
		etas := service.ComputeETAsForStop(context.Background(), "L1", stopID)
		assert.Empty(t, etas, "session with one fix must be indeterminate for %s", stopID)
	}
}

func TestComputeETAsSessionWithNoFixIsSkipped(t *testing.T) {
	store := newFakeStore()
	store.stops["L1"] = threeStopLine()
	store.sessions["L1"] = []string{"silent", "s1"}
	store.seedApproachingSession("s1", 0.009, 0.005)

	service := newTestService(store)

	etas := service.ComputeETAsForStop(context.Background(), "L1", "C")
	require.Len(t, etas, 1)
	assert.Equal(t, "s1", etas[0].SessionID)
}

func TestComputeETAsPerSessionFaultDoesNotAbort(t *testing.T) {
	store := newFakeStore()
	store.stops["L1"] = threeStopLine()
	store.sessions["L1"] = []string{"broken", "s1"}
	store.fixErrFor["broken"] = errors.New("disk on fire")
	store.seedApproachingSession("s1", 0.009, 0.005)

	service := newTestService(store)

	etas := service.ComputeETAsForStop(context.Background(), "L1", "C")
	require.Len(t, etas, 1)
	assert.Equal(t, "s1", etas[0].SessionID)
}

func TestComputeETAsStoreFailureYieldsEmpty(t *testing.T) {
	store := newFakeStore()
	store.stopsErr = errors.New("store down")

	service := newTestService(store)

	etas := service.ComputeETAsForStop(context.Background(), "L1", "C")
	assert.NotNil(t, etas)
	assert.Empty(t, etas)
}

func TestComputeETAsThresholdFilter(t *testing.T) {
	// Stops 33 km apart: the estimate lands well above the 60 minute
	// ceiling even though the vehicle is genuinely approaching.
	store := newFakeStore()
	store.stops["L1"] = []StopPosition{
		{ID: "near", Lat: 0, Lon: 0, SequenceOrder: 1},
		{ID: "far", Lat: 0, Lon: 0.3, SequenceOrder: 2},
	}
	store.sessions["L1"] = []string{"s1"}
	store.seedApproachingSession("s1", 0.01, 0.005)

	service := newTestService(store)

	etas := service.ComputeETAsForStop(context.Background(), "L1", "far")
	assert.Empty(t, etas, "estimates at or above the ceiling are discarded")
}

func TestComputeETAsZeroEstimateFilter(t *testing.T) {
	// Vehicle parked exactly on the target stop, still nominally
	// approaching: zero estimate means "not computable" and is excluded.
	store := newFakeStore()
	store.stops["L1"] = threeStopLine()
	store.sessions["L1"] = []string{"s1"}
	store.seedApproachingSession("s1", 0.02, 0.015)

	service := newTestService(store)

	etas := service.ComputeETAsForStop(context.Background(), "L1", "C")
	assert.Empty(t, etas)
}

func TestComputeETAsSortedAscending(t *testing.T) {
	store := newFakeStore()
	store.stops["L1"] = threeStopLine()
	store.sessions["L1"] = []string{"farther", "closer"}
	// Both approaching C; "closer" is nearer to it.
	store.seedApproachingSession("farther", 0.004, 0.001)
	store.seedApproachingSession("closer", 0.013, 0.009)

	service := newTestService(store)

	etas := service.ComputeETAsForStop(context.Background(), "L1", "C")
	require.Len(t, etas, 2)
	assert.Equal(t, "closer", etas[0].SessionID)
	assert.Equal(t, "farther", etas[1].SessionID)
	assert.True(t, sort.SliceIsSorted(etas, func(i, j int) bool {
		return etas[i].EstimatedMinutes < etas[j].EstimatedMinutes
	}))
}

func TestComputeETAsNextStopOrderNilAtEndOfLine(t *testing.T) {
	// Vehicle nearest to the last stop while approaching it from before:
	// place it just short of C so C remains both nearest and target.
	store := newFakeStore()
	store.stops["L1"] = threeStopLine()
	store.sessions["L1"] = []string{"s1"}
	store.seedApproachingSession("s1", 0.0185, 0.012)

	service := newTestService(store)

	etas := service.ComputeETAsForStop(context.Background(), "L1", "C")
	require.Len(t, etas, 1)
	assert.Equal(t, 3, etas[0].CurrentStopOrder)
	assert.Nil(t, etas[0].NextStopOrder, "no wraparound for the display field")
}
