package restapi

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joncarre/aplicacion-de-seguimiento/internal/models"
)

func TestStopsForLocationSortedByDistance(t *testing.T) {
	api, _ := newTestAPI(t)
	// Stops at lon 0, 0.01, 0.02: roughly 0 m, 1113 m, 2226 m from origin.
	seedLineWithStops(t, api, "L1", "A", "B", "C")

	rec := serveRequest(api, http.MethodGet, "/api/v1/stops-for-location?lat=0&lon=0&radius=1500", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stops []models.StopWithDistance
	decodeData(t, rec, &stops)
	require.Len(t, stops, 2, "C lies outside the radius")
	assert.Equal(t, "A", stops[0].ID)
	assert.Equal(t, "B", stops[1].ID)
	assert.Less(t, stops[0].DistanceMeters, stops[1].DistanceMeters)
}

func TestStopsForLocationDefaultRadius(t *testing.T) {
	api, _ := newTestAPI(t)
	seedLineWithStops(t, api, "L1", "A", "B")

	rec := serveRequest(api, http.MethodGet, "/api/v1/stops-for-location?lat=0&lon=0", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stops []models.StopWithDistance
	decodeData(t, rec, &stops)
	require.Len(t, stops, 1, "only A lies within the default 500 m")
	assert.Equal(t, "A", stops[0].ID)
}

func TestStopsForLocationBadParams(t *testing.T) {
	api, _ := newTestAPI(t)

	badPaths := []string{
		"/api/v1/stops-for-location",
		"/api/v1/stops-for-location?lat=abc&lon=0",
		"/api/v1/stops-for-location?lat=91&lon=0",
		"/api/v1/stops-for-location?lat=0&lon=181",
		"/api/v1/stops-for-location?lat=0&lon=0&radius=-5",
	}
	for _, path := range badPaths {
		t.Run(path, func(t *testing.T) {
			rec := serveRequest(api, http.MethodGet, path, nil, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestStopsForLocationReflectsAdminMutations(t *testing.T) {
	api, _ := newTestAPI(t)

	body := map[string]any{"id": "S1", "name": "Plaza", "lat": 0.0, "lon": 0.0}
	rec := serveRequest(api, http.MethodPost, adminPath("/api/v1/admin/stops"), body, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = serveRequest(api, http.MethodGet, "/api/v1/stops-for-location?lat=0&lon=0", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stops []models.StopWithDistance
	decodeData(t, rec, &stops)
	require.Len(t, stops, 1)
	assert.Equal(t, "S1", stops[0].ID)

	rec = serveRequest(api, http.MethodDelete, adminPath(fmt.Sprintf("/api/v1/admin/stops/%s", "S1")), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serveRequest(api, http.MethodGet, "/api/v1/stops-for-location?lat=0&lon=0", nil, nil)
	decodeData(t, rec, &stops)
	assert.Empty(t, stops, "deleted stop must leave the index")
}
