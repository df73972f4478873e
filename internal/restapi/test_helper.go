// test_helper.go contains shared utilities for building a fully wired
// in-memory API in integration tests.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Joncarre/aplicacion-de-seguimiento/fleetdb"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/app"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/appconf"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/auth"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/cleanup"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/clock"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/eta"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/metrics"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/models"
)

const testAPIKey = "test-key"

var testStart = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestAPI(t *testing.T) (*RestAPI, *clock.MockClock) {
	t.Helper()

	db, err := fleetdb.NewClient(fleetdb.Config{DBPath: ":memory:", Env: appconf.Test})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	clk := clock.NewMockClock(testStart)
	m := metrics.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	application := &app.Application{
		Config: appconf.Config{
			Port:      0,
			Env:       appconf.Test,
			ApiKeys:   []string{testAPIKey},
			RateLimit: 1000,
		},
		Logger:      logger,
		FleetDB:     db,
		ETAService:  eta.NewService(fleetdb.NewETAStore(db), logger, clk, m),
		AuthService: auth.NewService(db, logger, clk),
		CleanupJob:  cleanup.NewJob(db, logger, clk, m),
		Clock:       clk,
		Metrics:     m,
	}

	api := NewRestAPI(application)
	t.Cleanup(api.Shutdown)
	return api, clk
}

// seedLineWithStops creates a line with stops spaced 0.01 degrees of
// longitude apart along the equator, ordered west to east.
func seedLineWithStops(t *testing.T, api *RestAPI, lineID string, stopIDs ...string) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, api.FleetDB.Queries.CreateLine(ctx, fleetdb.CreateLineParams{ID: lineID, Name: "Line " + lineID}))
	for i, stopID := range stopIDs {
		require.NoError(t, api.FleetDB.Queries.CreateStop(ctx, fleetdb.CreateStopParams{
			ID:   stopID,
			Name: "Stop " + stopID,
			Lat:  0,
			Lon:  float64(i) * 0.01,
		}))
	}
	require.NoError(t, api.FleetDB.SetLineStops(ctx, lineID, stopIDs))
	api.refreshStopIndex(ctx)
}

// seedDriverSession provisions a code, logs it in bound to the line, and
// returns the session.
func seedDriverSession(t *testing.T, api *RestAPI, lineID string) fleetdb.Session {
	t.Helper()
	ctx := context.Background()

	code, err := api.AuthService.GenerateCode(ctx)
	require.NoError(t, err)
	session, err := api.AuthService.Login(ctx, code, lineID)
	require.NoError(t, err)
	return session
}

// recordFix inserts one fix for the session at equator longitude lon.
func recordFix(t *testing.T, api *RestAPI, session fleetdb.Session, lon float64, at time.Time) {
	t.Helper()
	require.NoError(t, api.FleetDB.Queries.InsertLocation(context.Background(), fleetdb.InsertLocationParams{
		SessionID:  session.ID,
		LineID:     session.LineID.String,
		Lat:        0,
		Lon:        lon,
		RecordedAt: at,
	}))
}

func serveRequest(api *RestAPI, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	api.Routes().ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) models.ResponseModel {
	t.Helper()
	var response models.ResponseModel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	return response
}

// decodeData re-marshals the envelope's data field into dst for typed
// assertions.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	response := decodeEnvelope(t, rec)
	b, err := json.Marshal(response.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, dst))
}

func bearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func adminPath(path string) string {
	return path + "?key=" + testAPIKey
}
