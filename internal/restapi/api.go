// Package restapi is the HTTP surface of the fleet tracker: public line,
// stop and arrival-estimate reads, driver session and location endpoints,
// and API-key-gated admin mutations.
package restapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Joncarre/aplicacion-de-seguimiento/internal/app"
)

// RestAPI wires the application dependencies into HTTP handlers.
type RestAPI struct {
	*app.Application

	rateLimiter *RateLimitMiddleware
	stopIndex   *stopIndex
	validate    *validator.Validate
}

func NewRestAPI(application *app.Application) *RestAPI {
	api := &RestAPI{
		Application: application,
		rateLimiter: NewRateLimitMiddleware(application.Config.RateLimit, time.Second, application.Config.ApiKeys, application.Clock),
		stopIndex:   newStopIndex(),
		validate:    validator.New(),
	}
	api.refreshStopIndex(context.Background())
	return api
}

// Shutdown stops the background goroutines owned by the API layer.
func (api *RestAPI) Shutdown() {
	api.rateLimiter.Stop()
}

// Routes builds the full handler chain. Extra registrars (the web UI)
// may mount additional routes on the same mux so they share the
// middleware stack.
func (api *RestAPI) Routes(extra ...func(*http.ServeMux)) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/lines", api.linesHandler)
	mux.HandleFunc("GET /api/v1/lines/{lineID}", api.lineDetailHandler)
	mux.HandleFunc("GET /api/v1/lines/{lineID}/stops/{stopID}/etas", api.etasForStopHandler)
	mux.HandleFunc("GET /api/v1/lines/{lineID}/vehicles", api.vehiclesForLineHandler)
	mux.HandleFunc("GET /api/v1/stops-for-location", api.stopsForLocationHandler)

	mux.HandleFunc("POST /api/v1/auth/login", api.loginHandler)
	mux.HandleFunc("POST /api/v1/auth/logout", api.logoutHandler)
	mux.HandleFunc("GET /api/v1/auth/session", api.sessionHandler)
	mux.HandleFunc("PUT /api/v1/auth/session/line", api.selectLineHandler)

	mux.HandleFunc("POST /api/v1/locations", api.ingestLocationHandler)

	mux.HandleFunc("POST /api/v1/admin/lines", api.requireAPIKey(api.createLineHandler))
	mux.HandleFunc("PUT /api/v1/admin/lines/{lineID}", api.requireAPIKey(api.updateLineHandler))
	mux.HandleFunc("DELETE /api/v1/admin/lines/{lineID}", api.requireAPIKey(api.deleteLineHandler))
	mux.HandleFunc("PUT /api/v1/admin/lines/{lineID}/stops", api.requireAPIKey(api.setLineStopsHandler))
	mux.HandleFunc("POST /api/v1/admin/stops", api.requireAPIKey(api.createStopHandler))
	mux.HandleFunc("PUT /api/v1/admin/stops/{stopID}", api.requireAPIKey(api.updateStopHandler))
	mux.HandleFunc("DELETE /api/v1/admin/stops/{stopID}", api.requireAPIKey(api.deleteStopHandler))
	mux.HandleFunc("POST /api/v1/admin/driver-codes", api.requireAPIKey(api.createDriverCodeHandler))
	mux.HandleFunc("DELETE /api/v1/admin/driver-codes/{codeID}", api.requireAPIKey(api.revokeDriverCodeHandler))
	mux.HandleFunc("GET /api/v1/admin/location-stats", api.requireAPIKey(api.locationStatsHandler))
	mux.HandleFunc("DELETE /api/v1/admin/locations", api.requireAPIKey(api.purgeLocationsHandler))

	mux.HandleFunc("GET /health", api.healthHandler)
	if api.Metrics != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(api.Metrics.Registry, promhttp.HandlerOpts{}))
	}

	for _, register := range extra {
		register(mux)
	}

	var handler http.Handler = mux
	handler = GzipMiddleware(handler)
	handler = api.rateLimiter.Handler()(handler)
	handler = MetricsHandler(api.Metrics)(handler)
	handler = NewRequestLoggingMiddleware(api.Logger)(handler)
	handler = RequestIDMiddleware(handler)
	return handler
}

// requireAPIKey guards admin endpoints behind the configured API keys.
func (api *RestAPI) requireAPIKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.sendUnauthorized(w, r)
			return
		}
		next(w, r)
	}
}
