package app

import (
	"log/slog"

	"github.com/Joncarre/aplicacion-de-seguimiento/fleetdb"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/appconf"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/auth"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/cleanup"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/clock"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/eta"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/metrics"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/publisher"
)

// Application holds the dependencies for our HTTP handlers, helpers,
// and middleware.
type Application struct {
	Config      appconf.Config
	Logger      *slog.Logger
	FleetDB     *fleetdb.Client
	ETAService  *eta.Service
	AuthService *auth.Service
	CleanupJob  *cleanup.Job
	Publisher   *publisher.NATSPublisher
	Clock       clock.Clock
	Metrics     *metrics.Metrics
}
