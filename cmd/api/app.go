package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Joncarre/aplicacion-de-seguimiento/fleetdb"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/app"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/appconf"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/auth"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/cleanup"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/clock"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/eta"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/logging"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/metrics"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/publisher"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/restapi"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/webui"
)

const dbStatsInterval = 15 * time.Second

// ParseAPIKeys splits a comma-separated list of admin API keys,
// trimming whitespace around each key.
func ParseAPIKeys(apiKeys string) []string {
	if apiKeys == "" {
		return []string{}
	}
	keys := strings.Split(apiKeys, ",")
	for i, key := range keys {
		keys[i] = strings.TrimSpace(key)
	}
	return keys
}

// BuildApplication assembles the core application from the configuration:
// database, ETA engine, auth, cleanup job, metrics and the optional NATS
// fan-out.
func BuildApplication(cfg appconf.Config) (*app.Application, error) {
	logger := logging.NewLogger(cfg.Env, cfg.Verbose)
	clk := clock.RealClock{}

	db, err := fleetdb.NewClient(fleetdb.Config{
		DBPath:  cfg.DBPath,
		Env:     cfg.Env,
		Verbose: cfg.Verbose,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize fleet database: %w", err)
	}

	if cfg.GTFSPath != "" {
		if err := db.ImportGTFS(context.Background(), logger, cfg.GTFSPath); err != nil {
			logging.SafeCloseWithLogging(db, logger, "fleetdb")
			return nil, fmt.Errorf("failed to import GTFS data: %w", err)
		}
	}

	m := metrics.NewWithLogger(logger)
	m.StartDBStatsCollector(db.DB, dbStatsInterval)

	var pub *publisher.NATSPublisher
	if cfg.NATSURL != "" {
		pub, err = publisher.NewNATSPublisher(cfg.NATSURL, logger, m)
		if err != nil {
			m.Shutdown()
			logging.SafeCloseWithLogging(db, logger, "fleetdb")
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
	}

	coreApp := &app.Application{
		Config:      cfg,
		Logger:      logger,
		FleetDB:     db,
		ETAService:  eta.NewService(fleetdb.NewETAStore(db), logger, clk, m),
		AuthService: auth.NewService(db, logger, clk),
		CleanupJob:  cleanup.NewJob(db, logger, clk, m),
		Publisher:   pub,
		Clock:       clk,
		Metrics:     m,
	}
	return coreApp, nil
}

// CreateServer builds the HTTP server and the REST API it serves. The web
// UI routes are mounted on the same mux so they share the middleware stack.
func CreateServer(coreApp *app.Application, cfg appconf.Config) (*http.Server, *restapi.RestAPI) {
	api := restapi.NewRestAPI(coreApp)
	webUI := webui.NewWebUI(coreApp)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.Routes(webUI.SetRoutes),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return srv, api
}

// Run starts the server, the nightly cleanup job, and blocks until an
// interrupt or termination signal arrives, then shuts everything down.
func Run(coreApp *app.Application, cfg appconf.Config) error {
	srv, api := CreateServer(coreApp, cfg)

	coreApp.CleanupJob.Start()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logging.LogOperation(coreApp.Logger, "server_started",
			slog.String("addr", srv.Addr),
			slog.String("env", cfg.Env.String()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		shutdownComponents(coreApp, api)
		return err
	case <-ctx.Done():
	}

	logging.LogOperation(coreApp.Logger, "shutdown_started")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	shutdownComponents(coreApp, api)
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logging.LogOperation(coreApp.Logger, "shutdown_complete")
	return <-serverErr
}

func shutdownComponents(coreApp *app.Application, api *restapi.RestAPI) {
	api.Shutdown()
	coreApp.CleanupJob.Shutdown()
	if coreApp.Publisher != nil {
		coreApp.Publisher.Close()
	}
	if coreApp.Metrics != nil {
		coreApp.Metrics.Shutdown()
	}
	logging.SafeCloseWithLogging(coreApp.FleetDB, coreApp.Logger, "fleetdb")
}
