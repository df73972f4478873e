// Package metrics provides Prometheus metrics for the fleet-tracking service.
package metrics

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Registry is the Prometheus registry for this metrics instance
	Registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// ETA engine metrics
	ETAComputationsTotal   prometheus.Counter
	ETAComputationDuration prometheus.Histogram
	ETAResultsReturned     prometheus.Histogram
	ETASessionsSkipped     *prometheus.CounterVec

	// Location ingest metrics
	LocationsIngestedTotal *prometheus.CounterVec
	LocationsRejectedTotal prometheus.Counter
	LocationsPurgedTotal   prometheus.Counter

	// NATS fan-out metrics
	NATSPublishedTotal     prometheus.Counter
	NATSPublishErrorsTotal prometheus.Counter
	NATSPublishDuration    prometheus.Histogram
	NATSConnected          prometheus.Gauge

	// Database metrics
	DBConnectionsOpen  prometheus.Gauge
	DBConnectionsInUse prometheus.Gauge
	DBConnectionsIdle  prometheus.Gauge
	DBWaitSecondsTotal prometheus.Counter

	// logger for error reporting
	logger *slog.Logger

	// collectorStarted prevents spawning multiple collector goroutines
	collectorStarted atomic.Bool

	// cancel stops the DB stats collector goroutine
	cancel context.CancelFunc

	// wg tracks the DB stats collector goroutine for graceful shutdown
	wg sync.WaitGroup
}

// New creates and registers all application metrics with a new registry.
func New() *Metrics {
	return NewWithLogger(nil)
}

// NewWithLogger creates metrics with a logger for error reporting.
func NewWithLogger(logger *slog.Logger) *Metrics {
	registry := prometheus.NewRegistry()

	httpRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleet_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fleet_http_request_duration_seconds",
			Help:    "HTTP request latency distribution",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	etaComputationsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fleet_eta_computations_total",
		Help: "Total number of per-stop ETA computations",
	})

	etaComputationDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fleet_eta_computation_duration_seconds",
		Help:    "ETA computation latency distribution",
		Buckets: prometheus.DefBuckets,
	})

	etaResultsReturned := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fleet_eta_results_returned",
		Help:    "Number of vehicles returned per ETA computation",
		Buckets: []float64{0, 1, 2, 3, 5, 10, 20},
	})

	etaSessionsSkipped := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleet_eta_sessions_skipped_total",
			Help: "Sessions excluded from ETA results, by reason",
		},
		[]string{"reason"},
	)

	locationsIngestedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleet_locations_ingested_total",
			Help: "Accepted GPS fixes, by line",
		},
		[]string{"line"},
	)

	locationsRejectedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fleet_locations_rejected_total",
		Help: "GPS fixes rejected by validation or session checks",
	})

	locationsPurgedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fleet_locations_purged_total",
		Help: "Location rows deleted by the cleanup job",
	})

	natsPublishedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fleet_nats_published_total",
		Help: "Position messages published to NATS",
	})

	natsPublishErrorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fleet_nats_publish_errors_total",
		Help: "Failed NATS publishes",
	})

	natsPublishDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fleet_nats_publish_duration_seconds",
		Help:    "NATS publish latency distribution",
		Buckets: prometheus.DefBuckets,
	})

	natsConnected := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fleet_nats_connected",
		Help: "Whether the NATS connection is currently established",
	})

	dbConnectionsOpen := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fleet_db_connections_open",
		Help: "Number of open database connections",
	})

	dbConnectionsInUse := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fleet_db_connections_in_use",
		Help: "Number of database connections currently in use",
	})

	dbConnectionsIdle := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fleet_db_connections_idle",
		Help: "Number of idle database connections",
	})

	dbWaitSecondsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fleet_db_wait_seconds_total",
		Help: "Total time blocked waiting for a database connection",
	})

	// Register all metrics with the custom registry
	registry.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		etaComputationsTotal,
		etaComputationDuration,
		etaResultsReturned,
		etaSessionsSkipped,
		locationsIngestedTotal,
		locationsRejectedTotal,
		locationsPurgedTotal,
		natsPublishedTotal,
		natsPublishErrorsTotal,
		natsPublishDuration,
		natsConnected,
		dbConnectionsOpen,
		dbConnectionsInUse,
		dbConnectionsIdle,
		dbWaitSecondsTotal,
	)

	return &Metrics{
		Registry:               registry,
		HTTPRequestsTotal:      httpRequestsTotal,
		HTTPRequestDuration:    httpRequestDuration,
		ETAComputationsTotal:   etaComputationsTotal,
		ETAComputationDuration: etaComputationDuration,
		ETAResultsReturned:     etaResultsReturned,
		ETASessionsSkipped:     etaSessionsSkipped,
		LocationsIngestedTotal: locationsIngestedTotal,
		LocationsRejectedTotal: locationsRejectedTotal,
		LocationsPurgedTotal:   locationsPurgedTotal,
		NATSPublishedTotal:     natsPublishedTotal,
		NATSPublishErrorsTotal: natsPublishErrorsTotal,
		NATSPublishDuration:    natsPublishDuration,
		NATSConnected:          natsConnected,
		DBConnectionsOpen:      dbConnectionsOpen,
		DBConnectionsInUse:     dbConnectionsInUse,
		DBConnectionsIdle:      dbConnectionsIdle,
		DBWaitSecondsTotal:     dbWaitSecondsTotal,
		logger:                 logger,
	}
}

// ObserveETAComputation records one per-stop ETA computation.
func (m *Metrics) ObserveETAComputation(d time.Duration, resultCount int) {
	m.ETAComputationsTotal.Inc()
	m.ETAComputationDuration.Observe(d.Seconds())
	m.ETAResultsReturned.Observe(float64(resultCount))
}

// CountETASessionSkipped records a session excluded from ETA results.
func (m *Metrics) CountETASessionSkipped(reason string) {
	m.ETASessionsSkipped.WithLabelValues(reason).Inc()
}

// CountLocationIngested records an accepted GPS fix.
func (m *Metrics) CountLocationIngested(lineID string) {
	m.LocationsIngestedTotal.WithLabelValues(lineID).Inc()
}

// CountLocationRejected records a rejected GPS fix.
func (m *Metrics) CountLocationRejected() {
	m.LocationsRejectedTotal.Inc()
}

// CountLocationsPurged records rows removed by the cleanup job.
func (m *Metrics) CountLocationsPurged(count int64) {
	m.LocationsPurgedTotal.Add(float64(count))
}

// NATSPublishedInc records a successful publish.
func (m *Metrics) NATSPublishedInc() {
	m.NATSPublishedTotal.Inc()
}

// NATSPublishErrInc records a failed publish.
func (m *Metrics) NATSPublishErrInc() {
	m.NATSPublishErrorsTotal.Inc()
}

// PublishObserve records a publish latency sample.
func (m *Metrics) PublishObserve(d time.Duration) {
	m.NATSPublishDuration.Observe(d.Seconds())
}

// NATSSetConnected reflects connection state changes.
func (m *Metrics) NATSSetConnected(connected bool) {
	if connected {
		m.NATSConnected.Set(1)
	} else {
		m.NATSConnected.Set(0)
	}
}

// StartDBStatsCollector starts a goroutine that periodically collects database
// connection pool statistics and updates the corresponding metrics.
// The interval specifies how often to collect stats.
// This method is idempotent - calling it multiple times has no effect after the first call.
// Call Shutdown() to stop the collector.
func (m *Metrics) StartDBStatsCollector(db *sql.DB, interval time.Duration) {
	if db == nil {
		return
	}

	// Prevent spawning multiple collectors
	if !m.collectorStarted.CompareAndSwap(false, true) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	var lastWaitDuration time.Duration

	// Add to WaitGroup BEFORE exposing cancel to avoid race with Shutdown
	m.wg.Add(1)
	m.cancel = cancel

	go func() {
		defer m.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				if m.logger != nil {
					m.logger.Error("panic in DB stats collector", "error", r)
				}
			}
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				stats := db.Stats()
				m.DBConnectionsOpen.Set(float64(stats.OpenConnections))
				m.DBConnectionsInUse.Set(float64(stats.InUse))
				m.DBConnectionsIdle.Set(float64(stats.Idle))

				// Add the delta of wait duration since last check
				waitDelta := stats.WaitDuration - lastWaitDuration
				if waitDelta > 0 {
					m.DBWaitSecondsTotal.Add(waitDelta.Seconds())
				}
				lastWaitDuration = stats.WaitDuration

			case <-ctx.Done():
				return
			}
		}
	}()
}

// Shutdown stops the DB stats collector goroutine and waits for it to exit.
// This method is safe to call multiple times.
func (m *Metrics) Shutdown() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}
