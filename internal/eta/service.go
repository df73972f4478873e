package eta

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Joncarre/aplicacion-de-seguimiento/internal/clock"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/logging"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/metrics"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/models"
)

// MaxEstimatedMinutes is the exclusive upper bound on reported estimates.
// Anything at or above it is considered implausible (wraparound over a very
// long route, or a target unreachable within a sane horizon) and dropped.
const MaxEstimatedMinutes = 60

// Service computes per-stop arrival estimates over an injected store.
// It performs no writes and holds no cross-request state; every call is a
// fresh snapshot read.
type Service struct {
	store   Store
	logger  *slog.Logger
	clock   clock.Clock
	metrics *metrics.Metrics
}

// NewService creates an ETA service. metrics may be nil.
func NewService(store Store, logger *slog.Logger, clk clock.Clock, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   store,
		logger:  logger.With(slog.String("component", "eta")),
		clock:   clk,
		metrics: m,
	}
}

// ComputeETAsForStop returns the arrival estimates for every active vehicle
// on the line that is approaching the target stop, sorted ascending by
// estimated minutes.
//
// This method is the error boundary for the engine: a fault while
// processing one session excludes that session and never aborts the rest,
// and when nothing is computable the result is an empty slice, not an
// error. Upstream transport decides how to present "no buses approaching".
func (s *Service) ComputeETAsForStop(ctx context.Context, lineID, stopID string) []models.BusETA {
	start := s.clock.Now()

	etas := s.computeETAs(ctx, lineID, stopID)

	if s.metrics != nil {
		s.metrics.ObserveETAComputation(s.clock.Now().Sub(start), len(etas))
	}
	return etas
}

func (s *Service) computeETAs(ctx context.Context, lineID, stopID string) []models.BusETA {
	etas := make([]models.BusETA, 0)

	stops, err := s.store.GetOrderedStopsForLine(ctx, lineID)
	if err != nil {
		logging.LogError(s.logger, "failed to load stops for line", err, slog.String("line_id", lineID))
		return etas
	}

	var target *StopPosition
	for i := range stops {
		if stops[i].ID == stopID {
			target = &stops[i]
			break
		}
	}
	if target == nil {
		// Unresolvable target: empty result, not an error.
		return etas
	}

	sessionIDs, err := s.store.GetActiveSessionsForLine(ctx, lineID, s.clock.Now())
	if err != nil {
		logging.LogError(s.logger, "failed to load active sessions", err, slog.String("line_id", lineID))
		return etas
	}
	if len(sessionIDs) == 0 {
		return etas
	}

	for _, sessionID := range sessionIDs {
		busETA, ok := s.processSession(ctx, sessionID, *target, stops)
		if ok {
			etas = append(etas, busETA)
		}
	}

	sort.SliceStable(etas, func(i, j int) bool {
		return etas[i].EstimatedMinutes < etas[j].EstimatedMinutes
	})

	return etas
}

// processSession runs the per-vehicle pipeline: latest fix, nearest stop,
// approach verdict, estimate, plausibility filter. Any fault (including a
// panic from malformed data) skips the session so one bad record cannot
// blank out the whole stop's panel.
func (s *Service) processSession(ctx context.Context, sessionID string, target StopPosition, stops []StopPosition) (busETA models.BusETA, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logging.LogError(s.logger, "panic while processing session", fmt.Errorf("%v", r),
				slog.String("session_id", sessionID))
			s.countSkip("panic")
			ok = false
		}
	}()

	fix, err := s.store.GetLatestFix(ctx, sessionID)
	if err != nil {
		logging.LogError(s.logger, "failed to load latest fix", err, slog.String("session_id", sessionID))
		s.countSkip("store_error")
		return models.BusETA{}, false
	}
	if fix == nil {
		s.countSkip("no_fix")
		return models.BusETA{}, false
	}

	closest, err := ClosestStop(fix.Lat, fix.Lon, stops)
	if err != nil {
		s.countSkip("no_stops")
		return models.BusETA{}, false
	}

	verdict, err := s.approachVerdict(ctx, sessionID, target.Lat, target.Lon)
	if err != nil {
		logging.LogError(s.logger, "failed to infer direction", err, slog.String("session_id", sessionID))
		s.countSkip("store_error")
		return models.BusETA{}, false
	}
	if verdict != Approaching {
		// Indeterminate (fewer than two fixes) and receding vehicles are
		// both excluded, but counted separately so operators can tell a
		// cold-start session from one moving away.
		s.countSkip(verdict.String())
		return models.BusETA{}, false
	}

	estimate := EstimateAlongRoute(closest, target.ID, stops)
	if estimate.EstimatedMinutes <= 0 || estimate.EstimatedMinutes >= MaxEstimatedMinutes {
		s.countSkip("implausible_estimate")
		return models.BusETA{}, false
	}

	var nextStopOrder *int
	if closest.Index+1 < len(stops) {
		order := stops[closest.Index+1].SequenceOrder
		nextStopOrder = &order
	}

	return models.BusETA{
		SessionID:        sessionID,
		EstimatedMinutes: estimate.EstimatedMinutes,
		DistanceMeters:   estimate.DistanceMeters,
		IsApproaching:    true,
		CurrentStopOrder: closest.Stop.SequenceOrder,
		NextStopOrder:    nextStopOrder,
	}, true
}

func (s *Service) countSkip(reason string) {
	if s.metrics != nil {
		s.metrics.CountETASessionSkipped(reason)
	}
}
