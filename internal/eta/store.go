// Package eta implements the arrival-time estimation engine: geodesic
// distance to stops, direction-of-travel inference from recent GPS fixes,
// route-topology-aware distance accumulation, and per-stop ranking of
// approaching vehicles.
package eta

import (
	"context"
	"time"
)

// StopPosition is one stop on a line, in route order.
type StopPosition struct {
	ID            string
	Lat           float64
	Lon           float64
	SequenceOrder int
}

// Fix is one recorded GPS sample for a session.
type Fix struct {
	Lat       float64
	Lon       float64
	Timestamp time.Time
}

// Store is the read-only view over the data store consumed by the engine.
// Implementations must return stops ordered ascending by sequence order and
// fixes ordered by timestamp descending.
type Store interface {
	// GetOrderedStopsForLine returns the line's stops ascending by sequence order.
	GetOrderedStopsForLine(ctx context.Context, lineID string) ([]StopPosition, error)

	// GetActiveSessionsForLine returns the IDs of sessions on the line that
	// are active and not expired as of now.
	GetActiveSessionsForLine(ctx context.Context, lineID string, now time.Time) ([]string, error)

	// GetLatestFix returns the most recent fix for a session, or nil when
	// the session has no fixes on record.
	GetLatestFix(ctx context.Context, sessionID string) (*Fix, error)

	// GetRecentFixes returns up to limit fixes ordered by timestamp descending.
	GetRecentFixes(ctx context.Context, sessionID string, limit int) ([]Fix, error)
}
