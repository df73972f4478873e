package fleetdb

import (
	"context"
	"time"

	"github.com/Joncarre/aplicacion-de-seguimiento/internal/eta"
)

// ETAStore adapts the SQLite store to the read-only view the estimation
// engine consumes.
type ETAStore struct {
	queries *Queries
}

func NewETAStore(client *Client) *ETAStore {
	return &ETAStore{queries: client.Queries}
}

var _ eta.Store = (*ETAStore)(nil)

func (s *ETAStore) GetOrderedStopsForLine(ctx context.Context, lineID string) ([]eta.StopPosition, error) {
	rows, err := s.queries.GetOrderedStopsForLine(ctx, lineID)
	if err != nil {
		return nil, err
	}
	stops := make([]eta.StopPosition, 0, len(rows))
	for _, row := range rows {
		stops = append(stops, eta.StopPosition{
			ID:            row.StopID,
			Lat:           row.Lat,
			Lon:           row.Lon,
			SequenceOrder: int(row.SequenceOrder),
		})
	}
	return stops, nil
}

func (s *ETAStore) GetActiveSessionsForLine(ctx context.Context, lineID string, now time.Time) ([]string, error) {
	return s.queries.GetActiveSessionIDsForLine(ctx, lineID, now)
}

func (s *ETAStore) GetLatestFix(ctx context.Context, sessionID string) (*eta.Fix, error) {
	locations, err := s.queries.GetRecentLocations(ctx, sessionID, 1)
	if err != nil {
		return nil, err
	}
	if len(locations) == 0 {
		return nil, nil
	}
	fix := locationToFix(locations[0])
	return &fix, nil
}

func (s *ETAStore) GetRecentFixes(ctx context.Context, sessionID string, limit int) ([]eta.Fix, error) {
	locations, err := s.queries.GetRecentLocations(ctx, sessionID, int64(limit))
	if err != nil {
		return nil, err
	}
	fixes := make([]eta.Fix, 0, len(locations))
	for _, l := range locations {
		fixes = append(fixes, locationToFix(l))
	}
	return fixes, nil
}

func locationToFix(l Location) eta.Fix {
	return eta.Fix{Lat: l.Lat, Lon: l.Lon, Timestamp: l.RecordedAt}
}
