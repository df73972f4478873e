package fleetdb

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/OneBusAway/go-gtfs"

	"github.com/Joncarre/aplicacion-de-seguimiento/internal/logging"
)

// ImportGTFS seeds lines, stops and per-line stop ordering from a static
// GTFS zip. Each route becomes a line, and the line's stop order is taken
// from the first trip found for that route. Intended for bootstrapping an
// empty database; re-importing over existing rows fails on the primary
// keys.
func (c *Client) ImportGTFS(ctx context.Context, logger *slog.Logger, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read GTFS file: %w", err)
	}

	staticData, err := gtfs.ParseStatic(b, gtfs.ParseStaticOptions{})
	if err != nil {
		return fmt.Errorf("unable to parse GTFS data: %w", err)
	}

	logging.LogOperation(logger, "starting_gtfs_import",
		slog.String("path", path),
		slog.Int("routes", len(staticData.Routes)),
		slog.Int("stops", len(staticData.Stops)),
		slog.Int("warnings", len(staticData.Warnings)))

	inserted := 0
	for _, s := range staticData.Stops {
		// Lat/lon are optional for station-internal node types; a stop
		// without coordinates cannot participate in distance math.
		if s.Latitude == nil || s.Longitude == nil {
			continue
		}
		params := CreateStopParams{
			ID:   s.Id,
			Name: s.Name,
			Lat:  *s.Latitude,
			Lon:  *s.Longitude,
		}
		if err := c.Queries.CreateStop(ctx, params); err != nil {
			return fmt.Errorf("unable to create stop %s: %w", s.Id, err)
		}
		inserted++
	}

	for _, r := range staticData.Routes {
		name := r.ShortName
		if name == "" {
			name = r.LongName
		}
		if name == "" {
			name = r.Id
		}
		if err := c.Queries.CreateLine(ctx, CreateLineParams{ID: r.Id, Name: name}); err != nil {
			return fmt.Errorf("unable to create line %s: %w", r.Id, err)
		}
	}

	ordered := firstTripStopOrder(staticData)
	for lineID, stopIDs := range ordered {
		if err := c.SetLineStops(ctx, lineID, stopIDs); err != nil {
			return fmt.Errorf("unable to set stop order for line %s: %w", lineID, err)
		}
	}

	logging.LogOperation(logger, "gtfs_import_complete",
		slog.Int("lines", len(staticData.Routes)),
		slog.Int("stops", inserted),
		slog.Int("ordered_lines", len(ordered)))

	return nil
}

// firstTripStopOrder maps each route to the stop IDs of its first trip,
// sorted by stop sequence, skipping stops dropped for missing coordinates.
func firstTripStopOrder(staticData *gtfs.Static) map[string][]string {
	hasCoords := make(map[string]bool, len(staticData.Stops))
	for _, s := range staticData.Stops {
		if s.Latitude != nil && s.Longitude != nil {
			hasCoords[s.Id] = true
		}
	}

	ordered := make(map[string][]string)
	for _, t := range staticData.Trips {
		if _, done := ordered[t.Route.Id]; done || len(t.StopTimes) == 0 {
			continue
		}

		stopTimes := make([]gtfs.ScheduledStopTime, len(t.StopTimes))
		copy(stopTimes, t.StopTimes)
		sort.SliceStable(stopTimes, func(i, j int) bool {
			return stopTimes[i].StopSequence < stopTimes[j].StopSequence
		})

		var stopIDs []string
		seen := make(map[string]bool)
		for _, st := range stopTimes {
			if !hasCoords[st.Stop.Id] || seen[st.Stop.Id] {
				continue
			}
			seen[st.Stop.Id] = true
			stopIDs = append(stopIDs, st.Stop.Id)
		}
		if len(stopIDs) > 0 {
			ordered[t.Route.Id] = stopIDs
		}
	}
	return ordered
}
