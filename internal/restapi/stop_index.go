package restapi

import (
	"context"
	"sort"
	"sync"

	"github.com/tidwall/rtree"

	"github.com/Joncarre/aplicacion-de-seguimiento/internal/logging"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/models"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/utils"
)

// stopIndex is an in-memory spatial index over all stops, rebuilt after
// admin stop mutations. Points are stored as [lon, lat].
type stopIndex struct {
	mu   sync.RWMutex
	tree rtree.RTreeG[models.Stop]
}

func newStopIndex() *stopIndex {
	return &stopIndex{}
}

func (idx *stopIndex) replace(stops []models.Stop) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.tree = rtree.RTreeG[models.Stop]{}
	for _, stop := range stops {
		point := [2]float64{stop.Lon, stop.Lat}
		idx.tree.Insert(point, point, stop)
	}
}

// nearby returns stops within radius meters of (lat, lon), sorted by
// distance ascending. The bounding-box search over-approximates; exact
// distances filter the result.
func (idx *stopIndex) nearby(lat, lon, radius float64) []models.StopWithDistance {
	bounds := utils.CalculateBounds(lat, lon, radius)

	idx.mu.RLock()
	var candidates []models.Stop
	idx.tree.Search(
		[2]float64{bounds.MinLon, bounds.MinLat},
		[2]float64{bounds.MaxLon, bounds.MaxLat},
		func(_, _ [2]float64, stop models.Stop) bool {
			candidates = append(candidates, stop)
			return true
		})
	idx.mu.RUnlock()

	results := make([]models.StopWithDistance, 0, len(candidates))
	for _, stop := range candidates {
		d := utils.Distance(lat, lon, stop.Lat, stop.Lon)
		if d <= radius {
			results = append(results, models.StopWithDistance{Stop: stop, DistanceMeters: d})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].DistanceMeters < results[j].DistanceMeters
	})
	return results
}

// refreshStopIndex reloads the spatial index from the database.
func (api *RestAPI) refreshStopIndex(ctx context.Context) {
	rows, err := api.FleetDB.Queries.ListStops(ctx)
	if err != nil {
		logging.LogError(api.Logger, "failed to refresh stop index", err)
		return
	}

	stops := make([]models.Stop, 0, len(rows))
	for _, row := range rows {
		stops = append(stops, models.Stop{ID: row.ID, Name: row.Name, Lat: row.Lat, Lon: row.Lon})
	}
	api.stopIndex.replace(stops)
}
