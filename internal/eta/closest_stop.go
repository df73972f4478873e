package eta

import (
	"errors"

	"github.com/Joncarre/aplicacion-de-seguimiento/internal/utils"
)

// ErrNoStops is returned when a stop lookup is attempted on an empty list.
var ErrNoStops = errors.New("stop list is empty")

// ClosestStopResult is the outcome of a nearest-stop lookup: the stop, its
// index in the ordered list, and the distance from the query point.
type ClosestStopResult struct {
	Stop           StopPosition
	Index          int
	DistanceMeters float64
}

// ClosestStop finds the stop with minimum great-circle distance to the
// given position. On an exact distance tie the earliest-indexed stop wins.
func ClosestStop(lat, lon float64, stops []StopPosition) (ClosestStopResult, error) {
	if len(stops) == 0 {
		return ClosestStopResult{}, ErrNoStops
	}

	result := ClosestStopResult{
		Stop:           stops[0],
		Index:          0,
		DistanceMeters: utils.Distance(lat, lon, stops[0].Lat, stops[0].Lon),
	}

	for i := 1; i < len(stops); i++ {
		d := utils.Distance(lat, lon, stops[i].Lat, stops[i].Lon)
		if d < result.DistanceMeters {
			result.Stop = stops[i]
			result.Index = i
			result.DistanceMeters = d
		}
	}

	return result, nil
}
