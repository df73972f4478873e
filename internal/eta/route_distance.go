package eta

import (
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/utils"
)

// routeDistance accumulates the stop-to-stop distance from the vehicle's
// current (nearest) stop index to the target stop index, walking the
// ordered stop list. It returns the summed meters and the number of
// consecutive-pair hops traversed.
//
// The stop sequence is treated as a one-directional circular service: when
// the vehicle has already passed the target (currentIdx > targetIdx) the
// route wraps around through the end of the list back to the start instead
// of running backward.
func routeDistance(stops []StopPosition, currentIdx, targetIdx int) (meters float64, hops int) {
	if currentIdx > targetIdx {
		// Vehicle is past the target on this pass: finish the loop first.
		for i := currentIdx; i < len(stops)-1; i++ {
			meters += utils.Distance(stops[i].Lat, stops[i].Lon, stops[i+1].Lat, stops[i+1].Lon)
			hops++
		}
		// Then continue from the start of the route up to the target.
		for i := 0; i < targetIdx; i++ {
			meters += utils.Distance(stops[i].Lat, stops[i].Lon, stops[i+1].Lat, stops[i+1].Lon)
			hops++
		}
		return meters, hops
	}

	for i := currentIdx; i < targetIdx; i++ {
		meters += utils.Distance(stops[i].Lat, stops[i].Lon, stops[i+1].Lat, stops[i+1].Lon)
		hops++
	}
	return meters, hops
}
