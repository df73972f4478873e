package restapi

import (
	"net/http"
	"strconv"
)

const defaultSearchRadiusMeters = 500.0

// stopsForLocationHandler returns stops within a radius of a point, sorted
// by distance.
func (api *RestAPI) stopsForLocationHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	lat, err := strconv.ParseFloat(query.Get("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		api.sendBadRequest(w, r, "lat must be a number between -90 and 90")
		return
	}
	lon, err := strconv.ParseFloat(query.Get("lon"), 64)
	if err != nil || lon < -180 || lon > 180 {
		api.sendBadRequest(w, r, "lon must be a number between -180 and 180")
		return
	}

	radius := defaultSearchRadiusMeters
	if raw := query.Get("radius"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil || radius <= 0 {
			api.sendBadRequest(w, r, "radius must be a positive number")
			return
		}
	}

	api.sendOK(w, r, api.stopIndex.nearby(lat, lon, radius))
}
