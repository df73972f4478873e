package restapi

import (
	"net/http"
)

// etasForStopHandler returns the arrival estimates for every vehicle
// approaching the stop, closest first. An empty list is a normal answer,
// not an error.
func (api *RestAPI) etasForStopHandler(w http.ResponseWriter, r *http.Request) {
	lineID := r.PathValue("lineID")
	stopID := r.PathValue("stopID")

	etas := api.ETAService.ComputeETAsForStop(r.Context(), lineID, stopID)
	api.sendOK(w, r, etas)
}
