package restapi

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/Joncarre/aplicacion-de-seguimiento/fleetdb"
)

type lineRequest struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

type stopRequest struct {
	ID   string  `json:"id" validate:"required"`
	Name string  `json:"name" validate:"required"`
	Lat  float64 `json:"lat" validate:"min=-90,max=90"`
	Lon  float64 `json:"lon" validate:"min=-180,max=180"`
}

type lineStopsRequest struct {
	StopIDs []string `json:"stopIds" validate:"required,min=1,dive,required"`
}

func (api *RestAPI) createLineHandler(w http.ResponseWriter, r *http.Request) {
	var req lineRequest
	if err := api.readJSON(r, &req); err != nil {
		api.sendBadRequest(w, r, "invalid line payload")
		return
	}
	if err := api.FleetDB.Queries.CreateLine(r.Context(), fleetdb.CreateLineParams(req)); err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	api.sendOK(w, r, req)
}

func (api *RestAPI) updateLineHandler(w http.ResponseWriter, r *http.Request) {
	lineID := r.PathValue("lineID")

	var req struct {
		Name string `json:"name" validate:"required"`
	}
	if err := api.readJSON(r, &req); err != nil {
		api.sendBadRequest(w, r, "invalid line payload")
		return
	}

	if _, err := api.FleetDB.Queries.GetLine(r.Context(), lineID); errors.Is(err, sql.ErrNoRows) {
		api.sendNotFound(w, r)
		return
	} else if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	params := fleetdb.CreateLineParams{ID: lineID, Name: req.Name}
	if err := api.FleetDB.Queries.UpdateLine(r.Context(), params); err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	api.sendOK(w, r, params)
}

func (api *RestAPI) deleteLineHandler(w http.ResponseWriter, r *http.Request) {
	if err := api.FleetDB.Queries.DeleteLine(r.Context(), r.PathValue("lineID")); err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	api.sendOK(w, r, nil)
}

// setLineStopsHandler replaces the line's ordered stop list in one
// transaction.
func (api *RestAPI) setLineStopsHandler(w http.ResponseWriter, r *http.Request) {
	lineID := r.PathValue("lineID")

	var req lineStopsRequest
	if err := api.readJSON(r, &req); err != nil {
		api.sendBadRequest(w, r, "invalid stop list payload")
		return
	}

	if _, err := api.FleetDB.Queries.GetLine(r.Context(), lineID); errors.Is(err, sql.ErrNoRows) {
		api.sendNotFound(w, r)
		return
	} else if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	if err := api.FleetDB.SetLineStops(r.Context(), lineID, req.StopIDs); err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	api.sendOK(w, r, nil)
}

func (api *RestAPI) createStopHandler(w http.ResponseWriter, r *http.Request) {
	var req stopRequest
	if err := api.readJSON(r, &req); err != nil {
		api.sendBadRequest(w, r, "invalid stop payload")
		return
	}
	if err := api.FleetDB.Queries.CreateStop(r.Context(), fleetdb.CreateStopParams(req)); err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	api.refreshStopIndex(r.Context())
	api.sendOK(w, r, req)
}

func (api *RestAPI) updateStopHandler(w http.ResponseWriter, r *http.Request) {
	stopID := r.PathValue("stopID")

	var req struct {
		Name string  `json:"name" validate:"required"`
		Lat  float64 `json:"lat" validate:"min=-90,max=90"`
		Lon  float64 `json:"lon" validate:"min=-180,max=180"`
	}
	if err := api.readJSON(r, &req); err != nil {
		api.sendBadRequest(w, r, "invalid stop payload")
		return
	}

	if _, err := api.FleetDB.Queries.GetStop(r.Context(), stopID); errors.Is(err, sql.ErrNoRows) {
		api.sendNotFound(w, r)
		return
	} else if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	params := fleetdb.CreateStopParams{ID: stopID, Name: req.Name, Lat: req.Lat, Lon: req.Lon}
	if err := api.FleetDB.Queries.UpdateStop(r.Context(), params); err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	api.refreshStopIndex(r.Context())
	api.sendOK(w, r, params)
}

func (api *RestAPI) deleteStopHandler(w http.ResponseWriter, r *http.Request) {
	if err := api.FleetDB.Queries.DeleteStop(r.Context(), r.PathValue("stopID")); err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	api.refreshStopIndex(r.Context())
	api.sendOK(w, r, nil)
}

// createDriverCodeHandler mints a new driver code. The plaintext appears in
// this response and nowhere else.
func (api *RestAPI) createDriverCodeHandler(w http.ResponseWriter, r *http.Request) {
	code, err := api.AuthService.GenerateCode(r.Context())
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	api.sendOK(w, r, map[string]string{"code": code})
}

func (api *RestAPI) revokeDriverCodeHandler(w http.ResponseWriter, r *http.Request) {
	if err := api.AuthService.RevokeCode(r.Context(), r.PathValue("codeID")); err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	api.sendOK(w, r, nil)
}

func (api *RestAPI) locationStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := api.CleanupJob.Stats(r.Context())
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	api.sendOK(w, r, stats)
}

func (api *RestAPI) purgeLocationsHandler(w http.ResponseWriter, r *http.Request) {
	purged, err := api.CleanupJob.Purge(r.Context())
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	api.sendOK(w, r, map[string]int64{"purged": purged})
}
