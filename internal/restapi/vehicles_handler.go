package restapi

import (
	"net/http"

	"github.com/Joncarre/aplicacion-de-seguimiento/internal/models"
)

// vehiclesForLineHandler returns the latest fix of every active session on
// the line.
func (api *RestAPI) vehiclesForLineHandler(w http.ResponseWriter, r *http.Request) {
	lineID := r.PathValue("lineID")

	rows, err := api.FleetDB.Queries.GetLatestLocationsForLine(r.Context(), lineID, api.Clock.Now())
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	vehicles := make([]models.VehiclePosition, 0, len(rows))
	for _, row := range rows {
		v := models.VehiclePosition{
			SessionID: row.SessionID,
			Lat:       row.Lat,
			Lon:       row.Lon,
			Timestamp: row.RecordedAt,
		}
		if row.Speed.Valid {
			speed := row.Speed.Float64
			v.Speed = &speed
		}
		if row.Heading.Valid {
			heading := row.Heading.Float64
			v.Heading = &heading
		}
		vehicles = append(vehicles, v)
	}
	api.sendOK(w, r, vehicles)
}
