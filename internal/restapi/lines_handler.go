package restapi

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/twpayne/go-polyline"

	"github.com/Joncarre/aplicacion-de-seguimiento/internal/models"
)

func (api *RestAPI) linesHandler(w http.ResponseWriter, r *http.Request) {
	rows, err := api.FleetDB.Queries.ListLines(r.Context())
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	lines := make([]models.Line, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, models.Line{ID: row.ID, Name: row.Name})
	}
	api.sendOK(w, r, lines)
}

// lineDetailHandler returns the line with its ordered stops and an encoded
// polyline of the stop-to-stop path for map rendering.
func (api *RestAPI) lineDetailHandler(w http.ResponseWriter, r *http.Request) {
	lineID := r.PathValue("lineID")

	line, err := api.FleetDB.Queries.GetLine(r.Context(), lineID)
	if errors.Is(err, sql.ErrNoRows) {
		api.sendNotFound(w, r)
		return
	}
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	rows, err := api.FleetDB.Queries.GetOrderedStopsForLine(r.Context(), lineID)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	stops := make([]models.StopOnLine, 0, len(rows))
	coords := make([][]float64, 0, len(rows))
	for _, row := range rows {
		stops = append(stops, models.StopOnLine{
			Stop:          models.Stop{ID: row.StopID, Name: row.Name, Lat: row.Lat, Lon: row.Lon},
			SequenceOrder: int(row.SequenceOrder),
		})
		coords = append(coords, []float64{row.Lat, row.Lon})
	}

	detail := models.LineDetail{
		Line:     models.Line{ID: line.ID, Name: line.Name},
		Stops:    stops,
		Polyline: string(polyline.EncodeCoords(coords)),
	}
	api.sendOK(w, r, detail)
}
