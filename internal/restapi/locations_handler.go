package restapi

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Joncarre/aplicacion-de-seguimiento/fleetdb"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/auth"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/logging"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/publisher"
)

// MaxAccuracyMeters is the worst GPS accuracy accepted for a fix. Anything
// vaguer would poison the distance math downstream.
const MaxAccuracyMeters = 100.0

type locationRequest struct {
	Lat      float64  `json:"lat" validate:"min=-90,max=90"`
	Lon      float64  `json:"lon" validate:"min=-180,max=180"`
	Accuracy *float64 `json:"accuracy,omitempty" validate:"omitempty,min=0"`
	Speed    *float64 `json:"speed,omitempty" validate:"omitempty,min=0"`
	Heading  *float64 `json:"heading,omitempty" validate:"omitempty,min=0,max=360"`
}

// bearerToken extracts the session token from the Authorization header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if after, found := strings.CutPrefix(header, "Bearer "); found {
		return after
	}
	return ""
}

// ingestLocationHandler records one fix from a driver session and fans it
// out to NATS subscribers.
func (api *RestAPI) ingestLocationHandler(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		api.sendUnauthorized(w, r)
		return
	}

	session, err := api.AuthService.ValidateSession(r.Context(), token)
	if errors.Is(err, auth.ErrInvalidSession) {
		api.sendUnauthorized(w, r)
		return
	}
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	if !session.LineID.Valid {
		api.sendBadRequest(w, r, "session has no line selected")
		return
	}

	var req locationRequest
	if err := api.readJSON(r, &req); err != nil {
		if api.Metrics != nil {
			api.Metrics.CountLocationRejected()
		}
		api.sendBadRequest(w, r, "invalid location payload")
		return
	}
	if req.Accuracy != nil && *req.Accuracy > MaxAccuracyMeters {
		if api.Metrics != nil {
			api.Metrics.CountLocationRejected()
		}
		api.sendBadRequest(w, r, "fix accuracy too low")
		return
	}

	recordedAt := api.Clock.Now()
	params := fleetdb.InsertLocationParams{
		SessionID:  session.ID,
		LineID:     session.LineID.String,
		Lat:        req.Lat,
		Lon:        req.Lon,
		Accuracy:   toNullFloat64(req.Accuracy),
		Speed:      toNullFloat64(req.Speed),
		Heading:    toNullFloat64(req.Heading),
		RecordedAt: recordedAt,
	}
	if err := api.FleetDB.Queries.InsertLocation(r.Context(), params); err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	if api.Metrics != nil {
		api.Metrics.CountLocationIngested(session.LineID.String)
	}

	// Best-effort fan-out; a broker outage must not fail the ingest.
	if api.Publisher != nil {
		msg := publisher.PositionMessage{
			SessionID:  session.ID,
			LineID:     session.LineID.String,
			Lat:        req.Lat,
			Lon:        req.Lon,
			Accuracy:   req.Accuracy,
			Speed:      req.Speed,
			Heading:    req.Heading,
			RecordedAt: recordedAt,
		}
		if err := api.Publisher.PublishPosition(msg); err != nil {
			logging.LogError(api.Logger, "failed to publish position", err,
				slog.String("session_id", session.ID))
		}
	}

	setJSONResponseType(&w)
	w.WriteHeader(http.StatusCreated)
	api.sendOK(w, r, map[string]any{"recordedAt": recordedAt})
}

func toNullFloat64(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
