package restapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/Joncarre/aplicacion-de-seguimiento/fleetdb"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/auth"
)

type loginRequest struct {
	Code   string `json:"code" validate:"required,numeric,len=10"`
	LineID string `json:"lineId,omitempty" validate:"omitempty"`
}

type selectLineRequest struct {
	LineID string `json:"lineId" validate:"required"`
}

// sessionResponse is the public projection of a session; the bcrypt-backed
// code never leaves the server.
type sessionResponse struct {
	Token     string    `json:"token"`
	LineID    string    `json:"lineId,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func toSessionResponse(session fleetdb.Session) sessionResponse {
	resp := sessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	}
	if session.LineID.Valid {
		resp.LineID = session.LineID.String
	}
	return resp
}

func (api *RestAPI) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := api.readJSON(r, &req); err != nil {
		api.sendBadRequest(w, r, "invalid login payload")
		return
	}

	session, err := api.AuthService.Login(r.Context(), req.Code, req.LineID)
	switch {
	case errors.Is(err, auth.ErrInvalidCode):
		api.sendUnauthorized(w, r)
	case errors.Is(err, auth.ErrCodeInUse):
		api.sendError(w, r, http.StatusConflict, "code already has an active session")
	case err != nil:
		api.serverErrorResponse(w, r, err)
	default:
		api.sendOK(w, r, toSessionResponse(session))
	}
}

func (api *RestAPI) logoutHandler(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		api.sendUnauthorized(w, r)
		return
	}

	err := api.AuthService.Logout(r.Context(), token)
	if errors.Is(err, auth.ErrInvalidSession) {
		api.sendUnauthorized(w, r)
		return
	}
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	api.sendOK(w, r, nil)
}

func (api *RestAPI) sessionHandler(w http.ResponseWriter, r *http.Request) {
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
	api.sendOK(w, r, toSessionResponse(session))
}

func (api *RestAPI) selectLineHandler(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		api.sendUnauthorized(w, r)
		return
	}

	var req selectLineRequest
	if err := api.readJSON(r, &req); err != nil {
		api.sendBadRequest(w, r, "invalid line selection payload")
		return
	}

	session, err := api.AuthService.SelectLine(r.Context(), token, req.LineID)
	if errors.Is(err, auth.ErrInvalidSession) {
		api.sendUnauthorized(w, r)
		return
	}
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	api.sendOK(w, r, toSessionResponse(session))
}
