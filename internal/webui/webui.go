// Package webui serves the rider-facing static frontend and a
// development-only debug view of the running application.
package webui

import (
	"log/slog"
	"net/http"

	"github.com/Joncarre/aplicacion-de-seguimiento/internal/app"
)

// WebUI serves static assets from the configured directory.
type WebUI struct {
	App    *app.Application
	Logger *slog.Logger
}

func NewWebUI(application *app.Application) *WebUI {
	return &WebUI{
		App:    application,
		Logger: application.Logger.With(slog.String("component", "webui")),
	}
}

// SetRoutes mounts the static and debug handlers on the mux.
func (webUI *WebUI) SetRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", webUI.indexHandler)
	mux.HandleFunc("GET /assets/{file}", webUI.staticHandler)
	mux.HandleFunc("GET /debug", webUI.debugHandler)
}
