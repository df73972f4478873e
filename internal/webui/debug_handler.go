package webui

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/davecgh/go-spew/spew"

	"github.com/Joncarre/aplicacion-de-seguimiento/internal/appconf"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/logging"
)

//go:embed debug.html
var templateFS embed.FS

type debugData struct {
	Title string
	Pre   string
}

// debugHandler dumps the live configuration and store counters. Disabled
// in production, where it would leak operational detail.
func (webUI *WebUI) debugHandler(w http.ResponseWriter, r *http.Request) {
	if webUI.App.Config.Env == appconf.Production {
		http.NotFound(w, r)
		return
	}

	var title string
	var data any

	switch r.URL.Query().Get("dataType") {
	case "stats":
		title = "Location Stats"
		stats, err := webUI.App.CleanupJob.Stats(r.Context())
		if err != nil {
			logging.LogError(webUI.Logger, "failed to collect debug stats", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		data = stats
	default:
		title = "Configuration"
		data = webUI.App.Config
	}

	webUI.writeDebugData(w, title, data)
}

func (webUI *WebUI) writeDebugData(w http.ResponseWriter, title string, data any) {
	content := spew.Sdump(data)
	w.Header().Set("Content-Type", "text/html")

	tmpl, err := template.ParseFS(templateFS, "debug.html")
	if err != nil {
		logging.LogError(webUI.Logger, "failed to parse debug template", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := tmpl.Execute(w, debugData{Title: title, Pre: content}); err != nil {
		logging.LogError(webUI.Logger, "failed to execute debug template", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
