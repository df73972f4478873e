package webui

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Joncarre/aplicacion-de-seguimiento/internal/logging"
)

var allowedExtensions = map[string]bool{
	".html": true, ".css": true, ".js": true,
	".png": true, ".jpg": true, ".jpeg": true, ".svg": true,
	".ico": true, ".webmanifest": true,
}

func (webUI *WebUI) indexHandler(w http.ResponseWriter, r *http.Request) {
	webUI.serveAsset(w, r, "index.html")
}

func (webUI *WebUI) staticHandler(w http.ResponseWriter, r *http.Request) {
	webUI.serveAsset(w, r, r.PathValue("file"))
}

func (webUI *WebUI) serveAsset(w http.ResponseWriter, r *http.Request, fileName string) {
	root := webUI.App.Config.WebUIPath
	if root == "" {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	fileName = filepath.Base(fileName)

	ext := strings.ToLower(filepath.Ext(fileName))
	if !allowedExtensions[ext] {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	// Ensure no path traversal attempts
	if strings.Contains(fileName, "..") || strings.ContainsAny(fileName, `/\`) {
		http.Error(w, "Invalid file name", http.StatusBadRequest)
		return
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		http.Error(w, "Internal configuration error", http.StatusInternalServerError)
		return
	}
	absPath, err := filepath.Abs(filepath.Join(absRoot, fileName))
	if err != nil {
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	// Verify the resolved path is still within the asset directory.
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		logging.LogOperation(webUI.Logger, "path_traversal_attempt_blocked")
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	stat, err := os.Stat(absPath)
	if err != nil || stat.IsDir() {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	http.ServeFile(w, r, absPath)
}
