package handlers

import (
	"html/template"
	"net/http"
	"path/filepath"

	"go.uber.org/zap"
)

// PageHandler renders the dashboard page shell; everything on it talks to
// the JSON API from the browser.
type PageHandler struct {
	Logger *zap.Logger
}

// Dashboard handles GET / and serves the search and map UI.
func (ph *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	tmplPath := filepath.Join("web", "templates", "dashboard.html")
	tmpl, err := template.ParseFiles(tmplPath)
	if err != nil {
		ph.Logger.Error("failed to load dashboard template", zap.Error(err))
		http.Error(w, "Error loading template", http.StatusInternalServerError)
		return
	}

	data := struct {
		Title string
	}{
		Title: "FieldTrace",
	}

	if err := tmpl.Execute(w, data); err != nil {
		ph.Logger.Error("failed to render dashboard template", zap.Error(err))
		http.Error(w, "Error rendering template", http.StatusInternalServerError)
		return
	}
}
