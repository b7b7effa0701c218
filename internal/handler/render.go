// Package handler contains the HTTP request handlers.
//
// Handlers are the glue between HTTP and the services: they parse the
// request (path params, form fields, the resolved identity), call business
// logic, and emit a response — a rendered page or a redirect. No SQL, no
// bcrypt, no business rules live here.
package handler

import (
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
)

// Renderer is the templating collaborator: it takes already-validated data
// and produces markup. Templates are parsed once at startup, not per request.
type Renderer struct {
	templates *template.Template
	logger    *slog.Logger
}

// NewRenderer parses the HTML templates under templateDir.
//
// base.html defines the shared "head" and "header" partials; index.html and
// quote.html each define a whole-page template ("index", "quote") that pulls
// those partials in. Render selects the page by template name.
func NewRenderer(templateDir string, logger *slog.Logger) (*Renderer, error) {
	tmpl, err := template.ParseFiles(
		filepath.Join(templateDir, "base.html"),
		filepath.Join(templateDir, "index.html"),
		filepath.Join(templateDir, "quote.html"),
	)
	if err != nil {
		return nil, err
	}

	return &Renderer{templates: tmpl, logger: logger}, nil
}

// Render executes the named template. If execution fails mid-body the
// headers are already gone, so all we can do is log and send a 500 attempt.
func (rn *Renderer) Render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := rn.templates.ExecuteTemplate(w, name, data); err != nil {
		rn.logger.Error("failed to render template",
			slog.String("template", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
