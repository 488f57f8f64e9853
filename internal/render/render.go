// Package render executes the embedded HTML views.
package render

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page carries everything a view can show: validation errors, echoed form
// values, one-time flash messages, and the signed-in username.
type Page struct {
	Title    string
	Errors   []string
	Values   map[string]string
	Success  []string
	Failure  []string
	Username string
}

type Renderer struct {
	t   *template.Template
	log *slog.Logger
}

func New(log *slog.Logger) *Renderer {
	return &Renderer{
		t:   template.Must(template.ParseFS(templateFS, "templates/*.html")),
		log: log,
	}
}

// HTML renders the named view. The template runs against a buffer first so
// a rendering failure still produces a well-formed 500 response.
func (r *Renderer) HTML(w http.ResponseWriter, status int, name string, page Page) {
	var buf bytes.Buffer
	if err := r.t.ExecuteTemplate(&buf, name, page); err != nil {
		r.log.Error("render template", "template", name, "err", err)
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
