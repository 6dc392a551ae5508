package web

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/partsdesk/partsdesk/internal/core"
)

// Page templates are embedded so the binary ships self-contained.
//
//go:embed templates/*.html
var templateFiles embed.FS

// templateSet holds the parsed page templates.
type templateSet struct {
	t *template.Template
}

func newTemplateSet() *templateSet {
	funcs := template.FuncMap{
		"formatCell": core.FormatCell,
	}
	return &templateSet{
		t: template.Must(template.New("").Funcs(funcs).ParseFS(templateFiles, "templates/*.html")),
	}
}

// render executes the named page template. A failure partway through
// leaves the response truncated, so it is only logged.
func (ts *templateSet) render(w http.ResponseWriter, status int, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := ts.t.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("template render failed", "template", name, "error", err)
	}
}
