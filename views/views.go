// Package views is the presentation layer. It renders read-only
// projections of domain objects and never mutates them.
package views

import (
	"embed"
	"html/template"
	"net/http"
	"regexp"
	"time"

	"github.com/sirupsen/logrus"
)

//go:embed templates
var templateFS embed.FS

// Data is the projection handed to a template.
type Data map[string]interface{}

var tagPattern = regexp.MustCompile(`<(?:.|\n)*?>`)

var helpers = template.FuncMap{
	"formatDate": func(t time.Time) string {
		return t.Format("Jan 2 2006, 3:04 PM")
	},
	"truncate": func(s string, n int) string {
		if len(s) <= n {
			return s
		}
		return s[:n] + "..."
	},
	"stripTags": func(s string) string {
		return tagPattern.ReplaceAllString(s, "")
	},
}

var pages = map[string]*template.Template{}

func init() {
	names := []string{
		"login",
		"dashboard",
		"stories/index",
		"stories/show",
		"stories/add",
		"stories/edit",
		"errors/404",
		"errors/500",
	}
	for _, name := range names {
		pages[name] = template.Must(
			template.New("main.html").Funcs(helpers).ParseFS(
				templateFS,
				"templates/layouts/main.html",
				"templates/"+name+".html",
			))
	}
}

// Render writes a page wrapped in the main layout.
func Render(w http.ResponseWriter, name string, data Data) {
	tmpl, ok := pages[name]
	if !ok {
		logrus.WithField("view", name).Error("unknown view")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		logrus.WithError(err).WithField("view", name).Error("failed to render view")
	}
}

// NotFound renders the generic not-found page.
func NotFound(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNotFound)
	Render(w, "errors/404", nil)
}

// ServerError renders the generic failure page. Details stay in the
// logs, never in the response.
func ServerError(w http.ResponseWriter) {
	w.WriteHeader(http.StatusInternalServerError)
	Render(w, "errors/500", nil)
}
