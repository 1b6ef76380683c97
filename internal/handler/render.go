package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Richardv10/food-blog/internal/auth"
)

const layoutFile = "templates/layout.html"

// Renderer executes page templates inside the shared layout.
type Renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// NewRenderer parses every page under templates/ in fsys together with the
// layout. imageURL resolves stored image keys for templates.
func NewRenderer(fsys fs.FS, imageURL func(string) string, logger *slog.Logger) (*Renderer, error) {
	funcs := template.FuncMap{
		"date": func(t time.Time) string { return t.Format("Jan 2, 2006") },
		"imageURL": func(key string) string {
			if imageURL == nil {
				return ""
			}
			return imageURL(key)
		},
	}

	files, err := fs.Glob(fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	pages := make(map[string]*template.Template)
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		tmpl, err := template.New("").Funcs(funcs).ParseFS(fsys, layoutFile, file)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		name := strings.TrimSuffix(strings.TrimPrefix(file, "templates/"), ".html")
		pages[name] = tmpl
	}
	return &Renderer{pages: pages, logger: logger}, nil
}

// Render writes page with status. The current user and any pending flash
// message are added to data.
func (rn *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page string, data map[string]any) {
	tmpl, ok := rn.pages[page]
	if !ok {
		rn.logger.Error("unknown template", "page", page)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = map[string]any{}
	}
	var user *auth.AuthContext
	if ac, ok := auth.FromContext(r.Context()); ok {
		user = &ac
	}
	data["CurrentUser"] = user
	data["Flash"] = popFlash(w, r)

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		rn.logger.Error("template error", "page", page, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// Error renders the error page.
func (rn *Renderer) Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	rn.Render(w, r, status, "error", map[string]any{
		"Title":   http.StatusText(status),
		"Message": message,
	})
}
