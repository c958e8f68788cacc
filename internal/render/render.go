package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer turns a page name and its context mapping into a response body.
type Renderer interface {
	Render(w io.Writer, name string, data map[string]any) error
}

// Templates renders the embedded html/template pages, each wrapped in the shared layout.
type Templates struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("Jan 2, 2006")
	},
	"dict": func(kv ...any) (map[string]any, error) {
		if len(kv)%2 != 0 {
			return nil, fmt.Errorf("dict: odd number of arguments")
		}
		m := make(map[string]any, len(kv)/2)
		for i := 0; i < len(kv); i += 2 {
			key, ok := kv[i].(string)
			if !ok {
				return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
			}
			m[key] = kv[i+1]
		}
		return m, nil
	},
	"alertClass": func(level string) string {
		if level == "error" {
			return "alert-danger"
		}
		return "alert-" + level
	},
}

// New parses every page under templates/ together with the layout and partials.
func New() (*Templates, error) {
	entries, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	t := &Templates{pages: map[string]*template.Template{}}
	for _, entry := range entries {
		name := path.Base(entry)
		if name == "base.html" || name == "partials.html" {
			continue
		}
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/base.html", "templates/partials.html", entry)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		t.pages[name] = tmpl
	}
	return t, nil
}

// Render executes the named page into w. Nothing is written if execution fails.
func (t *Templates) Render(w io.Writer, name string, data map[string]any) error {
	tmpl, ok := t.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
