// Package view holds the embedded HTML templates and static assets of the
// onboarding pages.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"sort"

	"github.com/go-matchmaker/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page names.
const (
	Index         = "index"
	Login         = "login"
	Verify        = "verify"
	Questionnaire = "questionnaire"
	Dashboard     = "dashboard"
)

var pages = []string{Index, Login, Verify, Questionnaire, Dashboard}

// Data is the model every page is executed with. Fields a page doesn't use
// stay zero.
type Data struct {
	Flash  string
	Notice string
	UserID string
	Mode   domain.Mode
	User   *domain.User
	// Answers is sorted by question key.
	Answers []Answer
}

type Answer struct {
	Question string
	Value    string
}

// SortedAnswers flattens stored answers for display.
func SortedAnswers(m map[string]string) []Answer {
	out := make([]Answer, 0, len(m))
	for k, v := range m {
		out = append(out, Answer{Question: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Question < out[j].Question })
	return out
}

// Renderer executes the parsed page templates.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every page together with the shared layout.
func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render writes the named page. Output is buffered so a failing template
// never leaves a half-written response.
func (r *Renderer) Render(w io.Writer, name string, data Data) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Static serves the embedded static directory. Mount it under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
