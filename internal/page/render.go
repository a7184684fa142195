package page

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

//go:embed home.md
var homeMarkdown []byte

// Renderer renders views to HTML.
type Renderer struct {
	tmpl *template.Template
}

type pageData struct {
	Title   string
	VisitID string
	View    View
}

// NewRenderer parses the page templates and renders the home page markdown.
func NewRenderer() (*Renderer, error) {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)
	var buf bytes.Buffer
	if err := md.Convert(homeMarkdown, &buf); err != nil {
		return nil, fmt.Errorf("rendering home markdown: %w", err)
	}
	home := template.HTML(buf.String())

	tmpl := template.New("page").Funcs(template.FuncMap{
		"homeHTML": func() template.HTML { return home },
	})
	for _, src := range []string{layoutTemplate, viewTemplate, homeTemplate, scriptTemplate} {
		if _, err := tmpl.Parse(src); err != nil {
			return nil, fmt.Errorf("parsing page template: %w", err)
		}
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Page renders a complete HTML document. visitID is empty for pages that do
// not track a visit.
func (r *Renderer) Page(w io.Writer, visitID string, v View) error {
	return r.tmpl.ExecuteTemplate(w, "layout", pageData{
		Title:   title(v),
		VisitID: visitID,
		View:    v,
	})
}

// Fragment renders only the view, as swapped into a live page.
func (r *Renderer) Fragment(w io.Writer, v View) error {
	return r.tmpl.ExecuteTemplate(w, "view", v)
}

func title(v View) string {
	switch v.Kind {
	case KindHome:
		return "zen-figurl"
	case KindInvalid:
		return "Invalid site URI"
	case KindNotFound:
		return "Site Not Found"
	default:
		return "zen-figurl site"
	}
}
