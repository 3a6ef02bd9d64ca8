// Package render projects a document into a standalone HTML page using
// one of the built-in templates. Rendering reads the document and never
// modifies it.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"regexp"
	"strconv"

	"github.com/custodia-labs/vitae/internal/core/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(
	template.New("").Funcs(template.FuncMap{
		"px":    func(n int) string { return strconv.Itoa(n) + "px" },
		"scale": func(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) },
		"color": colorCSS,
		"paper": paperCSS,
		"wide":  func(l domain.Layout) bool { return l.Columns >= 2 },
	}).ParseFS(templateFS, "templates/*.html"),
)

// HTML writes doc as a standalone HTML page using tmpl. Unknown templates
// render as classic.
func HTML(w io.Writer, doc domain.Document, tmpl domain.Template) error {
	if !tmpl.IsValid() {
		tmpl = domain.DefaultTemplate
	}
	view := Build(doc)
	if view.Theme.FontScale <= 0 {
		view.Theme.FontScale = 1
	}
	if err := pages.ExecuteTemplate(w, string(tmpl)+".html", view); err != nil {
		return fmt.Errorf("render %s: %w", tmpl, err)
	}
	return nil
}

// paperCSS returns the @page size keyword for a paper.
func paperCSS(p domain.Paper) string {
	if p == domain.PaperLetter {
		return "letter"
	}
	return "A4"
}

var colorPattern = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[a-zA-Z]+)$`)

// colorCSS passes hex colours and colour names through unescaped; anything
// else becomes "inherit".
func colorCSS(s string) template.CSS {
	if colorPattern.MatchString(s) {
		return template.CSS(s)
	}
	return "inherit"
}
