// Package view renders the book list page.
package view

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"

	"github.com/brianhealey/booklist/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

const pageTitle = "Books"

var (
	filtersOnce   sync.Once
	detailsPolicy = newDetailsPolicy()
)

// Renderer renders views to HTML. It is safe for concurrent use.
type Renderer struct {
	page *pongo2.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	filtersOnce.Do(registerFilters)

	files, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("view: open templates: %w", err)
	}
	set := pongo2.NewSet("booklist", pongo2.NewFSLoader(files))
	page, err := set.FromFile("page.html")
	if err != nil {
		return nil, fmt.Errorf("view: parse page template: %w", err)
	}
	return &Renderer{page: page}, nil
}

// Render writes the full page for v.
func (r *Renderer) Render(w io.Writer, v models.View) error {
	ctx := pongo2.Context{
		"title":   pageTitle,
		"books":   v.Books,
		"draft":   v.Draft,
		"editing": v.Draft.Editing(),
		"pending": v.PosterPending,
	}
	if err := r.page.ExecuteWriter(ctx, w); err != nil {
		return fmt.Errorf("view: render page: %w", err)
	}
	return nil
}

// RenderDetails turns free text into HTML that keeps line breaks. All other
// markup is stripped and the remaining text is escaped.
func RenderDetails(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return detailsPolicy.Sanitize(strings.ReplaceAll(s, "\n", "<br>"))
}

// newDetailsPolicy allows nothing but line breaks.
func newDetailsPolicy() *bluemonday.Policy {
	policy := bluemonday.StrictPolicy()
	policy.AllowElements("br")
	return policy
}

func registerFilters() {
	if !pongo2.FilterExists("details") {
		_ = pongo2.RegisterFilter("details", func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			return pongo2.AsSafeValue(RenderDetails(in.String())), nil
		})
	}
}
