package echoweb

import (
	"bytes"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/listing"
)

type (
	navLink struct {
		Title    string
		Href     string
		Current  bool
		Writable bool
	}

	// pageData is what every page template is executed with.
	pageData struct {
		AppName string
		Title   string
		Session core.Session
		Signed  bool
		Nav     []navLink
		Notices []listing.Notice
		Data    interface{}
	}

	// renderer is an echo.Renderer over the embedded templates: one template set
	// per page, each made of the "_" partials plus the page file.
	renderer struct {
		pages map[string]*template.Template
	}
)

var _ echo.Renderer = (*renderer)(nil)

var funcs = template.FuncMap{
	"isTrue": func(b *bool) bool { return b != nil && *b },
}

func newRenderer(fsys fs.FS, strict bool) (*renderer, error) {
	paths, err := fs.Glob(fsys, "templates/*.gohtml")
	if err != nil {
		return nil, errors.Wrap(err, "listing templates")
	}

	var partials, pages []string
	for _, p := range paths {
		if strings.HasPrefix(path.Base(p), "_") {
			partials = append(partials, p)
		} else {
			pages = append(pages, p)
		}
	}

	r := &renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, p := range pages {
		name := strings.TrimSuffix(path.Base(p), path.Ext(p))
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(fsys, append(partials[:len(partials):len(partials)], p)...)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing template %q", name)
		}
		if strict {
			tmpl = tmpl.Option("missingkey=error")
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

// Render executes the "base" layout of page `name`. The page is rendered to a
// buffer first so that a failing template never sends half a page.
func (r *renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return errors.Errorf("unknown template %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return errors.Wrapf(err, "rendering %q", name)
	}
	_, err := buf.WriteTo(w)
	return err
}
