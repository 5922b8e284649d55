package server

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dharsanguruparan/cinebook/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{"list", "detail", "add", "error"}

// renderer implements echo.Renderer over one template set per page, each
// sharing the layout.
type renderer struct {
	templates map[string]*template.Template
}

func newRenderer() (*renderer, error) {
	base, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	r := &renderer{templates: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.templates[name] = t
	}
	return r, nil
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return t.ExecuteTemplate(w, "layout.html", data)
}

var funcs = template.FuncMap{
	"duration": model.FormatDuration,
	"price":    model.FormatPrice,
	"plural":   model.Pluralize,
	"bytes":    func(n int64) string { return humanize.Bytes(uint64(max(n, 0))) },
	"join":     strings.Join,
	"inc":      func(i int) int { return i + 1 },
	"preview":  previewURL,
	"statusClass": func(s model.Status) string {
		return strings.ToLower(strings.ReplaceAll(string(s), "_", "-"))
	},
}

// previewURL is where a staged entry is shown from: its inline data URL when
// the preview carries one, otherwise the media route streaming the staged
// bytes. Only image and video data URLs get past html/template's URL filter.
func previewURL(id uuid.UUID, p string) template.URL {
	if strings.HasPrefix(p, "data:image/") || strings.HasPrefix(p, "data:video/") {
		return template.URL(p)
	}
	return template.URL(mediaPath(id))
}

func mediaPath(id uuid.UUID) string {
	return "/add-movie/media/" + id.String()
}
