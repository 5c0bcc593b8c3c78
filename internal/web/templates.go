package web

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/justestif/music-blast/internal/catalog"
)

// Templates manages HTML template rendering.
type Templates struct {
	templates map[string]*template.Template
	funcs     template.FuncMap
}

// NewTemplates loads templates from the given filesystem. A nil filesystem
// yields a manager with no pages.
func NewTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{
		templates: make(map[string]*template.Template),
		funcs:     defaultFuncs(),
	}

	if templatesFS == nil {
		return t, nil
	}
	if err := t.load(templatesFS); err != nil {
		return nil, err
	}
	return t, nil
}

// Render renders a page template with the given data.
func (t *Templates) Render(w io.Writer, page string, data any) error {
	tmpl, ok := t.templates[page]
	if !ok {
		return fmt.Errorf("template %q not found", page)
	}

	// Execute the "base" template which includes the page content
	return tmpl.ExecuteTemplate(w, "base", data)
}

// load parses every page together with the layouts and partials.
func (t *Templates) load(templatesFS fs.FS) error {
	layouts, err := fs.Glob(templatesFS, "layouts/*.html")
	if err != nil {
		return fmt.Errorf("finding layouts: %w", err)
	}

	partials, err := fs.Glob(templatesFS, "partials/*.html")
	if err != nil {
		return fmt.Errorf("finding partials: %w", err)
	}

	pages, err := fs.Glob(templatesFS, "pages/*.html")
	if err != nil {
		return fmt.Errorf("finding pages: %w", err)
	}

	common := append(layouts, partials...)

	for _, page := range pages {
		name := strings.TrimSuffix(filepath.Base(page), ".html")
		files := append([]string{page}, common...)

		tmpl, err := template.New(name).Funcs(t.funcs).ParseFS(templatesFS, files...)
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", name, err)
		}
		t.templates[name] = tmpl
	}

	return nil
}

func defaultFuncs() template.FuncMap {
	return template.FuncMap{
		// albumArt falls back to the placeholder cover.
		"albumArt": func(art *string) string {
			if art == nil || *art == "" {
				return catalog.PlaceholderArt
			}
			return *art
		},

		"deref": func(p *int) int {
			if p == nil {
				return 0
			}
			return *p
		},

		"oneDecimal": func(f float64) string {
			return fmt.Sprintf("%.1f", f)
		},
	}
}

// PageData contains common data passed to all page templates.
type PageData struct {
	Title       string
	PlayerID    string
	Flash       *FlashMessage
	CurrentPath string
}

// FlashMessage represents a notification shown at the top of a page.
type FlashMessage struct {
	Type    string // "success", "error", "info"
	Message string
}

// HomePageData contains data for the home page template.
type HomePageData struct {
	PageData
	DemoTracks []DemoTrack
	Summary    *SummaryData
}

// DemoTrack is a playable card from the built-in catalogue. The title is
// not exposed before the round.
type DemoTrack struct {
	ID     string
	Number int
}

// SummaryData is the player's score shown on the home page.
type SummaryData struct {
	Rounds      int
	Guessed     int
	TotalPoints int
	Eras        []EraData
}

// EraData is one era row in the summary.
type EraData struct {
	Name         string
	Count        int
	AverageError float64
}

// PlayPageData contains data for the play and result pages.
type PlayPageData struct {
	PageData
	RoundID  string
	TrackID  string
	Identity catalog.TrackIdentity
	Guess    *int
	Points   int
	Revealed bool
}
