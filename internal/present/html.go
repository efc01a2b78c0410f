package present

import (
	"embed"
	"errors"
	"fmt"
	"html"
	"html/template"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/couchcryptid/birdflu-tracker/internal/dataset"
	"github.com/couchcryptid/birdflu-tracker/internal/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const pageTitle = "Bird Flu Tracker"

// Renderer produces the standalone map page, the dashboard page, and the
// error page.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"metricLabel": MetricLabel,
	}).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

type marker struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Popup string  `json:"popup"`
}

type mapOptions struct {
	CenterLat               float64
	CenterLon               float64
	Zoom                    int
	MaxClusterRadius        int
	DisableClusteringAtZoom int
}

type pageData struct {
	Title          string
	Map            mapOptions
	Markers        []marker
	Stats          []domain.Metric
	Missing        []domain.MissingKey
	UnmatchedCases int
	GeneratedAt    string
	Message        string
}

func newPageData(result *domain.Result) pageData {
	located := result.Located()
	markers := make([]marker, len(located))
	for i, r := range located {
		markers[i] = marker{
			Lat:   r.Coordinates.Latitude,
			Lon:   r.Coordinates.Longitude,
			Popup: Popup(r.CaseRecord),
		}
	}
	return pageData{
		Title: pageTitle,
		Map: mapOptions{
			CenterLat:               CenterLat,
			CenterLon:               CenterLon,
			Zoom:                    InitialZoom,
			MaxClusterRadius:        MaxClusterRadius,
			DisableClusteringAtZoom: DisableClusteringAtZoom,
		},
		Markers:        markers,
		Stats:          result.Stats.Metrics(),
		Missing:        result.Missing,
		UnmatchedCases: len(result.Records) - len(located),
		GeneratedAt:    result.GeneratedAt.Format("2006-01-02 15:04 MST"),
	}
}

// RenderMap writes the standalone clustered map.
func (r *Renderer) RenderMap(w io.Writer, result *domain.Result) error {
	return r.tmpl.ExecuteTemplate(w, "map.html.tmpl", newPageData(result))
}

// RenderDashboard writes the map with metric widgets and the missing-coordinates table.
func (r *Renderer) RenderDashboard(w io.Writer, result *domain.Result) error {
	return r.tmpl.ExecuteTemplate(w, "dashboard.html.tmpl", newPageData(result))
}

// RenderError writes a page that shows msg in place of the map.
func (r *Renderer) RenderError(w io.Writer, msg string) error {
	return r.tmpl.ExecuteTemplate(w, "error.html.tmpl", pageData{Title: pageTitle, Message: msg})
}

// Popup returns the marker popup HTML for a case. Field values are escaped.
func Popup(c domain.CaseRecord) string {
	return fmt.Sprintf("Date: %s<br>Species: %s<br>Strain: %s",
		html.EscapeString(c.CollectionDate),
		html.EscapeString(c.BirdSpecies),
		html.EscapeString(c.HPAIStrain),
	)
}

// MetricLabel turns a stat key such as "total_cases" into "Total Cases".
func MetricLabel(key string) string {
	// Casers hold state and are not safe for concurrent use.
	return cases.Title(language.English).String(strings.ReplaceAll(key, "_", " "))
}

// UserMessage maps a load error onto the text shown in place of the map.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, dataset.ErrDatasetNotFound):
		return "Data files not found. Please check the data directory."
	case errors.Is(err, dataset.ErrMissingColumn):
		return "Data files are missing required columns. Please check the CSV headers."
	default:
		return "Data could not be loaded. Please try again later."
	}
}
