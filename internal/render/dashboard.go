package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"net/url"

	"github.com/seenimoa/disciplineviz/internal/store"
	"github.com/seenimoa/disciplineviz/internal/viewmodel"
	"github.com/seenimoa/disciplineviz/pkg/models"
)

// PageTitle is the heading of the dashboard.
const PageTitle = "Student Data Filter & Visualizer"

// ErrorHint is the static hint shown under every error message.
const ErrorHint = "Make sure the data server is running and dashboard.data_url points at it"

var dashboardTmpl = template.Must(template.New("dashboard").Parse(DashboardTemplate))

// CategoryOption is one checkbox of the category picker.
type CategoryOption struct {
	Name    models.Category
	Path    string // path-escaped name for the toggle form action
	Color   string
	Checked bool
}

// Page is the template data of the dashboard.
type Page struct {
	Title           string
	Categories      []CategoryOption
	HasSelection    bool
	Loading         bool
	Error           string
	Hint            string
	ShowComparison  bool
	ShowEmpty       bool
	ComparisonTitle string
	ChartSVG        template.HTML
	Table           models.Table
}

// BuildPage derives the dashboard page from a store state. The comparison
// card and the empty-selection hint are both hidden while loading.
func BuildPage(s store.State, schema models.TableSchema, cfg ChartConfig) Page {
	p := Page{
		Title:        PageTitle,
		HasSelection: len(s.Selected) > 0,
		Loading:      s.Loading,
		Error:        s.Err,
	}
	if p.Error != "" {
		p.Hint = ErrorHint
	}
	for _, c := range models.AllCategories() {
		p.Categories = append(p.Categories, CategoryOption{
			Name:    c,
			Path:    url.PathEscape(string(c)),
			Color:   c.Color(),
			Checked: s.IsSelected(c),
		})
	}

	switch {
	case s.Loading:
	case len(s.Selected) > 0:
		p.ShowComparison = true
		p.ComparisonTitle = viewmodel.Title(s)
		// Chart markup is generated by BarChart, which escapes every text node.
		p.ChartSVG = template.HTML(BarChart(viewmodel.ChartRows(s), cfg))
		p.Table = viewmodel.BuildTable(viewmodel.TableRows(s), schema)
	default:
		p.ShowEmpty = true
	}
	return p
}

// Dashboard writes the dashboard page for s to w.
func Dashboard(w io.Writer, s store.State, schema models.TableSchema, cfg ChartConfig) error {
	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, BuildPage(s, schema, cfg)); err != nil {
		return fmt.Errorf("executing template: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}
