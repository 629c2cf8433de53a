package render

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/seenimoa/disciplineviz/pkg/models"
)

// Format is an export image format.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ErrNoRows is returned when an export is requested for an empty chart.
var ErrNoRows = errors.New("no chart rows to render")

// ParseFormat maps a file extension or format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "png", "":
		return FormatPNG, nil
	case "svg":
		return FormatSVG, nil
	}
	return "", fmt.Errorf("unsupported chart format %q (want png or svg)", s)
}

// Export renders rows as a bar chart image through go-chart.
func Export(w io.Writer, rows []models.ChartRow, cfg ChartConfig, format Format) error {
	if len(rows) == 0 {
		return ErrNoRows
	}
	if cfg.Width == 0 {
		cfg = DefaultChartConfig()
	}

	bc := exportChart(rows, cfg)
	provider := chart.PNG
	if format == FormatSVG {
		provider = chart.SVG
	}
	if err := bc.Render(provider, w); err != nil {
		return fmt.Errorf("render %s chart: %w", format, err)
	}
	return nil
}

// ExportFile renders rows to path. Nothing is written when rows is empty.
func ExportFile(path string, rows []models.ChartRow, cfg ChartConfig, format Format) error {
	if len(rows) == 0 {
		return ErrNoRows
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Export(f, rows, cfg, format); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func exportChart(rows []models.ChartRow, cfg ChartConfig) chart.BarChart {
	maxVal := 0.0
	bars := make([]chart.Value, 0, len(rows))
	for _, r := range rows {
		if r.PctEnrollment > maxVal {
			maxVal = r.PctEnrollment
		}
		fill := r.Fill
		if fill == "" {
			fill = r.Category.Color()
		}
		col := drawing.ColorFromHex(strings.TrimPrefix(fill, "#"))
		bars = append(bars, chart.Value{
			Value: r.PctEnrollment,
			Label: string(r.Name),
			Style: chart.Style{FillColor: col, StrokeColor: col},
		})
	}

	// Leave room for the y-axis and keep bars from overflowing the canvas.
	barWidth := (cfg.Width - 120) / len(rows) * 6 / 10
	if barWidth > 60 {
		barWidth = 60
	}
	if barWidth < 4 {
		barWidth = 4
	}

	return chart.BarChart{
		Title:      cfg.Title,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		Width:      cfg.Width,
		Height:     cfg.Height,
		BarWidth:   barWidth,
		YAxis: chart.YAxis{
			Name:  cfg.YLabel,
			Range: &chart.ContinuousRange{Min: 0, Max: niceCeil(maxVal)},
		},
		Bars: bars,
	}
}
