// Package render turns dashboard view models into output: an SVG bar chart,
// PNG/SVG exports, the HTML dashboard page and a plain-text summary for the
// terminal.
package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/seenimoa/disciplineviz/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// SVG Bar Chart
// ════════════════════════════════════════════════════════════════════

// ChartConfig holds rendering parameters for the comparison chart.
type ChartConfig struct {
	Width        int    // SVG width in pixels (default: 800)
	Height       int    // SVG height in pixels (default: 400)
	MarginTop    int    // top margin (default: 40)
	MarginRight  int    // right margin (default: 30)
	MarginBottom int    // bottom margin (default: 60)
	MarginLeft   int    // left margin (default: 70)
	BgColor      string // background color (default: "#ffffff")
	GridColor    string // grid line color (default: "#e8e8e8")
	TextColor    string // axis label color (default: "#333333")
	FontSize     int    // axis label font size (default: 11)
	Title        string // chart title
	XLabel       string // x-axis caption (default: "Subgroup")
	YLabel       string // y-axis caption (default: "PctEnrollment")
}

// DefaultChartConfig returns the default chart layout.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:        800,
		Height:       400,
		MarginTop:    40,
		MarginRight:  30,
		MarginBottom: 60,
		MarginLeft:   70,
		BgColor:      "#ffffff",
		GridColor:    "#e8e8e8",
		TextColor:    "#333333",
		FontSize:     11,
		XLabel:       "Subgroup",
		YLabel:       "PctEnrollment",
	}
}

// Sized returns the default config with the given dimensions. Non-positive
// values keep the defaults.
func Sized(width, height int) ChartConfig {
	cfg := DefaultChartConfig()
	if width > 0 {
		cfg.Width = width
	}
	if height > 0 {
		cfg.Height = height
	}
	return cfg
}

// plotArea returns the usable drawing area dimensions.
func (c ChartConfig) plotArea() (x, y, w, h int) {
	return c.MarginLeft, c.MarginTop,
		c.Width - c.MarginLeft - c.MarginRight,
		c.Height - c.MarginTop - c.MarginBottom
}

// BarChart generates an SVG vertical bar chart with one bar per chart row,
// filled with the row's category color. Each bar carries a tooltip of the
// form "Name: Students / Enrollment".
func BarChart(rows []models.ChartRow, cfg ChartConfig) string {
	if cfg.Width == 0 {
		title := cfg.Title
		cfg = DefaultChartConfig()
		cfg.Title = title
	}
	if len(rows) == 0 {
		return emptySVG(cfg, "No data")
	}

	px, py, pw, ph := cfg.plotArea()

	maxVal := 0.0
	for _, r := range rows {
		if r.PctEnrollment > maxVal {
			maxVal = r.PctEnrollment
		}
	}
	top := niceCeil(maxVal)

	n := len(rows)
	slot := float64(pw) / float64(n)
	barW := slot * 0.7
	if barW > 80 {
		barW = 80
	}

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg))
	sb.WriteString(fmt.Sprintf(`<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`,
		cfg.Width, cfg.Height, cfg.BgColor))
	if cfg.Title != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="20" font-size="14" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
			cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title)))
	}

	// Y grid and labels
	gridLines := 5
	for i := 0; i <= gridLines; i++ {
		v := top * float64(i) / float64(gridLines)
		y := py + ph - int(float64(ph)*float64(i)/float64(gridLines))
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-dasharray="3,3"/>`,
			px, y, px+pw, y, cfg.GridColor))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			px-5, y+4, cfg.FontSize, cfg.TextColor, formatTick(v)))
	}

	// Axes
	sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#999"/>`, px, py, px, py+ph))
	sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#999"/>`, px, py+ph, px+pw, py+ph))

	for i, r := range rows {
		cx := float64(px) + float64(i)*slot + slot/2
		bh := 0.0
		if top > 0 && r.PctEnrollment > 0 {
			bh = r.PctEnrollment / top * float64(ph)
		}
		by := float64(py+ph) - bh
		fill := r.Fill
		if fill == "" {
			fill = r.Category.Color()
		}
		sb.WriteString(fmt.Sprintf(`<g class="bar"><rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" rx="2"><title>%s</title></rect></g>`,
			cx-barW/2, by, barW, bh, fill, escapeXML(Tooltip(r))))
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
			cx, py+ph+16, cfg.FontSize, cfg.TextColor, escapeXML(string(r.Name))))
	}

	// Axis captions
	if cfg.XLabel != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
			px+pw/2, cfg.Height-12, cfg.FontSize, cfg.TextColor, escapeXML(cfg.XLabel)))
	}
	if cfg.YLabel != "" {
		sb.WriteString(fmt.Sprintf(`<text x="16" y="%d" font-size="%d" fill="%s" text-anchor="middle" transform="rotate(-90 16 %d)">%s</text>`,
			py+ph/2, cfg.FontSize, cfg.TextColor, py+ph/2, escapeXML(cfg.YLabel)))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// Tooltip is the hover text of a bar: the name followed by
// "Students / Enrollment".
func Tooltip(r models.ChartRow) string {
	return fmt.Sprintf("%s: %s / %s", r.Name, formatCount(r.Students), formatCount(r.Enrollment))
}

// niceCeil rounds v up to 1, 2 or 5 times a power of ten.
func niceCeil(v float64) float64 {
	if v <= 0 {
		return 1
	}
	exp := math.Pow(10, math.Floor(math.Log10(v)))
	for _, m := range []float64{1, 2, 5, 10} {
		if v <= m*exp {
			return m * exp
		}
	}
	return 10 * exp
}

func formatTick(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func formatCount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ════════════════════════════════════════════════════════════════════
// SVG Helpers
// ════════════════════════════════════════════════════════════════════

func svgHeader(cfg ChartConfig) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
}

func emptySVG(cfg ChartConfig, msg string) string {
	if cfg.Width == 0 {
		cfg.Width = 400
	}
	if cfg.Height == 0 {
		cfg.Height = 200
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="%d" height="%d" fill="#f5f5f5"/><text x="%d" y="%d" text-anchor="middle" fill="#999" font-size="14">%s</text></svg>`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height, cfg.Width/2, cfg.Height/2, escapeXML(msg))
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
