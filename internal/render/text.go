package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/seenimoa/disciplineviz/internal/store"
	"github.com/seenimoa/disciplineviz/internal/viewmodel"
	"github.com/seenimoa/disciplineviz/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Plain-text renderer
// ════════════════════════════════════════════════════════════════════

// Text renders the comparison for a terminal: a heading, one bar per chart
// row scaled to width columns, and the data table.
func Text(s store.State, schema models.TableSchema, width int) string {
	if width <= 0 {
		width = 40
	}
	var sb strings.Builder
	line := strings.Repeat("═", 60)
	thinLine := strings.Repeat("─", 60)

	sb.WriteString(line + "\n")
	sb.WriteString("  " + PageTitle + "\n")
	sb.WriteString(line + "\n")

	if s.Err != "" {
		sb.WriteString(fmt.Sprintf("  Error: %s\n", s.Err))
		sb.WriteString(fmt.Sprintf("  %s\n", ErrorHint))
		sb.WriteString(thinLine + "\n")
	}
	if len(s.Selected) == 0 {
		sb.WriteString("  Select one or more categories above to view data\n")
		return sb.String()
	}

	sb.WriteString("  " + viewmodel.Title(s) + "\n")
	sb.WriteString(thinLine + "\n")
	sb.WriteString(Bars(viewmodel.ChartRows(s), width))
	sb.WriteString(thinLine + "\n")
	sb.WriteString(TextTable(viewmodel.BuildTable(viewmodel.TableRows(s), schema)))
	return sb.String()
}

// Bars draws one horizontal bar per row, longest bar width columns.
func Bars(rows []models.ChartRow, width int) string {
	if len(rows) == 0 {
		return "  No data\n"
	}
	maxVal := 0.0
	labelW := 0
	for _, r := range rows {
		if r.PctEnrollment > maxVal {
			maxVal = r.PctEnrollment
		}
		if n := utf8.RuneCountInString(string(r.Name)); n > labelW {
			labelW = n
		}
	}

	var sb strings.Builder
	for _, r := range rows {
		n := 0
		if maxVal > 0 {
			n = int(r.PctEnrollment / maxVal * float64(width))
		}
		sb.WriteString(fmt.Sprintf("  %s  %s %s  (%s)\n",
			pad(string(r.Name), labelW), strings.Repeat("█", n),
			formatCount(r.PctEnrollment), Tooltip(r)))
	}
	return sb.String()
}

// TextTable lays a table out in aligned columns.
func TextTable(t models.Table) string {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) {
				if n := utf8.RuneCountInString(cell); n > widths[i] {
					widths[i] = n
				}
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		parts := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = pad(cell, widths[i])
		}
		sb.WriteString("  " + strings.TrimRight(strings.Join(parts, "  "), " ") + "\n")
	}
	writeRow(t.Headers)
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	writeRow(sep)
	for _, row := range t.Rows {
		writeRow(row)
	}
	return sb.String()
}

func pad(s string, w int) string {
	n := utf8.RuneCountInString(s)
	if n >= w {
		return s
	}
	return s + strings.Repeat(" ", w-n)
}
