// Package viewmodel derives the chart and table projections from a store
// state. Every function is pure and recomputed on each render.
package viewmodel

import (
	"strings"

	"github.com/seenimoa/disciplineviz/internal/store"
	"github.com/seenimoa/disciplineviz/pkg/models"
)

// reservedKeys are record fields that never become table columns.
var reservedKeys = map[string]bool{
	models.FieldCategory: true,
	models.FieldIndex:    true,
	models.FieldName:     true,
}

// DefaultSchema is the column layout of the discipline data contract.
func DefaultSchema() models.TableSchema {
	return models.TableSchema{Columns: []models.Column{
		{Key: models.FieldStudents, Title: "Students"},
		{Key: models.FieldEnrollment, Title: "Enrollment"},
		{Key: models.FieldValue, Title: "PctEnrollment"},
		{Key: models.FieldIncidents, Title: "Incidents"},
		{Key: models.FieldAvgDuration, Title: "AvgDuration"},
	}}
}

// ChartRows flattens the selected categories' records into chart rows, in
// selection order then record order. Categories without data yet
// contribute nothing.
func ChartRows(s store.State) []models.ChartRow {
	rows := []models.ChartRow{}
	for _, c := range s.Selected {
		for _, r := range s.Data[c] {
			rows = append(rows, models.ChartRow{
				Name:          c,
				PctEnrollment: r.Value(),
				Students:      r.Students(),
				Enrollment:    r.Enrollment(),
				Category:      c,
				Fill:          c.Color(),
			})
		}
	}
	return rows
}

// TableRows flattens the selected categories' records into table rows: a
// shallow copy of each record with Category set to the category label.
func TableRows(s store.State) []models.TableRow {
	rows := []models.TableRow{}
	for _, c := range s.Selected {
		recs, ok := s.Data[c]
		if !ok {
			continue
		}
		for _, r := range recs {
			row := models.TableRow(r.Clone())
			row[models.FieldCategory] = string(c)
			rows = append(rows, row)
		}
	}
	return rows
}

// BuildTable lays rows out against schema. The first header is always
// Category; every cell is looked up by column key, so records with differing
// key sets stay aligned and missing fields render empty.
func BuildTable(rows []models.TableRow, schema models.TableSchema) models.Table {
	cols := make([]models.Column, 0, len(schema.Columns))
	for _, col := range schema.Columns {
		if reservedKeys[col.Key] {
			continue
		}
		cols = append(cols, col)
	}

	t := models.Table{
		Headers: make([]string, 0, len(cols)+1),
		Rows:    make([][]string, 0, len(rows)),
	}
	t.Headers = append(t.Headers, models.FieldCategory)
	for _, col := range cols {
		title := col.Title
		if title == "" {
			title = col.Key
		}
		t.Headers = append(t.Headers, title)
	}

	for _, row := range rows {
		cells := make([]string, 0, len(cols)+1)
		cells = append(cells, string(row.Category()))
		for _, col := range cols {
			cells = append(cells, row.Display(col.Key))
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// Title is the heading of the comparison card.
func Title(s store.State) string {
	names := make([]string, len(s.Selected))
	for i, c := range s.Selected {
		names[i] = string(c)
	}
	return "Comparison: " + strings.Join(names, ", ")
}

// RowCount is the number of chart (and table) rows the state produces.
func RowCount(s store.State) int {
	n := 0
	for _, c := range s.Selected {
		n += len(s.Data[c])
	}
	return n
}
