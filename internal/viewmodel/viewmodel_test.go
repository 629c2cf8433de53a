package viewmodel

import (
	"reflect"
	"testing"

	"github.com/seenimoa/disciplineviz/internal/store"
	"github.com/seenimoa/disciplineviz/pkg/models"
)

func exampleState() store.State {
	s := store.NewState()
	s.Selected = []models.Category{models.CategoryAllStudents, models.CategoryBlack}
	s.Data = map[models.Category][]models.Record{
		models.CategoryAllStudents: {{"value": 50.0, "Students": 100.0, "Enrollment": 200.0}},
		models.CategoryBlack:       {{"value": 30.0, "Students": 30.0, "Enrollment": 100.0}},
	}
	return s
}

func TestChartRowsExample(t *testing.T) {
	got := ChartRows(exampleState())
	want := []models.ChartRow{
		{Name: "All Students", PctEnrollment: 50, Students: 100, Enrollment: 200, Category: "All Students", Fill: "#8b5cf6"},
		{Name: "Black", PctEnrollment: 30, Students: 30, Enrollment: 100, Category: "Black", Fill: "#4f46e5"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ChartRows:\n got %+v\nwant %+v", got, want)
	}
}

func TestTableRowsExample(t *testing.T) {
	s := exampleState()
	rows := TableRows(s)
	if len(rows) != 2 {
		t.Fatalf("len: got %d, want 2", len(rows))
	}
	if rows[0].Category() != models.CategoryAllStudents || rows[1].Category() != models.CategoryBlack {
		t.Errorf("categories: got %q, %q", rows[0].Category(), rows[1].Category())
	}
	if rows[1].Display("value") != "30" {
		t.Errorf("value: got %q", rows[1].Display("value"))
	}
	// Rows are copies: the stored records stay untouched.
	if _, ok := s.Data[models.CategoryBlack][0]["Category"]; ok {
		t.Error("TableRows mutated the stored record")
	}
}

func TestTableRowsOverwriteRecordCategory(t *testing.T) {
	s := store.NewState()
	s.Selected = []models.Category{models.CategoryHispanic}
	s.Data = map[models.Category][]models.Record{
		models.CategoryHispanic: {{"Category": "In-School Suspension", "value": 1.0}},
	}
	rows := TableRows(s)
	if rows[0].Category() != models.CategoryHispanic {
		t.Errorf("Category: got %q, want Hispanic", rows[0].Category())
	}
}

func TestRowsFollowSelectionOrderAndSkipMissing(t *testing.T) {
	s := exampleState()
	s.Selected = []models.Category{models.CategoryBlack, models.CategoryHispanic, models.CategoryAllStudents}
	s.Data[models.CategoryBlack] = append(s.Data[models.CategoryBlack], models.Record{"value": 31.0})

	chart := ChartRows(s)
	var names []models.Category
	for _, r := range chart {
		names = append(names, r.Name)
	}
	want := []models.Category{models.CategoryBlack, models.CategoryBlack, models.CategoryAllStudents}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("order: got %v, want %v", names, want)
	}
	if chart[1].PctEnrollment != 31 {
		t.Errorf("record order within category not kept: %+v", chart[1])
	}

	if n := RowCount(s); n != len(chart) || n != len(TableRows(s)) {
		t.Errorf("RowCount=%d chart=%d table=%d", n, len(chart), len(TableRows(s)))
	}
}

func TestEmptySelection(t *testing.T) {
	s := store.NewState()
	s.Selected = nil
	if rows := ChartRows(s); rows == nil || len(rows) != 0 {
		t.Errorf("ChartRows: want empty non-nil, got %#v", rows)
	}
	if rows := TableRows(s); rows == nil || len(rows) != 0 {
		t.Errorf("TableRows: want empty non-nil, got %#v", rows)
	}
}

func TestBuildTableAlignsBySchema(t *testing.T) {
	rows := []models.TableRow{
		{"Category": "Black", "index": 1.0, "name": "African American", "Students": 30.0, "Enrollment": 100.0, "value": 30.0},
		// Different key set and order: extra field, missing Enrollment.
		{"Category": "Hispanic", "Extra": "x", "value": 12.5, "Students": 5.0},
	}
	table := BuildTable(rows, DefaultSchema())

	wantHeaders := []string{"Category", "Students", "Enrollment", "PctEnrollment", "Incidents", "AvgDuration"}
	if !reflect.DeepEqual(table.Headers, wantHeaders) {
		t.Errorf("headers: got %v, want %v", table.Headers, wantHeaders)
	}
	want := [][]string{
		{"Black", "30", "100", "30", "", ""},
		{"Hispanic", "5", "", "12.5", "", ""},
	}
	if !reflect.DeepEqual(table.Rows, want) {
		t.Errorf("rows:\n got %v\nwant %v", table.Rows, want)
	}
}

func TestBuildTableDropsReservedColumns(t *testing.T) {
	schema := models.TableSchema{Columns: []models.Column{
		{Key: "index"}, {Key: "name"}, {Key: "Category"}, {Key: "Students"},
	}}
	table := BuildTable(nil, schema)
	if !reflect.DeepEqual(table.Headers, []string{"Category", "Students"}) {
		t.Errorf("headers: got %v", table.Headers)
	}
}

func TestTitle(t *testing.T) {
	if got := Title(exampleState()); got != "Comparison: All Students, Black" {
		t.Errorf("Title: got %q", got)
	}
}
