package models

// ChartRow is one bar of the comparison chart.
type ChartRow struct {
	Name          Category `json:"name"`
	PctEnrollment float64  `json:"PctEnrollment"`
	Students      float64  `json:"Students"`
	Enrollment    float64  `json:"Enrollment"`
	Category      Category `json:"category"`
	Fill          string   `json:"fill"` // hex color of the category
}

// TableRow is a shallow copy of a Record with its Category field set to the
// selected category label.
type TableRow Record

// Category returns the category label the row was produced for.
func (t TableRow) Category() Category {
	switch v := t[FieldCategory].(type) {
	case Category:
		return v
	case string:
		return Category(v)
	}
	return ""
}

// Display formats the value of key for a table cell.
func (t TableRow) Display(key string) string {
	return Record(t).Display(key)
}

// Column names one table column. Key is the record field, Title the header.
type Column struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

// TableSchema is the explicit, ordered list of data columns shown after the
// leading Category column.
type TableSchema struct {
	Columns []Column `json:"columns"`
}

// Keys returns the record keys of the schema columns in order.
func (s TableSchema) Keys() []string {
	keys := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		keys[i] = c.Key
	}
	return keys
}

// Table is a fully rendered table: headers and string cells, aligned by
// column position.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}
