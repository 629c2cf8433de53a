// Package dataset serves the per-category discipline records behind
// GET /api/data. It loads the state discipline CSV once, narrows it with a
// Filter and answers category queries from memory.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/seenimoa/disciplineviz/internal/infra"
	"github.com/seenimoa/disciplineviz/pkg/models"
)

// Columns is the fixed header applied to the CSV, positionally.
var Columns = []string{
	"School Year", "District Code", "District", "School Code", "Organization",
	"Race", "Gender", "Grade", "SpecialDemo", "Geography", "SubGroup",
	"Category", "Rowstatus", "Students", "Enrollment", "PctEnrollment",
	"Incidents", "AvgDuration",
}

var numericColumns = map[string]bool{
	"School Year": true, "District Code": true, "School Code": true,
	"Students": true, "Enrollment": true, "PctEnrollment": true,
	"Incidents": true, "AvgDuration": true,
}

// ErrBadHeader is returned when the CSV does not have the expected number
// of columns.
var ErrBadHeader = errors.New("unexpected column count")

// Filter narrows the raw dataset to the rows the dashboard compares.
type Filter struct {
	District           string
	SchoolYear         int
	Gender             string
	Grade              string
	DisciplineCategory string
}

// DefaultFilter is the statewide, all-gender, all-grade in-school
// suspension view for the 2025 school year.
func DefaultFilter() Filter {
	return Filter{
		District:           "State of Delaware",
		SchoolYear:         2025,
		Gender:             "All Students",
		Grade:              "All Students",
		DisciplineCategory: "In-School Suspension",
	}
}

type row struct {
	index       int
	subGroup    string
	category    string
	students    float64
	enrollment  float64
	pct         float64
	incidents   float64
	avgDuration float64
}

// Dataset is an in-memory, filtered view of the discipline CSV.
type Dataset struct {
	raw   [][]string
	rows  []row
	cache *infra.Cache
}

// Option configures a Dataset.
type Option func(*Dataset)

// WithCacheTTL memoises query results for ttl. Zero disables the cache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(d *Dataset) {
		if ttl > 0 {
			d.cache = infra.NewCache(ttl)
		}
	}
}

// Load reads and filters the CSV at path.
func Load(path string, f Filter, opts ...Option) (*Dataset, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer fh.Close()

	d, err := Parse(fh, f, opts...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return d, nil
}

// Parse reads CSV data from r. The first line is a header and is replaced
// by Columns; every later line is a data row. Empty and NaN numeric cells
// read as 0.
func Parse(r io.Reader, f Filter, opts ...Option) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty dataset: %w", ErrBadHeader)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) != len(Columns) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrBadHeader, len(header), len(Columns))
	}

	d := &Dataset{}
	for _, opt := range opts {
		opt(d)
	}

	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec) != len(Columns) {
			return nil, fmt.Errorf("line %d: %w: got %d, want %d", line, ErrBadHeader, len(rec), len(Columns))
		}
		for i, col := range Columns {
			if numericColumns[col] {
				rec[i] = normalizeNumber(rec[i])
			}
		}
		d.raw = append(d.raw, rec)
	}

	for i, rec := range d.raw {
		if !f.match(rec) {
			continue
		}
		d.rows = append(d.rows, row{
			index:       i,
			subGroup:    rec[col("SubGroup")],
			category:    rec[col("Category")],
			students:    number(rec[col("Students")]),
			enrollment:  number(rec[col("Enrollment")]),
			pct:         number(rec[col("PctEnrollment")]),
			incidents:   number(rec[col("Incidents")]),
			avgDuration: number(rec[col("AvgDuration")]),
		})
	}
	return d, nil
}

// Len returns the number of rows that passed the filter.
func (d *Dataset) Len() int { return len(d.rows) }

// RawLen returns the number of data rows in the source file.
func (d *Dataset) RawLen() int { return len(d.raw) }

// CachedQueries returns the number of memoised query results.
func (d *Dataset) CachedQueries() int {
	if d.cache == nil {
		return 0
	}
	return d.cache.Len()
}

// FlushCache drops every memoised query result.
func (d *Dataset) FlushCache() {
	if d.cache != nil {
		d.cache.Flush()
	}
}

// Query returns the records of category c sorted by name. Unknown
// categories yield an empty, non-nil slice.
func (d *Dataset) Query(c models.Category) []models.Record {
	key := string(c)
	if d.cache != nil {
		if v, ok := d.cache.Get(key); ok {
			return models.CloneRecords(v.([]models.Record))
		}
	}

	out := []models.Record{}
	subGroup := c.SubGroup()
	if subGroup != "" {
		for _, r := range d.rows {
			if r.subGroup != subGroup {
				continue
			}
			out = append(out, models.Record{
				models.FieldIndex:       r.index,
				models.FieldName:        r.subGroup,
				models.FieldCategory:    r.category,
				models.FieldStudents:    r.students,
				models.FieldEnrollment:  r.enrollment,
				models.FieldValue:       r.pct,
				models.FieldIncidents:   r.incidents,
				models.FieldAvgDuration: r.avgDuration,
			})
		}
		sort.SliceStable(out, func(i, j int) bool {
			return out[i][models.FieldName].(string) < out[j][models.FieldName].(string)
		})
	}

	if d.cache != nil {
		d.cache.Set(key, models.CloneRecords(out))
	}
	return out
}

// Fetch serves Query through the fetch.Fetcher interface so the dashboard
// can run directly off the file without an HTTP hop.
func (d *Dataset) Fetch(ctx context.Context, c models.Category) ([]models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownCategory, string(c))
	}
	return d.Query(c), nil
}

// UniqueValues lists the distinct values of a raw column in first-seen
// order.
func (d *Dataset) UniqueValues(column string) ([]string, error) {
	idx := col(column)
	if idx < 0 {
		return nil, fmt.Errorf("unknown column %q", column)
	}
	seen := map[string]bool{}
	var out []string
	for _, rec := range d.raw {
		v := rec[idx]
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out, nil
}

func (f Filter) match(rec []string) bool {
	if f.District != "" && rec[col("District")] != f.District {
		return false
	}
	if f.SchoolYear != 0 && int(number(rec[col("School Year")])) != f.SchoolYear {
		return false
	}
	if f.Gender != "" && rec[col("Gender")] != f.Gender {
		return false
	}
	if f.Grade != "" && rec[col("Grade")] != f.Grade {
		return false
	}
	if f.DisciplineCategory != "" && rec[col("Category")] != f.DisciplineCategory {
		return false
	}
	return true
}

func col(name string) int {
	for i, c := range Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// normalizeNumber maps empty and NaN cells to "0" and strips thousands
// separators.
func normalizeNumber(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" || strings.EqualFold(s, "nan") {
		return "0"
	}
	return s
}

func number(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0
	}
	return f
}
