package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Well-known record fields.
const (
	FieldValue       = "value"       // plotted metric (PctEnrollment)
	FieldStudents    = "Students"    // students with at least one incident
	FieldEnrollment  = "Enrollment"  // subgroup enrollment
	FieldName        = "name"        // dataset subgroup label
	FieldIndex       = "index"       // row position in the filtered dataset
	FieldCategory    = "Category"    // discipline category, overwritten in table rows
	FieldIncidents   = "Incidents"   // incident count
	FieldAvgDuration = "AvgDuration" // average duration in days
)

// Record is one row returned by the data endpoint. Beyond the well-known
// fields it is opaque: every key is carried through untouched.
type Record map[string]any

// Value returns the plotted metric.
func (r Record) Value() float64 { return r.Number(FieldValue) }

// Students returns the Students count.
func (r Record) Students() float64 { return r.Number(FieldStudents) }

// Enrollment returns the Enrollment count.
func (r Record) Enrollment() float64 { return r.Number(FieldEnrollment) }

// Number returns the numeric value of key, or 0 when the key is missing or
// not numeric.
func (r Record) Number(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Display formats the value of key for a table cell. Missing keys render
// as the empty string.
func (r Record) Display(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	return out
}

// CloneRecords copies a record list, cloning each record.
func CloneRecords(recs []Record) []Record {
	if recs == nil {
		return nil
	}
	out := make([]Record, len(recs))
	for i, r := range recs {
		out[i] = r.Clone()
	}
	return out
}
