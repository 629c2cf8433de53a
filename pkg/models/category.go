// Package models defines the core data structures used throughout disciplineviz.
package models

import (
	"errors"
	"fmt"
	"strings"
)

// Category is one of the fixed demographic subgroups the dashboard compares.
type Category string

const (
	CategoryAllStudents  Category = "All Students"
	CategoryBlack        Category = "Black"
	CategoryHispanic     Category = "Hispanic"
	CategoryDisabilities Category = "Students with Disabilities"
	CategoryLowIncome    Category = "Low-income students"
)

// ErrUnknownCategory is returned when a label does not name a fixed category.
var ErrUnknownCategory = errors.New("unknown category")

var allCategories = []Category{
	CategoryAllStudents,
	CategoryBlack,
	CategoryHispanic,
	CategoryDisabilities,
	CategoryLowIncome,
}

var categoryColors = map[Category]string{
	CategoryAllStudents:  "#8b5cf6",
	CategoryBlack:        "#4f46e5",
	CategoryHispanic:     "#10b981",
	CategoryDisabilities: "#f59e0b",
	CategoryLowIncome:    "#ef4444",
}

// categorySubGroups maps each category to the SubGroup value used in the
// discipline dataset.
var categorySubGroups = map[Category]string{
	CategoryAllStudents:  "All Students",
	CategoryBlack:        "African American",
	CategoryHispanic:     "Hispanic/Latino",
	CategoryDisabilities: "Students with Disabilities",
	CategoryLowIncome:    "Low Income",
}

// AllCategories returns the fixed categories in display order.
// The returned slice is a fresh copy.
func AllCategories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

// ParseCategory resolves a label to a Category. Matching is exact after
// trimming surrounding whitespace, falling back to a case-insensitive match.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range allCategories {
		if string(c) == s {
			return c, nil
		}
	}
	for _, c := range allCategories {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	_, ok := categoryColors[c]
	return ok
}

// Color returns the display color for c, or a neutral grey for unknown values.
func (c Category) Color() string {
	if col, ok := categoryColors[c]; ok {
		return col
	}
	return "#9ca3af"
}

// SubGroup returns the dataset SubGroup label for c. Unknown categories
// map to the empty string, which matches no rows.
func (c Category) SubGroup() string {
	return categorySubGroups[c]
}

// String implements fmt.Stringer.
func (c Category) String() string { return string(c) }
