package mcptools

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/seenimoa/disciplineviz/internal/fetch"
	"github.com/seenimoa/disciplineviz/internal/logging"
	"github.com/seenimoa/disciplineviz/internal/render"
	"github.com/seenimoa/disciplineviz/internal/viewmodel"
	"github.com/seenimoa/disciplineviz/pkg/models"
)

type stubFetcher struct {
	fail map[models.Category]error
}

func (f stubFetcher) Fetch(_ context.Context, c models.Category) ([]models.Record, error) {
	if err := f.fail[c]; err != nil {
		return nil, err
	}
	return []models.Record{{
		models.FieldName:       c.SubGroup(),
		models.FieldValue:      7.5,
		models.FieldStudents:   15.0,
		models.FieldEnrollment: 200.0,
	}}, nil
}

func newTools(f fetch.Fetcher) *Tools {
	return New(f, viewmodel.DefaultSchema(), render.DefaultChartConfig(), logging.Discard())
}

func call(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content: got %T, want mcp.TextContent", res.Content[0])
	}
	return tc.Text
}

// ── list_categories ──

func TestListCategories(t *testing.T) {
	res, err := newTools(stubFetcher{}).listCategories(context.Background(), call(nil))
	if err != nil {
		t.Fatal(err)
	}
	text := resultText(t, res)
	for _, c := range models.AllCategories() {
		if !strings.Contains(text, string(c)) {
			t.Errorf("missing category %q in:\n%s", c, text)
		}
	}
}

// ── fetch_category ──

func TestFetchCategory(t *testing.T) {
	res, err := newTools(stubFetcher{}).fetchCategory(context.Background(), call(map[string]interface{}{"category": "black"}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}
	text := resultText(t, res)
	if !strings.Contains(text, "Comparison: Black") {
		t.Errorf("missing title in:\n%s", text)
	}
	if !strings.Contains(text, "PctEnrollment") {
		t.Errorf("missing table in:\n%s", text)
	}
}

func TestFetchCategoryErrors(t *testing.T) {
	tools := newTools(stubFetcher{fail: map[models.Category]error{
		models.CategoryHispanic: &fetch.NetworkError{Err: errors.New("refused")},
	}})
	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"missing", nil, "category is required"},
		{"blank", map[string]interface{}{"category": "  "}, "category is required"},
		{"unknown", map[string]interface{}{"category": "Martians"}, "Martians"},
		{"fetch failure", map[string]interface{}{"category": "Hispanic"}, "Failed to fetch data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tools.fetchCategory(context.Background(), call(tt.args))
			if err != nil {
				t.Fatal(err)
			}
			if !res.IsError {
				t.Error("expected an error result")
			}
			if text := resultText(t, res); !strings.Contains(text, tt.want) {
				t.Errorf("got %q, want it to contain %q", text, tt.want)
			}
		})
	}
}

// ── compare_categories ──

func TestCompareCategoriesKeepsOrder(t *testing.T) {
	res, err := newTools(stubFetcher{}).compareCategories(context.Background(),
		call(map[string]interface{}{"categories": "Low-income students, Black"}))
	if err != nil {
		t.Fatal(err)
	}
	text := resultText(t, res)
	if !strings.Contains(text, "Comparison: Low-income students, Black") {
		t.Errorf("title should follow request order:\n%s", text)
	}
}

func TestCompareAllByDefault(t *testing.T) {
	res, err := newTools(stubFetcher{}).compareCategories(context.Background(), call(nil))
	if err != nil {
		t.Fatal(err)
	}
	text := resultText(t, res)
	for _, c := range models.AllCategories() {
		if !strings.Contains(text, c.SubGroup()) {
			t.Errorf("missing subgroup %q in:\n%s", c.SubGroup(), text)
		}
	}
}

// ── export_chart ──

func TestExportChart(t *testing.T) {
	out := filepath.Join(t.TempDir(), "chart.svg")
	res, err := newTools(stubFetcher{}).exportChart(context.Background(),
		call(map[string]interface{}{"output_path": out, "categories": "Black"}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Error("export is not an SVG")
	}
}

func TestExportChartBadFormat(t *testing.T) {
	res, _ := newTools(stubFetcher{}).exportChart(context.Background(),
		call(map[string]interface{}{"output_path": filepath.Join(t.TempDir(), "chart.gif")}))
	if !res.IsError {
		t.Error("expected an error result for .gif")
	}
}

// ── ParseList ──

func TestParseList(t *testing.T) {
	got, err := ParseList("Black, black ,,Hispanic")
	if err != nil {
		t.Fatal(err)
	}
	want := []models.Category{models.CategoryBlack, models.CategoryHispanic}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("ParseList: got %v, want %v", got, want)
	}

	if _, err := ParseList("Black,Nope"); !errors.Is(err, models.ErrUnknownCategory) {
		t.Errorf("want ErrUnknownCategory, got %v", err)
	}
}

func TestNewServerRegistersTools(t *testing.T) {
	if s := NewServer(newTools(stubFetcher{}), "test"); s == nil {
		t.Fatal("NewServer returned nil")
	}
}
