// Package mcptools exposes the discipline data over the Model Context
// Protocol, so an assistant can list, fetch and compare categories.
package mcptools

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/seenimoa/disciplineviz/internal/fetch"
	"github.com/seenimoa/disciplineviz/internal/render"
	"github.com/seenimoa/disciplineviz/internal/store"
	"github.com/seenimoa/disciplineviz/internal/viewmodel"
	"github.com/seenimoa/disciplineviz/pkg/models"
)

// Tools holds what the tool handlers need.
type Tools struct {
	fetcher  fetch.Fetcher
	schema   models.TableSchema
	chartCfg render.ChartConfig
	logger   *slog.Logger
}

// New returns the tool set over f.
func New(f fetch.Fetcher, schema models.TableSchema, chartCfg render.ChartConfig, logger *slog.Logger) *Tools {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tools{fetcher: f, schema: schema, chartCfg: chartCfg, logger: logger}
}

// NewServer builds an MCP server with every tool registered.
func NewServer(t *Tools, version string) *server.MCPServer {
	s := server.NewMCPServer("disciplineviz", version)
	t.Register(s)
	return s
}

// Register registers all tools with the MCP server.
func (t *Tools) Register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("Lists the student categories that can be fetched and compared, with their dataset subgroup and chart color."),
	), t.listCategories)

	s.AddTool(mcp.NewTool("fetch_category",
		mcp.WithDescription("Fetches the discipline records of one student category and renders them as a text chart and table."),
		mcp.WithString("category",
			mcp.Required(),
			mcp.Description("Category name, e.g. \"Black\" or \"Low-income students\""),
		),
	), t.fetchCategory)

	s.AddTool(mcp.NewTool("compare_categories",
		mcp.WithDescription("Fetches several categories and renders them side by side in selection order. Omit categories to compare all of them."),
		mcp.WithString("categories",
			mcp.Description("Comma-separated category names"),
		),
	), t.compareCategories)

	s.AddTool(mcp.NewTool("export_chart",
		mcp.WithDescription("Renders the comparison chart of the given categories to a PNG or SVG file."),
		mcp.WithString("output_path",
			mcp.Required(),
			mcp.Description("Destination file. The extension .png or .svg selects the format"),
		),
		mcp.WithString("categories",
			mcp.Description("Comma-separated category names. Defaults to all categories"),
		),
	), t.exportChart)
}

func (t *Tools) listCategories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var sb strings.Builder
	sb.WriteString("Categories:\n")
	for _, c := range models.AllCategories() {
		sb.WriteString(fmt.Sprintf("  - %s (subgroup %q, color %s)\n", c, c.SubGroup(), c.Color()))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (t *Tools) fetchCategory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, ok := request.Params.Arguments["category"].(string)
	if !ok || strings.TrimSpace(name) == "" {
		return newToolResultError("category is required"), nil
	}
	c, err := models.ParseCategory(strings.TrimSpace(name))
	if err != nil {
		return newToolResultError(err.Error()), nil
	}

	st, err := t.selection(ctx, []models.Category{c})
	if err != nil {
		return newToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(render.Text(st, t.schema, 40)), nil
}

func (t *Tools) compareCategories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, _ := request.Params.Arguments["categories"].(string)
	cats, err := ParseList(raw)
	if err != nil {
		return newToolResultError(err.Error()), nil
	}

	st, err := t.selection(ctx, cats)
	if err != nil {
		return newToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(render.Text(st, t.schema, 40)), nil
}

func (t *Tools) exportChart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, ok := request.Params.Arguments["output_path"].(string)
	if !ok || out == "" {
		return newToolResultError("output_path is required"), nil
	}
	format, err := render.ParseFormat(strings.TrimPrefix(filepath.Ext(out), "."))
	if err != nil {
		return newToolResultError(err.Error()), nil
	}
	raw, _ := request.Params.Arguments["categories"].(string)
	cats, err := ParseList(raw)
	if err != nil {
		return newToolResultError(err.Error()), nil
	}

	st, err := t.selection(ctx, cats)
	if err != nil {
		return newToolResultError(err.Error()), nil
	}
	rows := viewmodel.ChartRows(st)
	if err := render.ExportFile(out, rows, t.chartCfg, format); err != nil {
		return newToolResultError(fmt.Sprintf("failed to export chart: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Chart written to %s (%d bars)", out, len(rows))), nil
}

// selection drives a fresh store through the same clear-then-toggle
// sequence a user would, so the result keeps selection order.
func (t *Tools) selection(ctx context.Context, cats []models.Category) (store.State, error) {
	s := store.New(t.fetcher, store.WithLogger(t.logger))
	s.Clear()
	for _, c := range cats {
		if err := s.Toggle(ctx, c); err != nil {
			return store.State{}, fmt.Errorf("%s: %s", c, fetch.Message(err))
		}
	}
	return s.Snapshot(), nil
}

// ParseList splits a comma-separated list of category names. Blank input
// yields every category; duplicates keep their first position.
func ParseList(raw string) ([]models.Category, error) {
	if strings.TrimSpace(raw) == "" {
		return models.AllCategories(), nil
	}
	var out []models.Category
	seen := map[models.Category]bool{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		c, err := models.ParseCategory(part)
		if err != nil {
			return nil, err
		}
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out, nil
}

func newToolResultError(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: message,
			},
		},
		IsError: true,
	}
}
