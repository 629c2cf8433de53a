package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seenimoa/disciplineviz/internal/fetch"
	"github.com/seenimoa/disciplineviz/internal/mcptools"
	"github.com/seenimoa/disciplineviz/internal/render"
	"github.com/seenimoa/disciplineviz/internal/store"
	"github.com/seenimoa/disciplineviz/internal/viewmodel"
	"github.com/seenimoa/disciplineviz/pkg/models"
)

// --- Fetch Command ---

var fetchCmd = &cobra.Command{
	Use:   "fetch [category]",
	Short: "Fetch one category and print its records",
	Long: `Fetch one category from the data endpoint and print its chart and
table.

Examples:
  disciplineviz fetch Black
  disciplineviz fetch "Low-income students" --local`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := models.ParseCategory(args[0])
		if err != nil {
			return err
		}
		st, err := selection(cmd, []models.Category{c})
		if err != nil {
			return err
		}
		fmt.Print(render.Text(st, viewmodel.DefaultSchema(), 40))
		return nil
	},
}

// --- Compare Command ---

var compareCmd = &cobra.Command{
	Use:   "compare [category...]",
	Short: "Compare several categories side by side",
	Long: `Compare categories in the order given. With no arguments every
category is compared, the same view the dashboard opens with.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cats, err := parseCategories(args)
		if err != nil {
			return err
		}
		st, err := selection(cmd, cats)
		if err != nil {
			return err
		}
		fmt.Print(render.Text(st, viewmodel.DefaultSchema(), 40))
		return nil
	},
}

// --- Export Command ---

var exportCmd = &cobra.Command{
	Use:   "export [category...]",
	Short: "Render the comparison chart to a PNG or SVG file",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		formatName, _ := cmd.Flags().GetString("format")
		if formatName == "" {
			formatName = filepath.Ext(out)
		}
		format, err := render.ParseFormat(formatName)
		if err != nil {
			return err
		}

		cats, err := parseCategories(args)
		if err != nil {
			return err
		}
		st, err := selection(cmd, cats)
		if err != nil {
			return err
		}
		rows := viewmodel.ChartRows(st)
		chartCfg := render.Sized(cfg.Dashboard.ChartWidth, cfg.Dashboard.ChartHeight)
		if err := render.ExportFile(out, rows, chartCfg, format); err != nil {
			return err
		}
		fmt.Printf("📊 Chart written to %s (%d bars)\n", out, len(rows))
		return nil
	},
}

// --- Values Command ---

var valuesCmd = &cobra.Command{
	Use:   "values [column]",
	Short: "List the distinct values of a dataset column",
	Long: `List the distinct values of a raw dataset column, useful when
choosing filter settings.

Examples:
  disciplineviz values SubGroup
  disciplineviz values "School Year"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDataset()
		if err != nil {
			return err
		}
		values, err := d.UniqueValues(args[0])
		if err != nil {
			return err
		}
		for _, v := range values {
			fmt.Println(v)
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{fetchCmd, compareCmd, exportCmd, browseCmd, mcpCmd} {
		c.Flags().Bool("local", false, "read the dataset file directly instead of the data endpoint")
	}
	exportCmd.Flags().StringP("out", "o", "chart.png", "output file")
	exportCmd.Flags().String("format", "", "png or svg (default: from the output extension)")
}

func parseCategories(args []string) ([]models.Category, error) {
	return mcptools.ParseList(strings.Join(args, ","))
}

// selection clears a fresh store and toggles cats on in order, the same
// sequence the dashboard runs.
func selection(cmd *cobra.Command, cats []models.Category) (store.State, error) {
	f, err := newFetcher(cmd)
	if err != nil {
		return store.State{}, err
	}
	s := newStore(f)
	s.Clear()
	for _, c := range cats {
		if err := s.Toggle(context.Background(), c); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", fetch.Message(err))
			fmt.Fprintln(os.Stderr, render.ErrorHint)
			return store.State{}, fmt.Errorf("fetch %s: %w", c, err)
		}
	}
	return s.Snapshot(), nil
}
