package main

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/seenimoa/disciplineviz/internal/mcptools"
	"github.com/seenimoa/disciplineviz/internal/render"
	"github.com/seenimoa/disciplineviz/internal/tui"
	"github.com/seenimoa/disciplineviz/internal/viewmodel"
)

// --- Browse Command (terminal dashboard) ---

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Open the interactive dashboard in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := newFetcher(cmd)
		if err != nil {
			return err
		}
		return tui.Run(newStore(f), viewmodel.DefaultSchema(), cfg.Dashboard.LoadOnStart)
	},
}

// --- MCP Command ---

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the category tools over MCP (stdio)",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := newFetcher(cmd)
		if err != nil {
			return err
		}
		chartCfg := render.Sized(cfg.Dashboard.ChartWidth, cfg.Dashboard.ChartHeight)
		tools := mcptools.New(f, viewmodel.DefaultSchema(), chartCfg, logger)
		return server.ServeStdio(mcptools.NewServer(tools, version))
	},
}
