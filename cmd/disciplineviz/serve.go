package main

import (
	"github.com/spf13/cobra"

	"github.com/seenimoa/disciplineviz/api"
	"github.com/seenimoa/disciplineviz/internal/config"
	"github.com/seenimoa/disciplineviz/internal/fetch"
)

// --- Serve Command (API Server + Dashboard) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the data endpoint and the web dashboard",
	Long: `Start the HTTP server. With api.serve_data the filtered dataset is
served at /api/data; with api.serve_ui the dashboard is served at / and
fetches its data from dashboard.data_url (this server when unset).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.API.Port = port
		}

		opts := []api.Option{api.WithLogger(logger)}
		if cfg.API.ServeData {
			d, err := loadDataset()
			if err != nil {
				return err
			}
			opts = append(opts, api.WithDataset(d))
		}
		if cfg.API.ServeUI {
			client := fetch.NewClient(cfg.DataURL(), fetch.WithUserAgent("disciplineviz/"+version))
			logger.Info("dashboard data source", "url", config.MaskURL(client.BaseURL()))
			opts = append(opts, api.WithStore(newStore(client)))
		}

		srv := api.NewServer(cfg, opts...)
		defer srv.Close()
		return srv.ListenAndServe(cfg.Addr())
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port override")
}
