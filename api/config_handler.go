package api

import (
	"net/http"

	"github.com/seenimoa/disciplineviz/internal/config"
)

// ConfigResponse is the JSON envelope returned by GET /api/v1/config.
type ConfigResponse struct {
	Config     *config.Config `json:"config"`
	ConfigFile string         `json:"config_file"` // path to the active config file
}

// handleGetConfig returns the running configuration. The data URL may
// embed credentials, so it is reported masked.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := *s.cfg
	cfg.Dashboard.DataURL = config.MaskURL(cfg.Dashboard.DataURL)
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ConfigResponse{
			Config:     &cfg,
			ConfigFile: config.ConfigFilePath(),
		},
	})
}

// handleGetSettings reports where each key setting was resolved from.
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    config.CheckSettings(s.cfg),
	})
}
