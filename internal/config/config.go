// Package config handles configuration loading for disciplineviz.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "DISCIPLINEVIZ"

// Config represents the complete application configuration.
type Config struct {
	API       APIConfig       `mapstructure:"api"       yaml:"api"       json:"api"`
	Dashboard DashboardConfig `mapstructure:"dashboard" yaml:"dashboard" json:"dashboard"`
	Dataset   DatasetConfig   `mapstructure:"dataset"   yaml:"dataset"   json:"dataset"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"   json:"logging"`
}

// APIConfig holds HTTP server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"         json:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"         json:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins" json:"cors_origins"`
	ServeData   bool     `mapstructure:"serve_data"   yaml:"serve_data"   json:"serve_data"`   // expose GET /api/data
	ServeUI     bool     `mapstructure:"serve_ui"     yaml:"serve_ui"     json:"serve_ui"`     // expose the HTML dashboard
}

// DashboardConfig holds the view-state store and rendering settings.
type DashboardConfig struct {
	DataURL           string `mapstructure:"data_url"           yaml:"data_url"           json:"data_url"` // empty = this server
	LoadOnStart       bool   `mapstructure:"load_on_start"      yaml:"load_on_start"      json:"load_on_start"`
	ConcurrentFetches int    `mapstructure:"concurrent_fetches" yaml:"concurrent_fetches" json:"concurrent_fetches"`
	ChartWidth        int    `mapstructure:"chart_width"        yaml:"chart_width"        json:"chart_width"`
	ChartHeight       int    `mapstructure:"chart_height"       yaml:"chart_height"       json:"chart_height"`
}

// DatasetConfig holds the data endpoint's source file and filters.
type DatasetConfig struct {
	Path               string `mapstructure:"path"                yaml:"path"                json:"path"`
	District           string `mapstructure:"district"            yaml:"district"            json:"district"`
	SchoolYear         int    `mapstructure:"school_year"         yaml:"school_year"         json:"school_year"`
	Gender             string `mapstructure:"gender"              yaml:"gender"              json:"gender"`
	Grade              string `mapstructure:"grade"               yaml:"grade"               json:"grade"`
	DisciplineCategory string `mapstructure:"discipline_category" yaml:"discipline_category" json:"discipline_category"`
	CacheTTL           int    `mapstructure:"cache_ttl"           yaml:"cache_ttl"           json:"cache_ttl"` // seconds
}

// CacheDuration returns CacheTTL as a duration.
func (d DatasetConfig) CacheDuration() time.Duration {
	return time.Duration(d.CacheTTL) * time.Second
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  json:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format" json:"format"` // "text" or "json"
}

// Addr returns the listen address of the API server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

// DataURL returns the root URL the dashboard fetches category data from.
// When none is configured the dashboard talks to its own server.
func (c *Config) DataURL() string {
	if c.Dashboard.DataURL != "" {
		return c.Dashboard.DataURL
	}
	host := c.API.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%d", host, c.API.Port)
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.disciplineviz/config.yaml (home directory)
//  3. /etc/disciplineviz/config.yaml (system)
//
// Environment variables override config file values.
// Format: DISCIPLINEVIZ_<SECTION>_<KEY>, e.g., DISCIPLINEVIZ_DATASET_PATH
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, dir := range searchDirs() {
		v.AddConfigPath(dir)
	}

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return unmarshal(v)
}

// ConfigFilePath returns the first existing config file on the search path,
// or the project-local default when none exists.
func ConfigFilePath() string {
	for _, dir := range searchDirs() {
		p := filepath.Join(dir, "config.yaml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return filepath.Join("config", "config.yaml")
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

func searchDirs() []string {
	return []string{
		"./config",
		filepath.Join(homeDir(), ".disciplineviz"),
		"/etc/disciplineviz",
	}
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("api.serve_data", true)
	v.SetDefault("api.serve_ui", true)

	// Dashboard defaults
	v.SetDefault("dashboard.data_url", "")
	v.SetDefault("dashboard.load_on_start", true)
	v.SetDefault("dashboard.concurrent_fetches", 5)
	v.SetDefault("dashboard.chart_width", 800)
	v.SetDefault("dashboard.chart_height", 400)

	// Dataset defaults
	v.SetDefault("dataset.path", "./data/Student_Discipline.csv")
	v.SetDefault("dataset.district", "State of Delaware")
	v.SetDefault("dataset.school_year", 2025)
	v.SetDefault("dataset.gender", "All Students")
	v.SetDefault("dataset.grade", "All Students")
	v.SetDefault("dataset.discipline_category", "In-School Suspension")
	v.SetDefault("dataset.cache_ttl", 300) // 5 minutes

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
