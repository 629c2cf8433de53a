package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// SettingSource represents where a setting's value comes from.
type SettingSource string

const (
	SourceEnv     SettingSource = "env"
	SourceConfig  SettingSource = "config"
	SourceDefault SettingSource = "default"
)

// SettingStatus describes one effective setting for status output.
type SettingStatus struct {
	Name   string        `json:"name"`
	Key    string        `json:"key"`
	Value  string        `json:"value"`
	Source SettingSource `json:"source"`
}

// CheckSettings reports the effective value and origin of the settings that
// decide where data comes from and where it is served.
func CheckSettings(cfg *Config) []SettingStatus {
	return []SettingStatus{
		checkSetting("Data URL", "dashboard.data_url", MaskURL(cfg.Dashboard.DataURL)),
		checkSetting("Dataset Path", "dataset.path", cfg.Dataset.Path),
		checkSetting("School Year", "dataset.school_year", fmt.Sprint(cfg.Dataset.SchoolYear)),
		checkSetting("Discipline Category", "dataset.discipline_category", cfg.Dataset.DisciplineCategory),
		checkSetting("API Port", "api.port", fmt.Sprint(cfg.API.Port)),
		checkSetting("Log Level", "logging.level", cfg.Logging.Level),
	}
}

// EnvVar returns the environment variable that overrides key.
func EnvVar(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// checkSetting classifies a value as coming from env, a config file, or the
// built-in default.
func checkSetting(name, key, value string) SettingStatus {
	status := SettingStatus{Name: name, Key: key, Value: value}

	switch {
	case os.Getenv(EnvVar(key)) != "":
		status.Source = SourceEnv
	case value != defaultString(key):
		status.Source = SourceConfig
	default:
		status.Source = SourceDefault
	}
	return status
}

func defaultString(key string) string {
	v := viper.New()
	setDefaults(v)
	if key == "dashboard.data_url" {
		return MaskURL(v.GetString(key))
	}
	return fmt.Sprint(v.Get(key))
}

// MaskURL hides the password of a URL's userinfo for display.
func MaskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
