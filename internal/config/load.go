package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// STUDYQUEST_STORAGE_DRIVER.
const EnvPrefix = "STUDYQUEST"

var defaults = map[string]any{
	"server.port":          8080,
	"server.log_level":     "info",
	"server.log_format":    "json",
	"storage.driver":       DriverSQLite,
	"storage.path":         "studyquest.db",
	"storage.database_url": "",
	"scheduler.strategy":   "mastery",
	"goals.cards":          20,
	"goals.minutes":        15,
	"goals.xp":             100,
	"backup.dir":           "",
	"backup.keep":          10,
	"backup.workers":       1,
}

// Load reads configuration. When configFile is empty, studyquest.yaml is
// looked up in the working directory and in $HOME/.studyquest; a missing
// file is not an error. Environment variables override file values.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("studyquest")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.studyquest")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
