// Package config loads formguard settings from an optional YAML file and
// FORMGUARD_ prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. FORMGUARD_SERVER_ADDR.
const EnvPrefix = "FORMGUARD"

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Forms      FormsConfig      `mapstructure:"forms"`
	Gate       GateConfig       `mapstructure:"gate"`
	Validation ValidationConfig `mapstructure:"validation"`
	Log        LogConfig        `mapstructure:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// FormsConfig locates the published pages.
type FormsConfig struct {
	Dir     string `mapstructure:"dir"`
	OpenAPI string `mapstructure:"openapi"`
	Title   string `mapstructure:"title"`
}

// GateConfig mirrors the submission gate options.
type GateConfig struct {
	FormClass       string `mapstructure:"form_class"`
	SubmittingLabel string `mapstructure:"submitting_label"`
	BusyClass       string `mapstructure:"busy_class"`
}

// ValidationConfig selects message locale and number strictness.
type ValidationConfig struct {
	Locale        string `mapstructure:"locale"`
	StrictNumbers bool   `mapstructure:"strict_numbers"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ParsedLevel converts Level into a charmbracelet log level, defaulting to
// info for empty values.
func (l LogConfig) ParsedLevel() (log.Level, error) {
	if strings.TrimSpace(l.Level) == "" {
		return log.InfoLevel, nil
	}
	level, err := log.ParseLevel(l.Level)
	if err != nil {
		return log.InfoLevel, fmt.Errorf("config: log level %q: %w", l.Level, err)
	}
	return level, nil
}

// Load reads path when non-empty, then applies environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used without file or environment input.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("config: server.addr is required"))
	}
	if strings.ContainsAny(strings.TrimSpace(c.Gate.FormClass), " \t") || strings.TrimSpace(c.Gate.FormClass) == "" {
		errs = append(errs, fmt.Errorf("config: gate.form_class %q must be a single class name", c.Gate.FormClass))
	}
	if _, err := c.Log.ParsedLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("forms.dir", "")
	v.SetDefault("forms.openapi", "")
	v.SetDefault("forms.title", "Forms")

	v.SetDefault("gate.form_class", "public-form")
	v.SetDefault("gate.submitting_label", "Submitting...")
	v.SetDefault("gate.busy_class", "loading")

	v.SetDefault("validation.locale", "en")
	v.SetDefault("validation.strict_numbers", false)

	v.SetDefault("log.level", "info")
}
