package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

type Config struct {
	App struct {
		Env      string
		LogLevel string `mapstructure:"log_level"`
	} `mapstructure:"app"`

	HTTP struct {
		Addr           string
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"http"`

	Storage struct {
		Driver      string // memory, sqlite or postgres
		DSN         string
		ScenarioDir string `mapstructure:"scenario_dir"`
	} `mapstructure:"storage"`

	Cache struct {
		Size int
	} `mapstructure:"cache"`

	Events struct {
		AMQPURL  string `mapstructure:"amqp_url"`
		Exchange string
	} `mapstructure:"events"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`
}

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var defaults = map[string]interface{}{
	"app.env":              "dev",
	"app.log_level":        "info",
	"http.addr":            ":8080",
	"http.allowed_origins": []string{"*"},
	"storage.driver":       DriverMemory,
	"storage.dsn":          "",
	"storage.scenario_dir": "",
	"cache.size":           1024,
	"events.amqp_url":      "",
	"events.exchange":      "picklist.events",
	"metrics.enabled":      true,
}

// Load reads the optional YAML file at path, then PICKLIST_* environment variables.
// A .env file in the working directory is applied first when present.
func Load(path string) (Config, error) {
	var c Config

	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return c, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix("PICKLIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return c, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Validate checks values that viper cannot type-check
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for driver %s", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown storage driver: %s", c.Storage.Driver)
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("cache.size cannot be negative, got %d", c.Cache.Size)
	}
	return nil
}
