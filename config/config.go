package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Logging  LoggingConfig
	Reports  ReportsConfig
}

type ServerConfig struct {
	HTTPPort        int           `mapstructure:"http_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL          string        `mapstructure:"url"`
	MaxConns     int32         `mapstructure:"max_conns"`
	MinConns     int32         `mapstructure:"min_conns"`
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"` // postgres or memory
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

type ReportsConfig struct {
	MaxPageSize      int    `mapstructure:"max_page_size"`
	MaxDays          int    `mapstructure:"max_days"`
	Timezone         string `mapstructure:"timezone"`
	ConflictPolicy   string `mapstructure:"conflict_policy"`
	ErrorReportLimit int    `mapstructure:"error_report_limit"`
	DayConcurrency   int    `mapstructure:"day_concurrency"`
}

// Load reads config.yaml (if present) and DEVICELOG_* environment variables.
// DATABASE_URL is honored when database.url is unset.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/devicelog/")
	v.AddConfigPath(".")

	v.SetEnvPrefix("DEVICELOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.BindEnv("database.url", "DEVICELOG_DATABASE_URL", "DATABASE_URL"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("database.max_conns", 25)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.query_timeout", "10s")
	v.SetDefault("storage.driver", "postgres")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("reports.max_page_size", 100)
	v.SetDefault("reports.max_days", 90)
	v.SetDefault("reports.timezone", "UTC")
	v.SetDefault("reports.conflict_policy", "last_write_wins")
	v.SetDefault("reports.error_report_limit", 1000)
	v.SetDefault("reports.day_concurrency", 4)
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("database url not set (DATABASE_URL or DEVICELOG_DATABASE_URL)")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if _, err := c.Reports.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the reporting time zone used for calendar days.
func (r ReportsConfig) Location() (*time.Location, error) {
	if r.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid reports timezone %q: %w", r.Timezone, err)
	}
	return loc, nil
}
