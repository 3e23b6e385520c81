/*
Package config loads server configuration from a YAML file plus
environment overrides.

PURPOSE:
  One Config struct feeds the whole process: HTTP server settings, the
  local SQLite mirror, the optional sheet upstream, logging, and static
  role grants for deployments that don't delegate permissions to the
  upstream.

PRECEDENCE:
  environment variables (ROSTER_*) > config file > built-in defaults.

SHEET UPSTREAM:
  When sheet.url is empty the server runs standalone on SQLite alone;
  when set, the background sync mirrors the upstream into SQLite on
  sheet.sync_interval.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is the full server configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Store  StoreConfig  `mapstructure:"store"`
	Sheet  SheetConfig  `mapstructure:"sheet"`
	Log    LogConfig    `mapstructure:"log"`
	Roles  []RoleGrant  `mapstructure:"roles"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int        `mapstructure:"port"`
	CORS CORSConfig `mapstructure:"cors"`
}

// CORSConfig holds cross-origin settings for the dashboard frontend.
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// StoreConfig holds the local SQLite mirror settings.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// SheetConfig holds the optional spreadsheet upstream settings.
type SheetConfig struct {
	URL          string        `mapstructure:"url"`
	Token        string        `mapstructure:"token"`
	SyncInterval time.Duration `mapstructure:"sync_interval"`
}

// Enabled reports whether a sheet upstream is configured.
func (c SheetConfig) Enabled() bool { return c.URL != "" }

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Build constructs the process logger from the configured level and
// format ("json" or "console").
func (c LogConfig) Build() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}

	var zc zap.Config
	if c.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// RoleGrant assigns a role and permission names to a person. Used when
// permissions are managed in config rather than on the upstream.
type RoleGrant struct {
	Email       string   `mapstructure:"email"`
	Role        string   `mapstructure:"role"`
	Permissions []string `mapstructure:"permissions"`
}

// Load reads configuration. Precedence: env vars > file > defaults.
// An empty path falls back to ./config.yaml if present.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("store.path", "roster.db")

	v.SetDefault("sheet.url", "")
	v.SetDefault("sheet.token", "")
	v.SetDefault("sheet.sync_interval", "5m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("ROSTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// No file: defaults plus environment only.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings a misconfigured deployment would trip on.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Sheet.Enabled() && c.Sheet.SyncInterval < time.Second {
		return fmt.Errorf("sheet.sync_interval must be at least 1s, got %s", c.Sheet.SyncInterval)
	}
	for _, g := range c.Roles {
		if g.Email == "" {
			return fmt.Errorf("roles entries require an email")
		}
	}
	return nil
}
