// Package config loads runtime settings from GROBUDDY_* environment
// variables. A .env file in the working directory is loaded first when
// present.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "GROBUDDY_"

// Config is flat: GROBUDDY_DB_MAX_OPEN_CONNS maps to db_max_open_conns.
type Config struct {
	Port      string `koanf:"port" validate:"required,numeric"`
	DBPath    string `koanf:"db_path" validate:"required"`
	LogLevel  string `koanf:"log_level" validate:"required,oneof=debug info warn warning error"`
	LogFormat string `koanf:"log_format" validate:"required,oneof=text json"`

	SessionTTL time.Duration `koanf:"session_ttl" validate:"gt=0"`

	DBMaxOpenConns    int           `koanf:"db_max_open_conns" validate:"gte=0"`
	DBMaxIdleConns    int           `koanf:"db_max_idle_conns" validate:"gte=0"`
	DBConnMaxLifetime time.Duration `koanf:"db_conn_max_lifetime" validate:"gte=0"`

	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout  time.Duration `koanf:"idle_timeout" validate:"gt=0"`

	// LoginRateLimit is the number of login/register attempts allowed per
	// client IP per minute.
	LoginRateLimit int  `koanf:"login_rate_limit" validate:"gt=0"`
	CookieSecure   bool `koanf:"cookie_secure"`

	// WSOrigins is a comma-separated list of extra host patterns allowed to
	// open /ws from a browser, e.g. "app.example.com,*.example.net".
	WSOrigins string `koanf:"ws_origins"`
}

func Default() Config {
	return Config{
		Port:              "8080",
		DBPath:            "grobuddy.db",
		LogLevel:          "info",
		LogFormat:         "text",
		SessionTTL:        30 * 24 * time.Hour,
		DBMaxOpenConns:    10,
		DBMaxIdleConns:    5,
		DBConnMaxLifetime: 30 * time.Minute,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		LoginRateLimit:    10,
	}
}

// Load overlays GROBUDDY_* variables on Default and validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

// WSOriginPatterns splits WSOrigins, dropping blanks.
func (c *Config) WSOriginPatterns() []string {
	var out []string
	for _, p := range strings.Split(c.WSOrigins, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
