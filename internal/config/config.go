// Package config loads service configuration from an optional file and
// MAINT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Env      string `mapstructure:"env"`
		LogLevel string `mapstructure:"log_level"`
	} `mapstructure:"app"`

	HTTP struct {
		Addr            string        `mapstructure:"addr"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"http"`

	Postgres struct {
		// DSN is optional; without it the service keeps records in memory only.
		DSN      string `mapstructure:"dsn"`
		MaxConns int32  `mapstructure:"max_conns"`
		Migrate  bool   `mapstructure:"migrate"`
	} `mapstructure:"postgres"`

	Writer struct {
		CoalesceWindow time.Duration `mapstructure:"coalesce_window"`
		WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	} `mapstructure:"writer"`

	Auth struct {
		JWTSecret string        `mapstructure:"jwt_secret"`
		TokenTTL  time.Duration `mapstructure:"token_ttl"`
	} `mapstructure:"auth"`

	Worker struct {
		VerifyInterval time.Duration `mapstructure:"verify_interval"`
	} `mapstructure:"worker"`

	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"metrics"`
}

// Development reports whether the service runs in development mode.
func (c Config) Development() bool {
	return c.App.Env == "development"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.migrate", true)
	v.SetDefault("writer.coalesce_window", 500*time.Millisecond)
	v.SetDefault("writer.write_timeout", 10*time.Second)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 12*time.Hour)
	v.SetDefault("worker.verify_interval", 5*time.Minute)
	v.SetDefault("metrics.enabled", true)
}

// Load reads path (if non-empty) and overlays MAINT_* environment variables,
// e.g. MAINT_POSTGRES_DSN or MAINT_WRITER_COALESCE_WINDOW.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("MAINT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c Config
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return c, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	return c, c.Validate()
}

// Validate checks settings that have no safe default.
func (c Config) Validate() error {
	var errs []error
	if c.Writer.CoalesceWindow < 0 {
		errs = append(errs, errors.New("writer.coalesce_window must not be negative"))
	}
	if c.Writer.WriteTimeout <= 0 {
		errs = append(errs, errors.New("writer.write_timeout must be positive"))
	}
	if !c.Development() && c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required outside development"))
	}
	return errors.Join(errs...)
}
