// Package config provides Viper-based configuration loading for the
// quarrel arbiter.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ArbiterConfig holds the websocket/HTTP listener settings.
type ArbiterConfig struct {
	// Host is the bind address for the arbiter listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the arbiter listener.
	Port int `mapstructure:"port"`
	// GMUsers are the user ids treated as game masters for whispered
	// cards and wear authority.
	GMUsers []string `mapstructure:"gm_users"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (a ArbiterConfig) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// QuarrelConfig holds resolution timing settings.
type QuarrelConfig struct {
	// WearTimeout bounds how long a client waits for the GM-side
	// battle-wear application.
	WearTimeout time.Duration `mapstructure:"wear_timeout"`
	// SessionGrace is how long a closed quarrel session stays
	// addressable before reaping.
	SessionGrace time.Duration `mapstructure:"session_grace"`
	// ReapInterval is how often closed sessions are swept.
	ReapInterval time.Duration `mapstructure:"reap_interval"`
	// ConditionsDir optionally overlays condition definitions loaded
	// from YAML files over the embedded defaults.
	ConditionsDir string `mapstructure:"conditions_dir"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	Arbiter  ArbiterConfig  `mapstructure:"arbiter"`
	Quarrel  QuarrelConfig  `mapstructure:"quarrel"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateArbiter(c.Arbiter); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateQuarrel(c.Quarrel); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateArbiter(a ArbiterConfig) error {
	var errs []string
	if a.Host == "" {
		errs = append(errs, "arbiter.host must not be empty")
	}
	if a.Port < 1 || a.Port > 65535 {
		errs = append(errs, fmt.Sprintf("arbiter.port must be 1-65535, got %d", a.Port))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateQuarrel(q QuarrelConfig) error {
	var errs []string
	if q.WearTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("quarrel.wear_timeout must be positive, got %s", q.WearTimeout))
	}
	if q.SessionGrace <= 0 {
		errs = append(errs, fmt.Sprintf("quarrel.session_grace must be positive, got %s", q.SessionGrace))
	}
	if q.ReapInterval <= 0 {
		errs = append(errs, fmt.Sprintf("quarrel.reap_interval must be positive, got %s", q.ReapInterval))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with QUARREL_ prefix
	v.SetEnvPrefix("QUARREL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("arbiter.host", "0.0.0.0")
	v.SetDefault("arbiter.port", 8321)

	v.SetDefault("quarrel.wear_timeout", "10s")
	v.SetDefault("quarrel.session_grace", "2m")
	v.SetDefault("quarrel.reap_interval", "1m")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "quarrel")
	v.SetDefault("database.password", "quarrel")
	v.SetDefault("database.name", "quarrel")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
