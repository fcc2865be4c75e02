package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// FileName is the config file created by `grassjelly init`.
const FileName = "grassjelly.yaml"

// EnvPrefix prefixes every environment override, e.g. GRASSJELLY_STORE_BACKEND.
const EnvPrefix = "GRASSJELLY"

// Config represents the top-level grassjelly.yaml configuration.
type Config struct {
	// DefaultGroup is used by commands run without --group.
	DefaultGroup string       `yaml:"default_group,omitempty" split_words:"true"`
	Store        StoreConfig  `yaml:"store"`
	Ledger       LedgerConfig `yaml:"ledger"`
	Report       ReportConfig `yaml:"report"`
	Git          GitConfig    `yaml:"git"`
	Log          LogConfig    `yaml:"log"`
	Server       ServerConfig `yaml:"server"`
}

// StoreConfig selects where group snapshots live.
type StoreConfig struct {
	Backend     string `yaml:"backend"` // file, redis or postgres
	Dir         string `yaml:"dir,omitempty"`
	RedisAddr   string `yaml:"redis_addr,omitempty" split_words:"true"`
	RedisPrefix string `yaml:"redis_prefix,omitempty" split_words:"true"`
	PostgresDSN string `yaml:"postgres_dsn,omitempty" envconfig:"POSTGRES_DSN"`
}

// LedgerConfig tunes ledger behavior.
type LedgerConfig struct {
	RemovalPolicy string `yaml:"removal_policy" split_words:"true"` // strict or lenient
}

// ReportConfig controls report rendering.
type ReportConfig struct {
	Currency string `yaml:"currency"`
	Timezone string `yaml:"timezone,omitempty"`
}

// GitConfig controls git integration of the file store.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit" split_words:"true"`
	AuthorName  string `yaml:"author_name" split_words:"true"`
	AuthorEmail string `yaml:"author_email" split_words:"true"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Format string `yaml:"format"` // pretty or json
	Level  string `yaml:"level"`
}

// ServerConfig configures `grassjelly serve`.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout" split_words:"true"`
	WriteTimeout    time.Duration `yaml:"write_timeout" split_words:"true"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true"`
	RateLimit       int           `yaml:"rate_limit" split_words:"true"` // requests per minute per IP, 0 disables
}

// Load reads a grassjelly.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Backend:     "file",
			Dir:         ".",
			RedisPrefix: "grassjelly",
		},
		Ledger: LedgerConfig{
			RemovalPolicy: "strict",
		},
		Report: ReportConfig{
			Currency: "USD",
		},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "Grassjelly",
			AuthorEmail: "ledger@grassjelly.local",
		},
		Log: LogConfig{
			Format: "pretty",
			Level:  "info",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       120,
		},
	}
}

// Resolve loads path if it exists, falling back to defaults, then applies
// .env and environment overrides. A relative store dir is resolved against
// the directory holding the config file.
func Resolve(path string) (*Config, error) {
	cfg, err := Load(path)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		cfg = Default()
	default:
		return nil, err
	}

	// A missing .env is fine.
	_ = godotenv.Load(filepath.Join(filepath.Dir(path), ".env"))

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if cfg.Store.Dir != "" && !filepath.IsAbs(cfg.Store.Dir) {
		cfg.Store.Dir = filepath.Join(filepath.Dir(path), cfg.Store.Dir)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with GRASSJELLY_* environment variables. Unset
// variables leave the current values alone.
func ApplyEnv(cfg *Config) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	return nil
}

// Location returns the report time zone, time.Local when unset.
func (c *Config) Location() (*time.Location, error) {
	if c.Report.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Report.Timezone)
	if err != nil {
		return nil, fmt.Errorf("report timezone: %w", err)
	}
	return loc, nil
}
