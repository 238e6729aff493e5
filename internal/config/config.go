// Package config loads fincore.yaml and overlays FINCORE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/fincore/internal/importer"
	"github.com/cleared-dev/fincore/internal/model"
	"github.com/cleared-dev/fincore/internal/store"
)

// FileName is the default config file name.
const FileName = "fincore.yaml"

// Config represents the top-level fincore.yaml configuration.
type Config struct {
	Tenant   string           `yaml:"tenant"`
	Store    StoreConfig      `yaml:"store"`
	Log      LogConfig        `yaml:"log"`
	Defaults DefaultsConfig   `yaml:"defaults"`
	Import   importer.Mapping `yaml:"import"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver   string        `yaml:"driver"`
	Dir      string        `yaml:"dir,omitempty"`
	Path     string        `yaml:"path,omitempty"`
	DSN      string        `yaml:"dsn,omitempty"`
	Bucket   string        `yaml:"bucket,omitempty"`
	Prefix   string        `yaml:"prefix,omitempty"`
	CacheTTL time.Duration `yaml:"cache_ttl,omitempty"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
}

// DefaultsConfig holds values applied when a tenant is initialised.
type DefaultsConfig struct {
	Currency        string `yaml:"currency"`
	ValuationMethod string `yaml:"valuation_method"`
	ChartTemplate   string `yaml:"chart_template"`
	EquityAccount   string `yaml:"equity_account"`
}

// Load reads a fincore.yaml file from disk.
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

// LoadOrDefault reads path, or returns Default when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
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
		Tenant: "default",
		Store: StoreConfig{
			Driver: store.DriverFile,
			Dir:    ".fincore",
		},
		Log: LogConfig{
			Level:   "info",
			Console: true,
		},
		Defaults: DefaultsConfig{
			Currency:        model.DefaultSettings().DefaultCurrency,
			ValuationMethod: string(model.ValuationFIFO),
			ChartTemplate:   "standard",
			EquityAccount:   model.DefaultEquityAccount,
		},
		Import: importer.DefaultMapping(),
	}
}

// LoadDotEnv loads variables from .env files into the process environment.
// Missing files are ignored; variables already set are kept.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overlays FINCORE_* variables found by lookup onto cfg.
// DATABASE_URL is accepted as a fallback for the postgres DSN.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("FINCORE_TENANT", &cfg.Tenant)
	str("FINCORE_STORE_DRIVER", &cfg.Store.Driver)
	str("FINCORE_STORE_DIR", &cfg.Store.Dir)
	str("FINCORE_STORE_PATH", &cfg.Store.Path)
	str("DATABASE_URL", &cfg.Store.DSN)
	str("FINCORE_STORE_DSN", &cfg.Store.DSN)
	str("FINCORE_STORE_BUCKET", &cfg.Store.Bucket)
	str("FINCORE_STORE_PREFIX", &cfg.Store.Prefix)
	str("FINCORE_LOG_LEVEL", &cfg.Log.Level)
	str("FINCORE_DEFAULT_CURRENCY", &cfg.Defaults.Currency)
	str("FINCORE_VALUATION_METHOD", &cfg.Defaults.ValuationMethod)

	if v, ok := lookup("FINCORE_STORE_CACHE_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("FINCORE_STORE_CACHE_TTL: %w", err)
		}
		cfg.Store.CacheTTL = d
	}
	if v, ok := lookup("FINCORE_LOG_CONSOLE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("FINCORE_LOG_CONSOLE: %w", err)
		}
		cfg.Log.Console = b
	}
	return nil
}

// Resolve loads .env, the config file at path (if present) and the
// environment, in increasing precedence, and validates the result.
func Resolve(path string) (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that cannot be fixed up later.
func (c *Config) Validate() error {
	if err := store.ValidateTenantID(c.Tenant); err != nil {
		return err
	}
	switch c.Store.Driver {
	case store.DriverMemory, store.DriverFile, store.DriverSQLite, store.DriverPostgres, store.DriverGCS:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Driver == store.DriverPostgres && c.Store.DSN == "" {
		return errors.New("store.dsn is required for the postgres driver")
	}
	if c.Store.Driver == store.DriverGCS && c.Store.Bucket == "" {
		return errors.New("store.bucket is required for the gcs driver")
	}
	if m := model.ValuationMethod(strings.ToUpper(c.Defaults.ValuationMethod)); c.Defaults.ValuationMethod != "" && !m.Valid() {
		return fmt.Errorf("unknown valuation method %q", c.Defaults.ValuationMethod)
	}
	return nil
}

// StoreOptions maps the store section onto store.Options.
func (c *Config) StoreOptions() store.Options {
	path := c.Store.Path
	if c.Store.Driver == store.DriverSQLite && path == "" {
		path = strings.TrimSuffix(c.Store.Dir, "/") + "/fincore.db"
	}
	return store.Options{
		Driver:   c.Store.Driver,
		Dir:      c.Store.Dir,
		Path:     path,
		DSN:      c.Store.DSN,
		Bucket:   c.Store.Bucket,
		Prefix:   c.Store.Prefix,
		CacheTTL: c.Store.CacheTTL,
	}
}
