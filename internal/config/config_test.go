package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/fincore/internal/importer"
	"github.com/cleared-dev/fincore/internal/store"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Tenant = "acme"
	cfg.Store = StoreConfig{Driver: store.DriverSQLite, Dir: ".fincore", Path: "/tmp/acme.db", CacheTTL: 30 * time.Second}
	cfg.Import.Rules = []importer.Rule{{Match: "github", Account: "Expense:Software", TaxCategory: "GST"}}

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "default", cfg.Tenant)
	assert.Equal(t, store.DriverFile, cfg.Store.Driver)
	assert.Equal(t, "AUD", cfg.Defaults.Currency)
	assert.Equal(t, "FIFO", cfg.Defaults.ValuationMethod)
	assert.Equal(t, "standard", cfg.Defaults.ChartTemplate)
	assert.Equal(t, "Equity:RetainedEarnings", cfg.Defaults.EquityAccount)
	assert.Equal(t, "Asset:Cash", cfg.Import.BankAccount)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("tenant: acme\nstore:\n  driver: memory\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "acme", cfg.Tenant)
	assert.Equal(t, store.DriverMemory, cfg.Store.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "standard", cfg.Defaults.ChartTemplate)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestYAMLFormat(t *testing.T) {
	cfg := Default()
	cfg.Store.CacheTTL = time.Minute
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "tenant: default")
	assert.Contains(t, contents, "driver: file")
	assert.Contains(t, contents, "cache_ttl: 1m0s")
	assert.Contains(t, contents, "valuation_method: FIFO")
	assert.Contains(t, contents, "bank_account: Asset:Cash")
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := ApplyEnv(cfg, env(map[string]string{
		"FINCORE_TENANT":          "beta",
		"FINCORE_STORE_DRIVER":    "postgres",
		"DATABASE_URL":            "postgres://fallback",
		"FINCORE_STORE_DSN":       "postgres://explicit",
		"FINCORE_STORE_CACHE_TTL": "45s",
		"FINCORE_LOG_CONSOLE":     "false",
		"FINCORE_LOG_LEVEL":       "",
	}))
	require.NoError(t, err)

	assert.Equal(t, "beta", cfg.Tenant)
	assert.Equal(t, store.DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "postgres://explicit", cfg.Store.DSN, "FINCORE_STORE_DSN wins")
	assert.Equal(t, 45*time.Second, cfg.Store.CacheTTL)
	assert.False(t, cfg.Log.Console)
	assert.Equal(t, "info", cfg.Log.Level, "empty values are ignored")
}

func TestApplyEnv_BadValues(t *testing.T) {
	assert.Error(t, ApplyEnv(Default(), env(map[string]string{"FINCORE_STORE_CACHE_TTL": "soon"})))
	assert.Error(t, ApplyEnv(Default(), env(map[string]string{"FINCORE_LOG_CONSOLE": "maybe"})))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"tenant with slash", func(c *Config) { c.Tenant = "a/b" }},
		{"unknown driver", func(c *Config) { c.Store.Driver = "mongo" }},
		{"postgres without dsn", func(c *Config) { c.Store.Driver = store.DriverPostgres }},
		{"gcs without bucket", func(c *Config) { c.Store.Driver = store.DriverGCS }},
		{"bad valuation", func(c *Config) { c.Defaults.ValuationMethod = "HIFO" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Cleanup(func() { os.Unsetenv("FINCORE_TENANT") })
	require.NoError(t, os.WriteFile(".env", []byte("FINCORE_TENANT=from-dotenv\n"), 0o644))
	t.Setenv("FINCORE_STORE_DRIVER", "memory")

	cfg, err := Resolve(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Tenant)
	assert.Equal(t, store.DriverMemory, cfg.Store.Driver)
}

func TestStoreOptions(t *testing.T) {
	cfg := Default()
	cfg.Store = StoreConfig{Driver: store.DriverSQLite, Dir: "data/", CacheTTL: time.Second}

	opts := cfg.StoreOptions()
	assert.Equal(t, "data/fincore.db", opts.Path)
	assert.Equal(t, time.Second, opts.CacheTTL)
}
