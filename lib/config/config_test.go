package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json5")
	content := `{
	// overrides for a small test run
	sellers: ["Itaca"],
	languages: ["en"],
	workers: 2,
	low_threshold: 1.5,
	high_threshold: 20,
	preferred_tolerance: 0,
	cache_path: "cache.json",
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"Itaca"}, cfg.Sellers)
	require.Equal(t, 2, cfg.Workers)
	require.True(t, cfg.LowThreshold.Equal(decimal.RequireFromString("1.5")))
	require.True(t, cfg.HighThreshold.Equal(decimal.RequireFromString("20")))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "config.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no sellers", func(c *Config) { c.Sellers = nil }},
		{"no languages", func(c *Config) { c.Languages = nil }},
		{"unknown language", func(c *Config) { c.Languages = []string{"jp"} }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"inverted thresholds", func(c *Config) {
			c.LowThreshold = decimal.RequireFromString("10")
			c.HighThreshold = decimal.RequireFromString("2")
		}},
		{"negative tolerance", func(c *Config) {
			c.PreferredTolerance = decimal.RequireFromString("-0.5")
		}},
		{"empty cache path", func(c *Config) { c.CachePath = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestScraperOptions(t *testing.T) {
	cfg := Default()
	opts := cfg.ScraperOptions()
	require.Equal(t, cfg.RequestTimeout(), opts.Timeout)
	require.Equal(t, 0.9, opts.NameMatchThreshold)
}
