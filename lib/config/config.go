// Package config holds the checked-in runtime configuration for the
// pricer: which sellers to query, classification thresholds, scraper
// politeness knobs and optional report delivery.
package config

import (
	"fmt"
	"time"

	"cardpricer/lib/configutil"
	"cardpricer/lib/report"
	"cardpricer/lib/scrapers/cardmarket"

	"github.com/shopspring/decimal"
)

const DefaultPath = "config.json5"

type ScraperConfig struct {
	BaseUrl   string `json:"base_url"`
	UserAgent string `json:"user_agent"`
	// Timings are given in milliseconds.
	RequestTimeoutMs int `json:"request_timeout_ms"`
	JitterMinMs      int `json:"jitter_min_ms"`
	JitterMaxMs      int `json:"jitter_max_ms"`
	// NameMatchThreshold filters listing rows whose title is too far from
	// the requested card name. Zero accepts every row on the results page.
	NameMatchThreshold float64 `json:"name_match_threshold"`
}

type Config struct {
	Sellers   []string `json:"sellers"`
	Languages []string `json:"languages"`
	Workers   int      `json:"workers"`

	LowThreshold  decimal.Decimal `json:"low_threshold"`
	HighThreshold decimal.Decimal `json:"high_threshold"`

	PreferredSeller    string          `json:"preferred_seller"`
	PreferredTolerance decimal.Decimal `json:"preferred_tolerance"`

	CachePath string `json:"cache_path"`

	Scraper ScraperConfig      `json:"scraper"`
	Email   report.EmailConfig `json:"email"`
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	return Config{
		Sellers: []string{
			"MagicBarcelona",
			"TEMPEST-STORE",
			"ManaVortex-POOL4YOU",
			"Mazvigosl",
			"Itaca",
			"Metropolis-Center",
			"willybizarre",
			"GENEXCOMICS",
			"Eurekagames",
			"DUAL-GAMES",
		},
		Languages:          []string{"en", "es"},
		Workers:            4,
		LowThreshold:       decimal.RequireFromString("2.0"),
		HighThreshold:      decimal.RequireFromString("10.0"),
		PreferredSeller:    "Mazvigosl",
		PreferredTolerance: decimal.RequireFromString("0.5"),
		CachePath:          "price_cache.json",
		Scraper: ScraperConfig{
			RequestTimeoutMs:   30_000,
			JitterMinMs:        500,
			JitterMaxMs:        2_000,
			NameMatchThreshold: 0.9,
		},
	}
}

// Load reads the config file at path, falling back to Default when the
// file does not exist. The loaded config is always validated.
func Load(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if len(c.Sellers) == 0 {
		return fmt.Errorf("no sellers configured")
	}
	if len(c.Languages) == 0 {
		return fmt.Errorf("no languages configured")
	}
	for _, lang := range c.Languages {
		if !cardmarket.KnownLanguage(lang) {
			return fmt.Errorf("unknown language %q", lang)
		}
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if !c.LowThreshold.LessThan(c.HighThreshold) {
		return fmt.Errorf("low threshold %s must be below high threshold %s",
			c.LowThreshold, c.HighThreshold)
	}
	if c.PreferredTolerance.IsNegative() {
		return fmt.Errorf("preferred tolerance must not be negative")
	}
	if c.CachePath == "" {
		return fmt.Errorf("cache path must not be empty")
	}
	return nil
}

// ScraperOptions translates the scraper section into client options.
func (c Config) ScraperOptions() cardmarket.ClientOptions {
	return cardmarket.ClientOptions{
		BaseUrl:            c.Scraper.BaseUrl,
		UserAgent:          c.Scraper.UserAgent,
		Timeout:            time.Duration(c.Scraper.RequestTimeoutMs) * time.Millisecond,
		JitterMin:          time.Duration(c.Scraper.JitterMinMs) * time.Millisecond,
		JitterMax:          time.Duration(c.Scraper.JitterMaxMs) * time.Millisecond,
		NameMatchThreshold: c.Scraper.NameMatchThreshold,
	}
}

// RequestTimeout is the per-query deadline handed to the resolver.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Scraper.RequestTimeoutMs) * time.Millisecond
}
