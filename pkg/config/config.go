// Package config loads Reelgate configuration from YAML with environment
// variable expansion.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/reelgate/reelgate/pkg/models"
	"github.com/reelgate/reelgate/pkg/pricing"
)

// Env var overrides honored by FromEnv.
const (
	EnvAPIKey    = "REELGATE_API_KEY"
	EnvBudgetUSD = "REELGATE_BUDGET_USD"
)

// Config holds all Reelgate configuration.
type Config struct {
	APIKey           string     `yaml:"api_key"`
	BaseURL          string     `yaml:"base_url"`
	DBPath           string     `yaml:"db_path"`
	MonthlyBudgetUSD float64    `yaml:"monthly_budget_usd"`
	MaxDuration      float64    `yaml:"max_duration_seconds"`
	Poll             PollConfig `yaml:"poll"`
	Rates            RateConfig `yaml:"rates"`
}

// PollConfig controls status polling.
type PollConfig struct {
	Interval time.Duration `yaml:"interval"`
	MaxWait  time.Duration `yaml:"max_wait"`
}

// RateConfig overrides the per-second USD rate of the known tiers. Zero
// values keep the default rate; unknown tiers cannot be introduced here.
type RateConfig struct {
	LowUSD    float64 `yaml:"low_usd"`
	MediumUSD float64 `yaml:"medium_usd"`
	HighUSD   float64 `yaml:"high_usd"`
}

// Default returns a Config with sensible defaults: a $50 monthly ceiling
// and the standard tier rates.
func Default() *Config {
	return &Config{
		BaseURL:          "https://api.openai.com/v1/videos",
		DBPath:           "reelgate.db",
		MonthlyBudgetUSD: 50,
		MaxDuration:      120,
		Poll: PollConfig{
			Interval: 10 * time.Second,
			MaxWait:  5 * time.Minute,
		},
	}
}

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// FromEnv applies environment overrides for the API key and budget.
func (c *Config) FromEnv() error {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvBudgetUSD); v != "" {
		budget, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvBudgetUSD, err)
		}
		c.MonthlyBudgetUSD = budget
	}
	return nil
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if c.MonthlyBudgetUSD <= 0 {
		return fmt.Errorf("monthly_budget_usd must be positive, got %g", c.MonthlyBudgetUSD)
	}
	if c.Rates.LowUSD < 0 || c.Rates.MediumUSD < 0 || c.Rates.HighUSD < 0 {
		return fmt.Errorf("tier rates must not be negative")
	}
	if c.Poll.Interval <= 0 {
		return fmt.Errorf("poll.interval must be positive, got %s", c.Poll.Interval)
	}
	return nil
}

// MonthlyLimit returns the budget ceiling in cents.
func (c *Config) MonthlyLimit() models.Cents {
	return models.CentsFromDollars(c.MonthlyBudgetUSD)
}

// RateTable builds the pricing table, applying any configured overrides.
func (c *Config) RateTable() pricing.Table {
	table := pricing.DefaultTable()
	if c.Rates.LowUSD > 0 {
		table[models.TierLow] = models.CentsFromDollars(c.Rates.LowUSD)
	}
	if c.Rates.MediumUSD > 0 {
		table[models.TierMedium] = models.CentsFromDollars(c.Rates.MediumUSD)
	}
	if c.Rates.HighUSD > 0 {
		table[models.TierHigh] = models.CentsFromDollars(c.Rates.HighUSD)
	}
	return table
}
