package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelgate/reelgate/pkg/models"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 50.0, cfg.MonthlyBudgetUSD)
	assert.Equal(t, models.Cents(5000), cfg.MonthlyLimit())
	assert.Equal(t, "reelgate.db", cfg.DBPath)
	assert.Equal(t, 10*time.Second, cfg.Poll.Interval)
	assert.NoError(t, cfg.Validate())

	table := cfg.RateTable()
	assert.Equal(t, models.Cents(2), table[models.TierLow])
	assert.Equal(t, models.Cents(3), table[models.TierMedium])
	assert.Equal(t, models.Cents(5), table[models.TierHigh])
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TEST_REELGATE_KEY", "sk-from-env")

	path := filepath.Join(t.TempDir(), "reelgate.yaml")
	data := `
api_key: ${TEST_REELGATE_KEY}
monthly_budget_usd: 25.5
db_path: /tmp/custom.db
poll:
  interval: 5s
  max_wait: 1m
rates:
  high_usd: 0.08
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", cfg.APIKey)
	assert.Equal(t, 25.5, cfg.MonthlyBudgetUSD)
	assert.Equal(t, models.Cents(2550), cfg.MonthlyLimit())
	assert.Equal(t, "/tmp/custom.db", cfg.DBPath)
	assert.Equal(t, 5*time.Second, cfg.Poll.Interval)
	assert.Equal(t, time.Minute, cfg.Poll.MaxWait)

	// Overridden high rate; untouched tiers keep defaults.
	table := cfg.RateTable()
	assert.Equal(t, models.Cents(8), table[models.TierHigh])
	assert.Equal(t, models.Cents(2), table[models.TierLow])
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv(EnvAPIKey, "sk-env")
	t.Setenv(EnvBudgetUSD, "12.75")

	cfg := Default()
	require.NoError(t, cfg.FromEnv())
	assert.Equal(t, "sk-env", cfg.APIKey)
	assert.Equal(t, 12.75, cfg.MonthlyBudgetUSD)
	assert.Equal(t, models.Cents(1275), cfg.MonthlyLimit())
}

func TestFromEnvBadBudget(t *testing.T) {
	t.Setenv(EnvBudgetUSD, "a lot")

	cfg := Default()
	assert.Error(t, cfg.FromEnv())
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.MonthlyBudgetUSD = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Rates.LowUSD = -0.01
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Poll.Interval = 0
	assert.Error(t, cfg.Validate())
}
