package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "development", c.Environment)
	assert.Equal(t, 3, c.Edinet.MaxAttempts)
	assert.Equal(t, "skip", c.Edinet.ExistingMode)
	assert.Equal(t, 10.0, c.Screening.MaxPriceEarningsRatio)
	assert.Equal(t, []string{"建設業", "銀行業", "不動産業"}, c.Screening.BlacklistIndustries)
	assert.Equal(t, 6*time.Hour, c.Providers.CacheTTL)
	assert.False(t, c.Screening.OptionalTier.Enabled)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "config.yaml", `
environment: test
edinet:
  existing_mode: replace
  from: "2024-06-01"
  to: "2024-06-15"
screening:
  max_price_earnings_ratio: 15
  blacklist_industries: [銀行業]
`)
	c, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "replace", c.Edinet.ExistingMode)
	assert.Equal(t, 15.0, c.Screening.MaxPriceEarningsRatio)
	assert.Equal(t, []string{"銀行業"}, c.Screening.BlacklistIndustries)
	assert.Equal(t, 0.1, c.Screening.MinScoreRatio)

	from, to, err := c.DateRange(time.Now())
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", from.Format("2006-01-02"))
	assert.Equal(t, "2024-06-15", to.Format("2006-01-02"))
}

func TestLoadKeepsExplicitZeroThresholds(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "config.yaml", `
screening:
  min_score_ratio: 0
  optional_tier:
    enabled: true
    min_average_salary: 0
    min_board_member_reward: 0
`)
	c, err := Load(p)
	require.NoError(t, err)

	assert.Zero(t, c.Screening.MinScoreRatio)
	assert.Zero(t, c.Screening.OptionalTier.MinAverageSalary)
	assert.Zero(t, c.Screening.OptionalTier.MinBoardMemberReward)
	// untouched siblings still get their defaults
	assert.Equal(t, 0.1, c.Screening.OptionalTier.MinEmployeeEarningPower)
	assert.Equal(t, 10.0, c.Screening.MaxPriceEarningsRatio)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"existing mode":  "edinet:\n  existing_mode: overwrite\n",
		"reversed range": "edinet:\n  from: \"2024-06-15\"\n  to: \"2024-06-01\"\n",
		"bad date":       "edinet:\n  from: \"06/01/2024\"\n",
		"kafka brokers":  "kafka:\n  enabled: true\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			p := writeFile(t, t.TempDir(), "config.yaml", body)
			_, err := Load(p)
			assert.Error(t, err)
		})
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "config.yaml", "environment: test\n")
	envFile := writeFile(t, dir, ".env", "EDINET_API_KEY=from-dotenv\nDOWNLOAD_DIR=/tmp/xbrl\n")

	t.Setenv("EXISTING_MODE", "replace")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Cleanup(func() {
		os.Unsetenv("EDINET_API_KEY")
		os.Unsetenv("DOWNLOAD_DIR")
	})

	c, err := LoadWithEnv(p, envFile)
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv", c.Edinet.APIKey)
	assert.Equal(t, "/tmp/xbrl", c.Edinet.StorageDir)
	assert.Equal(t, "replace", c.Edinet.ExistingMode)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.NoError(t, c.RequireAPIKey())
}

func TestLoadWithEnvMissingEnvFileIgnored(t *testing.T) {
	c, err := LoadWithEnv("", filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestRequireAPIKey(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.ErrorIs(t, c.RequireAPIKey(), ErrMissingAPIKey)
}
