package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432")
	t.Setenv("DATABASE_NAME", "cards")
	t.Setenv("TRADE_CHANNEL_ID", "42")
	t.Setenv("TRADE_TTL", "2h")
	t.Setenv("NATS_ENABLED", "true")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.DiscordToken)
	assert.Equal(t, "42", cfg.TradeChannelID)
	assert.Equal(t, 2*time.Hour, cfg.TradeTTL)
	assert.Equal(t, time.Minute, cfg.TradeExpiryInterval)
	assert.True(t, cfg.NATSEnabled)
	assert.Equal(t, "postgres://localhost:5432/cards?sslmode=disable", cfg.GetDatabaseURL())
}

func TestLoad_RequiresTokenOutsideTests(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432")
	t.Setenv("ENVIRONMENT", "production")

	_, err := load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DISCORD_TOKEN")
}

func TestLoad_TOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cardswap.toml")
	content := `
discord_token = "file-token"
database_url = "postgres://db:5432"
trade_channel_id = "1234"
trade_ttl = "36h"
trade_expiry_interval = "30s"
otel_exporter_type = "console"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("TRADE_TTL", "")
	t.Setenv("TRADE_CHANNEL_ID", "")
	t.Setenv("ENVIRONMENT", "")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.DiscordToken)
	assert.Equal(t, "1234", cfg.TradeChannelID)
	assert.Equal(t, 36*time.Hour, cfg.TradeTTL)
	assert.Equal(t, 30*time.Second, cfg.TradeExpiryInterval)
	assert.Equal(t, "console", cfg.OTelExporterType)
	assert.Equal(t, "development", cfg.Environment)
}

func TestLoad_RejectsNonPositiveTTL(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("TRADE_TTL", "-1h")

	_, err := load()
	require.Error(t, err)
}

func TestSetTestConfig(t *testing.T) {
	t.Cleanup(ResetConfig)

	testConfig := NewTestConfig()
	testConfig.TradeChannelID = "99"
	SetTestConfig(testConfig)

	assert.Same(t, testConfig, Get())
	assert.Equal(t, 24*time.Hour, Get().TradeTTL)
}
