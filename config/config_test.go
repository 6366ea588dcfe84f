package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "gmail_marketplace", cfg.Database.DBName)
	assert.Equal(t, int32(20), cfg.Database.MaxConns)

	assert.Equal(t, "SANDBOX", cfg.Gateway.Env)
	assert.Equal(t, "https://sandbox.cashfree.com", cfg.Gateway.BaseURL())

	assert.Equal(t, int64(1500), cfg.Market.BuyRate)
	assert.Equal(t, int64(900), cfg.Market.SellRate)
	assert.Equal(t, 2, cfg.Market.MinBuyQuantity)
	assert.Equal(t, 2, cfg.Market.MinSellQuantity)
	assert.Equal(t, int64(1500), cfg.Market.MinWalletAdd)
	assert.Equal(t, int64(50000), cfg.Market.MaxWalletAdd)
	assert.Equal(t, 15*time.Minute, cfg.Market.PaymentTimeout)
	assert.Equal(t, 5*time.Second, cfg.Market.PollInterval)

	assert.Equal(t, 12*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, "gmail-marketplace", cfg.JWT.Issuer)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)
}

func TestLoad_FromYAMLFile(t *testing.T) {
	content := []byte(`
server:
  host: "127.0.0.1"
  port: 9090
  mode: "release"
database:
  host: "db.example.com"
  port: 5433
  dbname: "marketdb"
gateway:
  env: "PRODUCTION"
  app_id: "cf_app"
market:
  buy_rate: 2000
  sell_rate: 1100
  payment_timeout: "5m"
log:
  level: "debug"
  pretty: true
`)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.example.com", cfg.Database.Host)
	assert.Equal(t, "marketdb", cfg.Database.DBName)
	assert.Equal(t, "https://api.cashfree.com", cfg.Gateway.BaseURL())
	assert.Equal(t, int64(2000), cfg.Market.BuyRate)
	assert.Equal(t, int64(1100), cfg.Market.SellRate)
	assert.Equal(t, 5*time.Minute, cfg.Market.PaymentTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)

	// Defaults still apply for keys the file omits.
	assert.Equal(t, 2, cfg.Market.MinBuyQuantity)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("GMM_MARKET_BUY_RATE", "2500")
	t.Setenv("GMM_DATABASE_HOST", "pg.internal")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, int64(2500), cfg.Market.BuyRate)
	assert.Equal(t, "pg.internal", cfg.Database.Host)
}

func TestLoad_RejectsInvalidRates(t *testing.T) {
	// Sell rate above buy rate would pay out more than the sale brings in.
	t.Setenv("GMM_MARKET_SELL_RATE", "9000")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sell_rate")
}

func TestLoad_RejectsInvalidWalletLimits(t *testing.T) {
	t.Setenv("GMM_MARKET_MAX_WALLET_ADD", "100")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wallet add limits")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "localhost", Port: 5432, User: "u", Password: "p",
		DBName: "market", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://u:p@localhost:5432/market?sslmode=disable", d.DSN())
}

func TestRedisConfig_Addr(t *testing.T) {
	r := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", r.Addr())
}
