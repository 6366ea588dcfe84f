package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	AES      AESConfig      `mapstructure:"aes"`
	Market   MarketConfig   `mapstructure:"market"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	API      APIConfig      `mapstructure:"api"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// GatewayConfig holds Cashfree PG credentials.
type GatewayConfig struct {
	AppID         string        `mapstructure:"app_id"`
	SecretKey     string        `mapstructure:"secret_key"`
	Env           string        `mapstructure:"env"` // SANDBOX or PRODUCTION
	WebhookSecret string        `mapstructure:"webhook_secret"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// BaseURL returns the Cashfree API base URL for the configured environment.
func (g GatewayConfig) BaseURL() string {
	if strings.EqualFold(g.Env, "PRODUCTION") {
		return "https://api.cashfree.com"
	}
	return "https://sandbox.cashfree.com"
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

type AESConfig struct {
	Key string `mapstructure:"key"` // 32-byte hex-encoded key for AES-256
}

// MarketConfig holds pricing and marketplace policy.
// All monetary values are in paise (smallest INR unit).
type MarketConfig struct {
	BuyRate         int64         `mapstructure:"buy_rate"`  // price per item charged to buyers
	SellRate        int64         `mapstructure:"sell_rate"` // payout per sold item credited to sellers
	MinBuyQuantity  int           `mapstructure:"min_buy_quantity"`
	MinSellQuantity int           `mapstructure:"min_sell_quantity"`
	MinWalletAdd    int64         `mapstructure:"min_wallet_add"`
	MaxWalletAdd    int64         `mapstructure:"max_wallet_add"`
	PaymentTimeout  time.Duration `mapstructure:"payment_timeout"` // validity window of a top-up order
	PollInterval    time.Duration `mapstructure:"poll_interval"`   // gateway poll cadence for order watchers
}

// NotifyConfig holds the best-effort admin notification webhook.
type NotifyConfig struct {
	AdminWebhookURL string `mapstructure:"admin_webhook_url"` // empty = notifications disabled
}

// APIConfig holds credentials for trusted front-end callers (the chat bot).
type APIConfig struct {
	InternalToken string `mapstructure:"internal_token"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: GMM (Gmail Marketplace).
// Nested keys use underscore: GMM_DATABASE_HOST, GMM_MARKET_BUY_RATE, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "gmail_marketplace")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("gateway.app_id", "")
	v.SetDefault("gateway.secret_key", "")
	v.SetDefault("gateway.env", "SANDBOX")
	v.SetDefault("gateway.webhook_secret", "")
	v.SetDefault("gateway.timeout", "10s")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "12h")
	v.SetDefault("jwt.issuer", "gmail-marketplace")
	v.SetDefault("aes.key", "")
	v.SetDefault("market.buy_rate", 1500) // ₹15 per item
	v.SetDefault("market.sell_rate", 900) // ₹9 per item
	v.SetDefault("market.min_buy_quantity", 2)
	v.SetDefault("market.min_sell_quantity", 2)
	v.SetDefault("market.min_wallet_add", 1500)  // ₹15
	v.SetDefault("market.max_wallet_add", 50000) // ₹500
	v.SetDefault("market.payment_timeout", "15m")
	v.SetDefault("market.poll_interval", "5s")
	v.SetDefault("notify.admin_webhook_url", "")
	v.SetDefault("api.internal_token", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: GMM_MARKET_BUY_RATE -> market.buy_rate
	v.SetEnvPrefix("GMM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required — env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Market.BuyRate <= 0 || c.Market.SellRate <= 0 {
		return fmt.Errorf("market rates must be positive")
	}
	if c.Market.SellRate > c.Market.BuyRate {
		return fmt.Errorf("sell_rate %d exceeds buy_rate %d", c.Market.SellRate, c.Market.BuyRate)
	}
	if c.Market.MinWalletAdd <= 0 || c.Market.MaxWalletAdd < c.Market.MinWalletAdd {
		return fmt.Errorf("invalid wallet add limits [%d, %d]", c.Market.MinWalletAdd, c.Market.MaxWalletAdd)
	}
	if c.Market.PaymentTimeout <= 0 || c.Market.PollInterval <= 0 {
		return fmt.Errorf("payment_timeout and poll_interval must be positive")
	}
	return nil
}
