package config

import (
	"fmt"
	"time"

	"github.com/kiris-store/checkout-bot/internal/domain"
)

// Config holds runtime configuration for the checkout bot.
type Config struct {
	AppEnv string `mapstructure:"-"`

	Bot        BotConfig        `mapstructure:"bot" validate:"required"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Redis      RedisConfig      `mapstructure:"redis" validate:"required"`
	Store      StoreConfig      `mapstructure:"store" validate:"required"`
	Rates      RatesConfig      `mapstructure:"rates"`
	Wallets    WalletsConfig    `mapstructure:"wallets" validate:"required"`
	Commission CommissionConfig `mapstructure:"commission"`
	Explorers  ExplorersConfig  `mapstructure:"explorers"`
	Reconciler ReconcilerConfig `mapstructure:"reconciler"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Logger     LoggerConfig     `mapstructure:"logger"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
	I18n       I18nConfig       `mapstructure:"i18n"`
}

// BotConfig configures the Telegram transport.
type BotConfig struct {
	Token   string        `mapstructure:"token" validate:"required"`
	Mode    string        `mapstructure:"mode" validate:"oneof=polling webhook"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ServerConfig configures the ops HTTP server (health, metrics).
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig configures the PostgreSQL connection backing the claims ledger.
type DatabaseConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     string `mapstructure:"port" validate:"required"`
	User     string `mapstructure:"user" validate:"required"`
	Password string `mapstructure:"password" validate:"required"`
	Name     string `mapstructure:"name" validate:"required"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, sslMode,
	)
}

// RedisConfig configures the Redis connection used for session state,
// locks, idempotency records and the job queue.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr" validate:"required"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	PoolTimeout  time.Duration `mapstructure:"pool_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
}

// StoreConfig configures the WooCommerce order backend.
type StoreConfig struct {
	BaseURL        string        `mapstructure:"base_url" validate:"required,url"`
	ConsumerKey    string        `mapstructure:"consumer_key" validate:"required"`
	ConsumerSecret string        `mapstructure:"consumer_secret" validate:"required"`
	Timeout        time.Duration `mapstructure:"timeout"`
	ClaimedStatus  string        `mapstructure:"claimed_status"`
}

// RatesConfig configures the COP/USD reference rate source.
type RatesConfig struct {
	URL        string        `mapstructure:"url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

// WalletsConfig holds the receiving addresses per network.
type WalletsConfig struct {
	Tron string `mapstructure:"tron" validate:"required"`
	Eth  string `mapstructure:"eth" validate:"required"`
}

// Map converts the flat wallet settings into a domain.Wallets lookup.
func (c WalletsConfig) Map() domain.Wallets {
	return domain.Wallets{
		domain.NetworkTron: c.Tron,
		domain.NetworkEth:  c.Eth,
	}
}

// CommissionConfig configures the monetization commission applied to quotes.
type CommissionConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Percent float64 `mapstructure:"percent" validate:"gte=0,lte=100"`
	Policy  string  `mapstructure:"policy" validate:"omitempty,oneof=ceil-round round none"`
}

// ExplorersConfig configures the blockchain explorer APIs used for verification.
type ExplorersConfig struct {
	TronURL    string        `mapstructure:"tron_url"`
	TronAPIKey string        `mapstructure:"tron_api_key"`
	EthURL     string        `mapstructure:"eth_url"`
	EthAPIKey  string        `mapstructure:"eth_api_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// ReconcilerConfig configures the batch claim confirmation sweep.
type ReconcilerConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Cron          string        `mapstructure:"cron"`
	PromoteOrders bool          `mapstructure:"promote_orders"`
	StaleAfter    time.Duration `mapstructure:"stale_after"`
	StaleCron     string        `mapstructure:"stale_cron"`
}

// RateLimitRule describes a single limit over a time window.
type RateLimitRule struct {
	Limit  int    `mapstructure:"limit"`
	Window string `mapstructure:"window"`
}

// RateLimitConfig configures update throttling for the bot.
type RateLimitConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	PerUser   RateLimitRule `mapstructure:"per_user"`
	Whitelist []int64       `mapstructure:"whitelist"`
}

// LoggerConfig configures structured logging output.
type LoggerConfig struct {
	Level      string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"omitempty,oneof=text json"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// SentryConfig configures error reporting.
type SentryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

// I18nConfig configures the message catalogs.
type I18nConfig struct {
	Dir         string `mapstructure:"dir"`
	DefaultLang string `mapstructure:"default_lang"`
}
