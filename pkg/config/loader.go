// Package config provides configuration loading and validation utilities.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultRatesURL    = "https://www.datos.gov.co/resource/mcec-87by.json"
	defaultTronURL     = "https://apilist.tronscan.org/api/"
	defaultEthURL      = "https://api.etherscan.io/api"
	defaultReconCron   = "*/10 * * * *"
	defaultStaleAfter  = "24h"
	defaultHTTPTimeout = "10s"
)

// Load reads configuration from YAML files and environment variables, validates it, and returns the resulting Config.
func Load() (*Config, *viper.Viper, error) {
	if err := godotenv.Load(".env.local", ".env"); err != nil {
		// missing env files are fine outside local development
		_ = err
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	v := viper.New()
	v.SetConfigFile(fmt.Sprintf("./configs/%s.yaml", env))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.AppEnv = env

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return nil, nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, v, nil
}

// Watch reloads the config file on change and invokes onReload with the fresh Config.
// Reload failures keep the previous configuration in effect.
func Watch(v *viper.Viper, log *slog.Logger, onReload func(*Config)) {
	if v == nil || onReload == nil {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			if log != nil {
				log.Error("config reload failed", slog.String("file", e.Name), slog.Any("error", err))
			}
			return
		}

		validate := validator.New(validator.WithRequiredStructEnabled())
		if err := validate.Struct(cfg); err != nil {
			if log != nil {
				log.Error("reloaded config is invalid, keeping previous", slog.String("file", e.Name), slog.Any("error", err))
			}
			return
		}

		if log != nil {
			log.Info("config reloaded", slog.String("file", e.Name))
		}

		onReload(&cfg)
	})
	v.WatchConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.mode", "polling")
	v.SetDefault("bot.timeout", "10s")

	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.shutdown_timeout", "15s")

	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("store.timeout", defaultHTTPTimeout)
	v.SetDefault("store.claimed_status", "on-hold")

	v.SetDefault("rates.url", defaultRatesURL)
	v.SetDefault("rates.timeout", defaultHTTPTimeout)
	v.SetDefault("rates.max_retries", 3)

	v.SetDefault("commission.enabled", true)
	v.SetDefault("commission.percent", 5.0)
	v.SetDefault("commission.policy", "ceil-round")

	v.SetDefault("explorers.tron_url", defaultTronURL)
	v.SetDefault("explorers.eth_url", defaultEthURL)
	v.SetDefault("explorers.timeout", defaultHTTPTimeout)

	v.SetDefault("reconciler.enabled", true)
	v.SetDefault("reconciler.cron", defaultReconCron)
	v.SetDefault("reconciler.promote_orders", false)
	v.SetDefault("reconciler.stale_after", defaultStaleAfter)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.per_user.limit", 20)
	v.SetDefault("rate_limit.per_user.window", "1m")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")

	v.SetDefault("i18n.dir", "internal/i18n")
	v.SetDefault("i18n.default_lang", "es")
}
