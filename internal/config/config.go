package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"crypto-price-alerts/internal/logging"
)

// MinCheckInterval is the floor for the polling cadence; anything faster
// hammers the keyless public ticker endpoints.
const MinCheckInterval = 10 * time.Second

// Config materialises application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Logging  logging.Config `mapstructure:"logging"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
	Sources  SourcesConfig  `mapstructure:"sources"`
	Store    StoreConfig    `mapstructure:"store"`
	Alerting AlertingConfig `mapstructure:"alerting"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// MonitorConfig governs polling cadence and trigger behaviour.
type MonitorConfig struct {
	CheckInterval time.Duration `mapstructure:"check_interval"`
	AutoSilence   time.Duration `mapstructure:"auto_silence"`
	AssumeQuote   string        `mapstructure:"assume_quote"`
	OnTrigger     string        `mapstructure:"on_trigger"`
	StartupDelay  time.Duration `mapstructure:"startup_delay"`
	RulePause     time.Duration `mapstructure:"rule_pause"`
}

// SourcesConfig parameterises the exchange ticker clients. Base URLs are
// overridable for tests; empty values fall back to the public endpoints.
type SourcesConfig struct {
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
	BinanceURL     string        `mapstructure:"binance_url"`
	BitunixURL     string        `mapstructure:"bitunix_url"`
	BybitURL       string        `mapstructure:"bybit_url"`
	CoinbaseURL    string        `mapstructure:"coinbase_url"`
	UpbitURL       string        `mapstructure:"upbit_url"`
	OKXURL         string        `mapstructure:"okx_url"`
}

// StoreConfig selects the rule store backend. A configured DSN wins over
// the JSON file path.
type StoreConfig struct {
	Path     string         `mapstructure:"path"`
	Database DatabaseConfig `mapstructure:"database"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// AlertingConfig defines alert routing.
type AlertingConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig 描述 Telegram 告警参数。
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("COINALERT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "coinalert")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file", "")

	v.SetDefault("monitor.check_interval", "60s")
	v.SetDefault("monitor.auto_silence", "60s")
	v.SetDefault("monitor.assume_quote", "USDT")
	v.SetDefault("monitor.on_trigger", "disable")
	v.SetDefault("monitor.startup_delay", "0s")
	v.SetDefault("monitor.rule_pause", "50ms")

	v.SetDefault("sources.request_timeout", "10s")
	v.SetDefault("sources.user_agent", "coinalert/1.0")

	v.SetDefault("store.path", "crypto_alerts.json")
	v.SetDefault("store.database.max_open_conns", 10)
	v.SetDefault("store.database.max_idle_conns", 5)
	v.SetDefault("store.database.conn_max_lifetime", "30m")

	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Monitor.CheckInterval < MinCheckInterval {
		return fmt.Errorf("monitor.check_interval must be at least %s", MinCheckInterval)
	}
	if c.Monitor.AutoSilence < time.Second {
		return fmt.Errorf("monitor.auto_silence must be at least 1s")
	}
	if strings.TrimSpace(c.Monitor.AssumeQuote) == "" {
		return fmt.Errorf("monitor.assume_quote must not be empty")
	}
	switch c.Monitor.OnTrigger {
	case "disable", "remove":
	default:
		return fmt.Errorf("monitor.on_trigger must be %q or %q", "disable", "remove")
	}
	if c.Sources.RequestTimeout <= 0 {
		return fmt.Errorf("sources.request_timeout must be greater than zero")
	}
	if c.Monitor.RulePause < 0 {
		return fmt.Errorf("monitor.rule_pause cannot be negative")
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token 必须配置")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id 必须配置")
		}
	}
	return nil
}
