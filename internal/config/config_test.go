package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Monitor.CheckInterval != 60*time.Second {
		t.Fatalf("default check_interval wrong: %s", cfg.Monitor.CheckInterval)
	}
	if cfg.Monitor.AssumeQuote != "USDT" {
		t.Fatalf("default assume_quote wrong: %s", cfg.Monitor.AssumeQuote)
	}
	if cfg.Monitor.OnTrigger != "disable" {
		t.Fatalf("default on_trigger wrong: %s", cfg.Monitor.OnTrigger)
	}
	if cfg.Sources.RequestTimeout != 10*time.Second {
		t.Fatalf("default request_timeout wrong: %s", cfg.Sources.RequestTimeout)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	doc := strings.Join([]string{
		"monitor:",
		"  check_interval: 30s",
		"  auto_silence: 5s",
		"  on_trigger: remove",
		"sources:",
		"  request_timeout: 3s",
	}, "\n")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	if cfg.Monitor.CheckInterval != 30*time.Second {
		t.Fatalf("check_interval not applied: %s", cfg.Monitor.CheckInterval)
	}
	if cfg.Monitor.OnTrigger != "remove" {
		t.Fatalf("on_trigger not applied: %s", cfg.Monitor.OnTrigger)
	}
	if cfg.Sources.RequestTimeout != 3*time.Second {
		t.Fatalf("request_timeout not applied: %s", cfg.Sources.RequestTimeout)
	}
}

func TestValidateIntervalFloor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("monitor:\n  check_interval: 2s\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("interval below the floor must be rejected")
	}
}

func TestValidateRejectsBadPolicy(t *testing.T) {
	cfg := validConfig()
	cfg.Monitor.OnTrigger = "explode"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown on_trigger must be rejected")
	}
}

func TestValidateRejectsShortSilence(t *testing.T) {
	cfg := validConfig()
	cfg.Monitor.AutoSilence = 200 * time.Millisecond
	if err := cfg.Validate(); err == nil {
		t.Fatal("auto_silence under a second must be rejected")
	}
}

func TestValidateTelegramNeedsCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.Alerting.Telegram.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Fatal("telegram 启用时必须配置 bot_token")
	}
	cfg.Alerting.Telegram.BotToken = "token"
	if err := cfg.Validate(); err == nil {
		t.Fatal("telegram 启用时必须配置 chat_id")
	}
	cfg.Alerting.Telegram.ChatID = "chat"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("完整的 telegram 配置应通过校验: %v", err)
	}
}

func validConfig() *Config {
	return &Config{
		Monitor: MonitorConfig{
			CheckInterval: time.Minute,
			AutoSilence:   time.Minute,
			AssumeQuote:   "USDT",
			OnTrigger:     "disable",
		},
		Sources: SourcesConfig{RequestTimeout: 10 * time.Second},
	}
}
