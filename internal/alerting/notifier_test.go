package alerting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"crypto-price-alerts/internal/events"
	"crypto-price-alerts/internal/rules"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testAlarm() events.Alarm {
	return events.Alarm{
		RuleID:    "r-1",
		Symbol:    "BTCUSDT",
		Target:    decimal.NewFromInt(65000),
		Condition: rules.GreaterOrEqual,
		Observed:  decimal.RequireFromString("65100.5"),
		At:        time.Now(),
	}
}

func TestTelegramNotifierSuccess(t *testing.T) {
	received := make(map[string]string)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "sendMessage") {
			t.Fatalf("路径应包含 sendMessage, 实际 %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("解析请求体失败: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, testLogger())
	if err := notifier.Notify(context.Background(), testAlarm()); err != nil {
		t.Fatalf("Telegram Notify 应成功: %v", err)
	}

	if received["chat_id"] != "chat" {
		t.Fatalf("chat_id 不正确: %#v", received)
	}
	if !strings.Contains(received["text"], "BTCUSDT") {
		t.Fatalf("text 应包含交易对: %q", received["text"])
	}
	if !strings.Contains(received["text"], "65100.5") {
		t.Fatalf("text 应包含现价: %q", received["text"])
	}
}

func TestTelegramNotifierError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false})
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, testLogger())
	if err := notifier.Notify(context.Background(), testAlarm()); err == nil {
		t.Fatal("ok=false 应报错")
	}
}

func TestTelegramNotifierHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, testLogger())
	if err := notifier.Notify(context.Background(), testAlarm()); err == nil {
		t.Fatal("HTTP 502 应报错")
	}
}

func TestRenderMessageDirection(t *testing.T) {
	alarm := testAlarm()
	msg := renderMessage(alarm)
	if !strings.Contains(msg, "reached or exceeded") {
		t.Fatalf(">= 告警文案不正确: %q", msg)
	}

	alarm.Condition = rules.LessOrEqual
	msg = renderMessage(alarm)
	if !strings.Contains(msg, "reached or dropped below") {
		t.Fatalf("<= 告警文案不正确: %q", msg)
	}
}
