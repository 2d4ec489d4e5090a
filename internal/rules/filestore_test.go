package rules

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func newTestRule(t *testing.T, sym string) Rule {
	t.Helper()
	rule, err := New(sym, "USDT", decimal.NewFromInt(100), GreaterOrEqual, true)
	if err != nil {
		t.Fatal(err)
	}
	return rule
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "alerts.json")

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}

	rule := newTestRule(t, "btc")
	if err := store.Add(ctx, rule); err != nil {
		t.Fatal(err)
	}

	// reopen from disk
	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	list, err := reopened.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 rule after reopen, got %d", len(list))
	}
	got := list[0]
	if got.ID != rule.ID || got.Symbol != "BTCUSDT" || got.Condition != GreaterOrEqual || !got.Enabled {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
	if got.Target.Cmp(rule.Target) != 0 {
		t.Fatalf("target mismatch: %s != %s", got.Target, rule.Target)
	}
}

func TestFileStoreLegacyEnabledDefault(t *testing.T) {
	// documents written before the enabled field existed treat rules as enabled
	path := filepath.Join(t.TempDir(), "alerts.json")
	doc := `{"settings":{"check_interval_seconds":60},"coins":[{"id":"legacy-1","symbol":"BTCUSDT","target_price":50000,"condition":">="}]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	rule, err := store.Get(context.Background(), "legacy-1")
	if err != nil {
		t.Fatal(err)
	}
	if !rule.Enabled {
		t.Fatal("legacy record without enabled field must default to enabled")
	}
	if rule.Target.Cmp(decimal.NewFromInt(50000)) != 0 {
		t.Fatalf("numeric target parsed wrong: %s", rule.Target)
	}
}

func TestFileStorePreservesSettingsBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.json")
	doc := `{"settings":{"check_interval_seconds":30,"assume_quote":"USDT"},"coins":[]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Add(context.Background(), newTestRule(t, "eth")); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"check_interval_seconds"`) {
		t.Fatalf("settings block was not preserved: %s", raw)
	}
}

func TestFileStoreDisableEnableRemove(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "alerts.json"))
	if err != nil {
		t.Fatal(err)
	}

	rule := newTestRule(t, "sol")
	if err := store.Add(ctx, rule); err != nil {
		t.Fatal(err)
	}

	if err := store.Disable(ctx, rule.ID); err != nil {
		t.Fatal(err)
	}
	got, err := store.Get(ctx, rule.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Enabled {
		t.Fatal("rule should be disabled")
	}

	if err := store.Enable(ctx, rule.ID); err != nil {
		t.Fatal(err)
	}
	got, _ = store.Get(ctx, rule.ID)
	if !got.Enabled {
		t.Fatal("rule should be re-armed")
	}

	if err := store.Remove(ctx, rule.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, rule.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("removed rule should be gone, got %v", err)
	}
}

func TestFileStoreUnknownID(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "alerts.json"))
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Disable(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Remove(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Update(ctx, Rule{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
