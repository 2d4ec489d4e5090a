// Package engine runs the rule evaluation cycles.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"crypto-price-alerts/internal/events"
	"crypto-price-alerts/internal/rules"
	"crypto-price-alerts/internal/source"
)

// TriggerPolicy selects what happens to a rule after it fires.
type TriggerPolicy string

const (
	// DisableOnTrigger keeps the rule in the store, re-armable by the user.
	DisableOnTrigger TriggerPolicy = "disable"
	// RemoveOnTrigger deletes the rule permanently; it cannot re-fire.
	RemoveOnTrigger TriggerPolicy = "remove"
)

// Settings is the per-cycle snapshot of tunables. A provider func hands it
// to the checker at the top of each cycle so edits apply at cycle
// boundaries, never mid-pass.
type Settings struct {
	OnTrigger TriggerPolicy
	RulePause time.Duration
}

// PriceResolver resolves a canonical symbol to a price.
type PriceResolver interface {
	Resolve(ctx context.Context, sym string) (decimal.Decimal, error)
}

// Checker evaluates every enabled rule against live prices and emits
// alarm and status events. A single mutex serializes scheduled cycles and
// manual refreshes so a trigger mutation can never interleave with a
// concurrent snapshot over the same store.
type Checker struct {
	store    rules.Store
	resolver PriceResolver
	bus      *events.Bus
	settings func() Settings
	logger   zerolog.Logger

	mu sync.Mutex
}

// New constructs a checker.
func New(store rules.Store, resolver PriceResolver, bus *events.Bus, settings func() Settings, logger zerolog.Logger) *Checker {
	return &Checker{
		store:    store,
		resolver: resolver,
		bus:      bus,
		settings: settings,
		logger:   logger.With().Str("component", "engine").Logger(),
	}
}

// RunCycle 执行一次完整的规则评估周期。
func (c *Checker) RunCycle(ctx context.Context, at time.Time) error {
	return c.runCycle(ctx, false)
}

// ManualRefresh runs the same cycle out-of-band, on demand. It does not
// reset the periodic timer; the mutex keeps it from overlapping a
// scheduled pass.
func (c *Checker) ManualRefresh(ctx context.Context) error {
	return c.runCycle(ctx, true)
}

func (c *Checker) runCycle(ctx context.Context, manual bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cfg := c.settings()

	snapshot, err := c.store.List(ctx)
	if err != nil {
		return fmt.Errorf("snapshot rules: %w", err)
	}

	checked := 0
	failures := 0

	for _, rule := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !rule.Enabled {
			continue
		}
		checked++

		price, err := c.resolver.Resolve(ctx, rule.Symbol)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			failures++
			c.logFailure(rule, err)
			continue
		}

		if rule.Hit(price) {
			c.bus.PublishAlarm(events.Alarm{
				RuleID:    rule.ID,
				Symbol:    rule.Symbol,
				Target:    rule.Target,
				Condition: rule.Condition,
				Observed:  price,
				At:        time.Now().UTC(),
			})
			c.applyTriggerPolicy(ctx, rule, price, cfg.OnTrigger)
		}

		if !sleepCtx(ctx, cfg.RulePause) {
			return ctx.Err()
		}
	}

	c.bus.PublishStatus(events.Status{
		At:       time.Now().UTC(),
		Checked:  checked,
		Failures: failures,
		Manual:   manual,
	})
	return nil
}

// applyTriggerPolicy persists the post-trigger mutation before the cycle
// moves on. A failed write is logged and the in-memory state stands; the
// next successful write repairs the store.
func (c *Checker) applyTriggerPolicy(ctx context.Context, rule rules.Rule, price decimal.Decimal, policy TriggerPolicy) {
	var err error
	switch policy {
	case RemoveOnTrigger:
		err = c.store.Remove(ctx, rule.ID)
	default:
		err = c.store.Disable(ctx, rule.ID)
	}

	if err != nil && !errors.Is(err, rules.ErrNotFound) {
		c.logger.Error().Err(err).
			Str("rule_id", rule.ID).
			Str("policy", string(policy)).
			Msg("failed to persist trigger mutation")
	}
	c.logger.Info().
		Str("rule_id", rule.ID).
		Str("symbol", rule.Symbol).
		Str("condition", string(rule.Condition)).
		Str("target", rule.Target.String()).
		Str("price", price.String()).
		Str("policy", string(policy)).
		Msg("alert triggered")
}

func (c *Checker) logFailure(rule rules.Rule, err error) {
	log := c.logger.Warn().Str("symbol", rule.Symbol).Str("rule_id", rule.ID)
	var all *source.AllSourcesFailedError
	if errors.As(err, &all) {
		log = log.Int("sources_tried", len(all.Errors))
	}
	log.Err(err).Msg("price resolution failed, rule skipped this cycle")
}

// sleepCtx waits d unless ctx is done first; returns false on cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
