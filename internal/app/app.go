package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"crypto-price-alerts/internal/alerting"
	"crypto-price-alerts/internal/config"
	"crypto-price-alerts/internal/engine"
	"crypto-price-alerts/internal/events"
	"crypto-price-alerts/internal/rules"
	"crypto-price-alerts/internal/scheduler"
	"crypto-price-alerts/internal/source"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

// openStore picks the rule store backend: a configured DSN selects
// Postgres, otherwise the JSON document next to the binary.
func (a *App) openStore(ctx context.Context) (rules.Store, error) {
	if dsn := a.Config.Store.Database.DSN; dsn != "" {
		pool, err := rules.NewPool(ctx, a.Config.Store.Database)
		if err != nil {
			return nil, err
		}
		store, err := rules.NewPostgresStore(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return store, nil
	}
	return rules.NewFileStore(rules.DefaultPath(a.Config.Store.Path))
}

// newOracle assembles the fixed source chain. Order is priority: the big
// spot venues first, the smaller and regional ones last.
func (a *App) newOracle() *source.Oracle {
	cfg := a.Config.Sources
	opts := func(base string) source.Options {
		return source.Options{
			BaseURL:   base,
			Timeout:   cfg.RequestTimeout,
			UserAgent: cfg.UserAgent,
		}
	}

	chain := []source.PriceSource{
		source.NewBinance(opts(cfg.BinanceURL), a.Logger),
		source.NewBitunix(opts(cfg.BitunixURL), a.Logger),
		source.NewBybit(opts(cfg.BybitURL), a.Logger),
		source.NewCoinbase(opts(cfg.CoinbaseURL), a.Logger),
		source.NewUpbit(opts(cfg.UpbitURL), a.Logger),
		source.NewOKX(opts(cfg.OKXURL), a.Logger),
	}
	return source.NewOracle(chain, a.Logger)
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}

func (a *App) engineSettings() func() engine.Settings {
	return func() engine.Settings {
		return engine.Settings{
			OnTrigger: engine.TriggerPolicy(a.Config.Monitor.OnTrigger),
			RulePause: a.Config.Monitor.RulePause,
		}
	}
}

// Run executes the long-running monitoring service: the scheduler drives
// evaluation cycles while this goroutine drains the event bus.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	bus := events.NewBus()
	defer bus.Close()

	checker := engine.New(store, a.newOracle(), bus, a.engineSettings(), a.Logger)

	sched := scheduler.New(scheduler.Options{
		Interval:     func() time.Duration { return a.Config.Monitor.CheckInterval },
		StartupDelay: a.Config.Monitor.StartupDelay,
	}, a.Logger)

	a.Logger.Info().
		Dur("check_interval", a.Config.Monitor.CheckInterval).
		Str("on_trigger", a.Config.Monitor.OnTrigger).
		Msg("starting monitoring service")

	done := make(chan error, 1)
	go func() {
		done <- sched.Run(ctx, checker.RunCycle)
	}()

	a.consumeEvents(ctx, bus)

	err = <-done
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("service terminated with error")
		return err
	}

	a.Logger.Info().Msg("monitoring service stopped")
	return nil
}

// consumeEvents drains the bus until ctx is cancelled, rendering alarms
// and status lines and forwarding alarms to the notifier.
func (a *App) consumeEvents(ctx context.Context, bus *events.Bus) {
	notifier := a.newNotifier()
	bell := newBellGate(a.Config.Monitor.AutoSilence)

	for {
		ev, err := bus.Next(ctx)
		if err != nil {
			return
		}

		switch ev.Kind {
		case events.KindAlarm:
			alarm := *ev.Alarm
			a.Logger.Info().
				Str("symbol", alarm.Symbol).
				Str("rule_id", alarm.RuleID).
				Str("condition", string(alarm.Condition)).
				Str("target", alarm.Target.String()).
				Str("price", alarm.Observed.String()).
				Msg("ALERT")
			bell.ring()
			if notifier != nil {
				if err := notifier.Notify(ctx, alarm); err != nil {
					a.Logger.Error().Err(err).Str("symbol", alarm.Symbol).Msg("failed to dispatch alert")
				}
			}
		case events.KindStatus:
			status := *ev.Status
			a.Logger.Info().
				Time("at", status.At).
				Int("checked", status.Checked).
				Int("failures", status.Failures).
				Bool("manual", status.Manual).
				Msg("cycle complete")
		}
	}
}

// bellGate rings the terminal bell on an alarm and then stays silent for
// the configured auto-silence window.
type bellGate struct {
	window time.Duration
	last   time.Time
}

func newBellGate(window time.Duration) *bellGate {
	return &bellGate{window: window}
}

func (g *bellGate) ring() {
	now := time.Now()
	if !g.last.IsZero() && now.Sub(g.last) < g.window {
		return
	}
	g.last = now
	fmt.Fprint(os.Stdout, "\a")
}
