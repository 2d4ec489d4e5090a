package app

import (
	"context"
	"fmt"
	"os"

	"crypto-price-alerts/internal/engine"
	"crypto-price-alerts/internal/events"
)

// CheckOnce runs a single out-of-band evaluation pass and prints the
// outcome, mirroring the periodic cycle without starting the scheduler.
func (a *App) CheckOnce(ctx context.Context) error {
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	bus := events.NewBus()
	checker := engine.New(store, a.newOracle(), bus, a.engineSettings(), a.Logger)

	if err := checker.ManualRefresh(ctx); err != nil {
		return err
	}

	notifier := a.newNotifier()
	alarms := 0
	for {
		ev, ok := bus.TryNext()
		if !ok {
			break
		}
		switch ev.Kind {
		case events.KindAlarm:
			alarms++
			alarm := *ev.Alarm
			fmt.Fprintf(os.Stdout, "ALERT %s: price %s (target %s %s)\n",
				alarm.Symbol, alarm.Observed.String(), string(alarm.Condition), alarm.Target.String())
			if notifier != nil {
				if err := notifier.Notify(ctx, alarm); err != nil {
					a.Logger.Error().Err(err).Str("symbol", alarm.Symbol).Msg("failed to dispatch alert")
				}
			}
		case events.KindStatus:
			status := *ev.Status
			fmt.Fprintf(os.Stdout, "Checked %d rule(s), %d failure(s).\n", status.Checked, status.Failures)
		}
	}
	if alarms == 0 {
		fmt.Fprintln(os.Stdout, "no alerts triggered")
	}
	return nil
}
