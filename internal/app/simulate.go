package app

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"crypto-price-alerts/internal/events"
	"crypto-price-alerts/internal/rules"
)

// SimulateAlert 以给定的目标价和现价构造一次告警，走完整的通知链路。
func (a *App) SimulateAlert(ctx context.Context, symbol string, target, current decimal.Decimal) error {
	notifier := a.newNotifier()
	if notifier == nil {
		return errors.New("未配置任何告警通道")
	}

	cond := rules.GreaterOrEqual
	if current.Cmp(target) < 0 {
		cond = rules.LessOrEqual
	}

	alarm := events.Alarm{
		RuleID:    "simulated",
		Symbol:    symbol,
		Target:    target,
		Condition: cond,
		Observed:  current,
		At:        time.Now().UTC(),
	}
	return notifier.Notify(ctx, alarm)
}
