package app

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"crypto-price-alerts/internal/rules"
	"crypto-price-alerts/internal/symbol"
)

// AddRule validates user input, constructs a rule, and persists it.
func (a *App) AddRule(ctx context.Context, rawSymbol, rawTarget, rawCondition string, enabled bool) (rules.Rule, error) {
	target, err := decimal.NewFromString(rawTarget)
	if err != nil {
		return rules.Rule{}, fmt.Errorf("%w: target price %q is not a number", rules.ErrInvalidInput, rawTarget)
	}
	cond, err := rules.ParseCondition(rawCondition)
	if err != nil {
		return rules.Rule{}, err
	}

	rule, err := rules.New(rawSymbol, a.Config.Monitor.AssumeQuote, target, cond, enabled)
	if err != nil {
		return rules.Rule{}, err
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return rules.Rule{}, err
	}
	defer store.Close()

	if err := store.Add(ctx, rule); err != nil {
		return rules.Rule{}, err
	}
	return rule, nil
}

// ListRules prints all stored rules.
func (a *App) ListRules(ctx context.Context) error {
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	list, err := store.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(os.Stdout, "no rules found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tSymbol\tCondition\tTarget\tStatus\tUpdated (UTC)")
	for _, rule := range list {
		status := "enabled"
		if !rule.Enabled {
			status = "disabled"
		}
		updated := ""
		if !rule.UpdatedAt.IsZero() {
			updated = rule.UpdatedAt.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\t%s\n",
			rule.ID, rule.Symbol, string(rule.Condition), rule.Target.String(), status, updated)
	}
	return writer.Flush()
}

// SetRuleEnabled flips a rule's enabled flag.
func (a *App) SetRuleEnabled(ctx context.Context, id string, enabled bool) error {
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if enabled {
		return store.Enable(ctx, id)
	}
	return store.Disable(ctx, id)
}

// RemoveRule deletes a rule permanently.
func (a *App) RemoveRule(ctx context.Context, id string) error {
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.Remove(ctx, id)
}

// EditRule rewrites the given fields of an existing rule; empty arguments
// leave the field unchanged.
func (a *App) EditRule(ctx context.Context, id, rawSymbol, rawTarget, rawCondition string) (rules.Rule, error) {
	store, err := a.openStore(ctx)
	if err != nil {
		return rules.Rule{}, err
	}
	defer store.Close()

	rule, err := store.Get(ctx, id)
	if err != nil {
		return rules.Rule{}, err
	}

	if rawSymbol != "" {
		sym := symbol.Normalize(rawSymbol, a.Config.Monitor.AssumeQuote)
		if sym == "" {
			return rules.Rule{}, fmt.Errorf("%w: symbol must not be empty", rules.ErrInvalidInput)
		}
		rule.Symbol = sym
	}
	if rawTarget != "" {
		target, err := decimal.NewFromString(rawTarget)
		if err != nil {
			return rules.Rule{}, fmt.Errorf("%w: target price %q is not a number", rules.ErrInvalidInput, rawTarget)
		}
		rule.Target = target
	}
	if rawCondition != "" {
		cond, err := rules.ParseCondition(rawCondition)
		if err != nil {
			return rules.Rule{}, err
		}
		rule.Condition = cond
	}

	if err := rules.ValidateEdit(rule); err != nil {
		return rules.Rule{}, err
	}
	if err := store.Update(ctx, rule); err != nil {
		return rules.Rule{}, err
	}
	return rule, nil
}
