// Package rules defines the alert rule entity and its stores.
package rules

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"crypto-price-alerts/internal/symbol"
)

// Condition selects the threshold comparison. The literal values are the
// ones the on-disk rule document has always used.
type Condition string

const (
	// GreaterOrEqual fires when the observed price reaches or exceeds the target.
	GreaterOrEqual Condition = ">="
	// LessOrEqual fires when the observed price reaches or drops below the target.
	LessOrEqual Condition = "<="
)

// ParseCondition accepts the wire literals plus common aliases.
func ParseCondition(raw string) (Condition, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ">=", "ge", "gte", "above":
		return GreaterOrEqual, nil
	case "<=", "le", "lte", "below":
		return LessOrEqual, nil
	default:
		return "", fmt.Errorf("%w: condition must be >= or <=", ErrInvalidInput)
	}
}

// Valid reports whether the condition is one of the two known literals.
func (c Condition) Valid() bool {
	return c == GreaterOrEqual || c == LessOrEqual
}

// Rule is one monitored price condition.
type Rule struct {
	ID        string
	Symbol    string
	Target    decimal.Decimal
	Condition Condition
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Hit applies the rule's condition to an observed price. The comparison is
// exact; a single observation on the threshold triggers.
func (r Rule) Hit(price decimal.Decimal) bool {
	switch r.Condition {
	case LessOrEqual:
		return price.Cmp(r.Target) <= 0
	default:
		return price.Cmp(r.Target) >= 0
	}
}

// ErrInvalidInput wraps every rule-construction validation failure; bad
// input is rejected here and never reaches a store or the engine.
var ErrInvalidInput = errors.New("invalid rule input")

// ErrNotFound reports an unknown rule id.
var ErrNotFound = errors.New("rule not found")

// New validates user input and constructs a rule with a fresh immutable id.
func New(rawSymbol, assumeQuote string, target decimal.Decimal, cond Condition, enabled bool) (Rule, error) {
	sym := symbol.Normalize(rawSymbol, assumeQuote)
	if sym == "" {
		return Rule{}, fmt.Errorf("%w: symbol must not be empty", ErrInvalidInput)
	}
	if !target.IsPositive() {
		return Rule{}, fmt.Errorf("%w: target price must be greater than zero", ErrInvalidInput)
	}
	if !cond.Valid() {
		return Rule{}, fmt.Errorf("%w: condition must be >= or <=", ErrInvalidInput)
	}

	now := time.Now().UTC()
	return Rule{
		ID:        uuid.NewString(),
		Symbol:    sym,
		Target:    target,
		Condition: cond,
		Enabled:   enabled,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ValidateEdit checks a mutated rule before it is written back.
func ValidateEdit(r Rule) error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: id must not be empty", ErrInvalidInput)
	}
	if strings.TrimSpace(r.Symbol) == "" {
		return fmt.Errorf("%w: symbol must not be empty", ErrInvalidInput)
	}
	if !r.Target.IsPositive() {
		return fmt.Errorf("%w: target price must be greater than zero", ErrInvalidInput)
	}
	if !r.Condition.Valid() {
		return fmt.Errorf("%w: condition must be >= or <=", ErrInvalidInput)
	}
	return nil
}
