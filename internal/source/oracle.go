package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// SourceError attributes a failure to one exchange in the chain.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *SourceError) Unwrap() error { return e.Err }

// AllSourcesFailedError reports that every source in the chain failed for
// one symbol. Errors holds one entry per source, in chain order.
type AllSourcesFailedError struct {
	Symbol string
	Errors []*SourceError
}

func (e *AllSourcesFailedError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, se := range e.Errors {
		parts = append(parts, se.Error())
	}
	return fmt.Sprintf("all price sources failed for %s: %s", e.Symbol, strings.Join(parts, " | "))
}

// Oracle resolves a canonical symbol to a price by walking an ordered
// source chain. Sources are consulted strictly sequentially; the first
// success wins and later sources are never touched. Sequential probing
// keeps the keyless endpoints happy and the error attribution unambiguous.
type Oracle struct {
	sources []PriceSource
	logger  zerolog.Logger
}

// NewOracle constructs an Oracle over the given chain. Order is priority.
func NewOracle(sources []PriceSource, logger zerolog.Logger) *Oracle {
	return &Oracle{
		sources: sources,
		logger:  logger.With().Str("component", "oracle").Logger(),
	}
}

// Resolve returns the first successful price, or *AllSourcesFailedError
// carrying every per-source failure in chain order.
func (o *Oracle) Resolve(ctx context.Context, sym string) (decimal.Decimal, error) {
	var failures []*SourceError
	for _, src := range o.sources {
		if err := ctx.Err(); err != nil {
			return decimal.Decimal{}, err
		}

		price, err := src.Fetch(ctx, sym)
		if err == nil {
			o.logger.Debug().
				Str("source", src.Name()).
				Str("symbol", sym).
				Str("price", price.String()).
				Msg("price resolved")
			return price, nil
		}

		se := &SourceError{Source: src.Name(), Err: err}
		failures = append(failures, se)
		o.logger.Warn().
			Str("source", src.Name()).
			Str("symbol", sym).
			Err(err).
			Msg("source failed, trying next")
	}

	return decimal.Decimal{}, &AllSourcesFailedError{Symbol: sym, Errors: failures}
}
