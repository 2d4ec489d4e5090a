// Package source implements the keyless exchange ticker clients and the
// ordered fallback chain over them.
package source

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PriceSource retrieves the last traded price for a canonical symbol from
// one exchange. Implementations translate the canonical form into their
// own instrument identifier and treat every failure mode (transport,
// status, body shape) as an ordinary error.
type PriceSource interface {
	Name() string
	Fetch(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// Options parameterise a ticker client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return 10 * time.Second
	}
	return o.Timeout
}

func (o Options) userAgent() string {
	if o.UserAgent == "" {
		return "coinalert/1.0"
	}
	return o.UserAgent
}
