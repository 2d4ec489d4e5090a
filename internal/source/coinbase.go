package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"crypto-price-alerts/internal/symbol"
)

const coinbaseDefaultBaseURL = "https://api.exchange.coinbase.com"

// Coinbase fetches product ticker prices from the Coinbase Exchange API.
// Quoting is in USD rather than USDT; close enough for alerting purposes.
type Coinbase struct {
	baseURL   string
	userAgent string
	client    *http.Client
	logger    zerolog.Logger
}

// NewCoinbase constructs the Coinbase ticker client.
func NewCoinbase(opts Options, logger zerolog.Logger) *Coinbase {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = coinbaseDefaultBaseURL
	}
	return &Coinbase{
		baseURL:   baseURL,
		userAgent: opts.userAgent(),
		client:    newHTTPClient(opts.timeout()),
		logger:    logger.With().Str("component", "source_coinbase").Logger(),
	}
}

// Name identifies the source in chain diagnostics.
func (c *Coinbase) Name() string { return "coinbase" }

// Fetch retrieves the last trade price for the canonical symbol.
func (c *Coinbase) Fetch(ctx context.Context, sym string) (decimal.Decimal, error) {
	pair := symbol.ForCoinbase(sym)
	endpoint := fmt.Sprintf("%s/products/%s/ticker", c.baseURL, url.PathEscape(pair))

	var body struct {
		Price decimal.Decimal `json:"price"`
	}
	if err := getJSON(ctx, c.client, endpoint, c.userAgent, &body); err != nil {
		return decimal.Decimal{}, err
	}
	if body.Price.IsZero() {
		return decimal.Decimal{}, errors.New("missing price field")
	}
	return body.Price, nil
}

var _ PriceSource = (*Coinbase)(nil)
