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

const binanceDefaultBaseURL = "https://data-api.binance.vision"

// Binance fetches spot last prices from the Binance public data API.
type Binance struct {
	baseURL   string
	userAgent string
	client    *http.Client
	logger    zerolog.Logger
}

// NewBinance constructs the Binance ticker client.
func NewBinance(opts Options, logger zerolog.Logger) *Binance {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = binanceDefaultBaseURL
	}
	return &Binance{
		baseURL:   baseURL,
		userAgent: opts.userAgent(),
		client:    newHTTPClient(opts.timeout()),
		logger:    logger.With().Str("component", "source_binance").Logger(),
	}
}

// Name identifies the source in chain diagnostics.
func (b *Binance) Name() string { return "binance" }

// Fetch retrieves the last spot price for the canonical symbol.
func (b *Binance) Fetch(ctx context.Context, sym string) (decimal.Decimal, error) {
	pair := symbol.ForBinance(sym)
	endpoint := fmt.Sprintf("%s/api/v3/ticker/price?symbol=%s", b.baseURL, url.QueryEscape(pair))

	var body struct {
		Price decimal.Decimal `json:"price"`
	}
	if err := getJSON(ctx, b.client, endpoint, b.userAgent, &body); err != nil {
		return decimal.Decimal{}, err
	}
	if body.Price.IsZero() {
		return decimal.Decimal{}, errors.New("missing price field")
	}
	return body.Price, nil
}

var _ PriceSource = (*Binance)(nil)
