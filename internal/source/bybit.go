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

const bybitDefaultBaseURL = "https://api.bybit.com"

// Bybit fetches spot last prices from the Bybit v5 market API.
type Bybit struct {
	baseURL   string
	userAgent string
	client    *http.Client
	logger    zerolog.Logger
}

// NewBybit constructs the Bybit ticker client.
func NewBybit(opts Options, logger zerolog.Logger) *Bybit {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = bybitDefaultBaseURL
	}
	return &Bybit{
		baseURL:   baseURL,
		userAgent: opts.userAgent(),
		client:    newHTTPClient(opts.timeout()),
		logger:    logger.With().Str("component", "source_bybit").Logger(),
	}
}

// Name identifies the source in chain diagnostics.
func (b *Bybit) Name() string { return "bybit" }

// Fetch retrieves the last spot price for the canonical symbol.
func (b *Bybit) Fetch(ctx context.Context, sym string) (decimal.Decimal, error) {
	pair := symbol.ForBybit(sym)
	endpoint := fmt.Sprintf("%s/v5/market/tickers?category=spot&symbol=%s", b.baseURL, url.QueryEscape(pair))

	var body struct {
		Result struct {
			List []struct {
				LastPrice decimal.Decimal `json:"lastPrice"`
			} `json:"list"`
		} `json:"result"`
	}
	if err := getJSON(ctx, b.client, endpoint, b.userAgent, &body); err != nil {
		return decimal.Decimal{}, err
	}
	if len(body.Result.List) == 0 {
		return decimal.Decimal{}, errors.New("empty list")
	}
	price := body.Result.List[0].LastPrice
	if price.IsZero() {
		return decimal.Decimal{}, errors.New("missing lastPrice field")
	}
	return price, nil
}

var _ PriceSource = (*Bybit)(nil)
