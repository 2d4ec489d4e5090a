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

const upbitDefaultBaseURL = "https://api.upbit.com"

// Upbit fetches ticker prices from the Upbit public API. Upbit quotes with
// the market first, so the instrument is reversed (USDT-BTC).
type Upbit struct {
	baseURL   string
	userAgent string
	client    *http.Client
	logger    zerolog.Logger
}

// NewUpbit constructs the Upbit ticker client.
func NewUpbit(opts Options, logger zerolog.Logger) *Upbit {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = upbitDefaultBaseURL
	}
	return &Upbit{
		baseURL:   baseURL,
		userAgent: opts.userAgent(),
		client:    newHTTPClient(opts.timeout()),
		logger:    logger.With().Str("component", "source_upbit").Logger(),
	}
}

// Name identifies the source in chain diagnostics.
func (u *Upbit) Name() string { return "upbit" }

// Fetch retrieves the last trade price for the canonical symbol.
func (u *Upbit) Fetch(ctx context.Context, sym string) (decimal.Decimal, error) {
	pair := symbol.ForUpbit(sym)
	endpoint := fmt.Sprintf("%s/v1/ticker?markets=%s", u.baseURL, url.QueryEscape(pair))

	var body []struct {
		TradePrice decimal.Decimal `json:"trade_price"`
	}
	if err := getJSON(ctx, u.client, endpoint, u.userAgent, &body); err != nil {
		return decimal.Decimal{}, err
	}
	if len(body) == 0 {
		return decimal.Decimal{}, errors.New("empty list")
	}
	price := body[0].TradePrice
	if price.IsZero() {
		return decimal.Decimal{}, errors.New("missing trade_price field")
	}
	return price, nil
}

var _ PriceSource = (*Upbit)(nil)
