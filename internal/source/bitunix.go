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

const bitunixDefaultBaseURL = "https://fapi.bitunix.com"

// Bitunix fetches futures mark prices from the Bitunix public API. It sits
// early in the chain as a fallback when the spot venues are unreachable.
type Bitunix struct {
	baseURL   string
	userAgent string
	client    *http.Client
	logger    zerolog.Logger
}

// NewBitunix constructs the Bitunix ticker client.
func NewBitunix(opts Options, logger zerolog.Logger) *Bitunix {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = bitunixDefaultBaseURL
	}
	return &Bitunix{
		baseURL:   baseURL,
		userAgent: opts.userAgent(),
		client:    newHTTPClient(opts.timeout()),
		logger:    logger.With().Str("component", "source_bitunix").Logger(),
	}
}

// Name identifies the source in chain diagnostics.
func (b *Bitunix) Name() string { return "bitunix" }

// Fetch retrieves the futures mark price for the canonical symbol.
func (b *Bitunix) Fetch(ctx context.Context, sym string) (decimal.Decimal, error) {
	pair := symbol.ForBitunix(sym)
	endpoint := fmt.Sprintf("%s/api/v1/futures/market/tickers?symbols=%s", b.baseURL, url.QueryEscape(pair))

	var body struct {
		Data []struct {
			MarkPrice decimal.Decimal `json:"markPrice"`
		} `json:"data"`
	}
	if err := getJSON(ctx, b.client, endpoint, b.userAgent, &body); err != nil {
		return decimal.Decimal{}, err
	}
	if len(body.Data) == 0 {
		return decimal.Decimal{}, errors.New("empty list")
	}
	price := body.Data[0].MarkPrice
	if price.IsZero() {
		return decimal.Decimal{}, errors.New("missing markPrice field")
	}
	return price, nil
}

var _ PriceSource = (*Bitunix)(nil)
