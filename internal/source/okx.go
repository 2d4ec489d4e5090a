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

const okxDefaultBaseURL = "https://www.okx.com"

// OKX fetches market ticker prices from the OKX v5 public API.
type OKX struct {
	baseURL   string
	userAgent string
	client    *http.Client
	logger    zerolog.Logger
}

// NewOKX constructs the OKX ticker client.
func NewOKX(opts Options, logger zerolog.Logger) *OKX {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = okxDefaultBaseURL
	}
	return &OKX{
		baseURL:   baseURL,
		userAgent: opts.userAgent(),
		client:    newHTTPClient(opts.timeout()),
		logger:    logger.With().Str("component", "source_okx").Logger(),
	}
}

// Name identifies the source in chain diagnostics.
func (o *OKX) Name() string { return "okx" }

// Fetch retrieves the last trade price for the canonical symbol.
func (o *OKX) Fetch(ctx context.Context, sym string) (decimal.Decimal, error) {
	pair := symbol.ForOKX(sym)
	endpoint := fmt.Sprintf("%s/api/v5/market/ticker?instId=%s", o.baseURL, url.QueryEscape(pair))

	var body struct {
		Data []struct {
			Last decimal.Decimal `json:"last"`
		} `json:"data"`
	}
	if err := getJSON(ctx, o.client, endpoint, o.userAgent, &body); err != nil {
		return decimal.Decimal{}, err
	}
	if len(body.Data) == 0 {
		return decimal.Decimal{}, errors.New("empty data")
	}
	price := body.Data[0].Last
	if price.IsZero() {
		return decimal.Decimal{}, errors.New("missing last field")
	}
	return price, nil
}

var _ PriceSource = (*OKX)(nil)
