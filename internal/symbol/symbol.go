// Package symbol turns user-entered tickers into canonical and
// exchange-specific instrument identifiers.
package symbol

import "strings"

const defaultQuote = "USDT"

// Normalize produces the canonical symbol stored on an alert rule:
// upper-cased, separator-free, with the assumed quote appended to bare
// base symbols. Empty input yields an empty result and must be rejected
// by the caller.
func Normalize(raw, assumeQuote string) string {
	s := clean(raw)
	if s == "" {
		return ""
	}
	if len(s) <= 5 && !strings.HasSuffix(s, assumeQuote) {
		s += assumeQuote
	}
	return s
}

func clean(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "/", "")
	s = strings.ReplaceAll(s, "-", "")
	return s
}

// The per-exchange translators below reproduce each public ticker
// endpoint's instrument format exactly; they are wire contracts, not
// style choices.

// ForBinance renders BASEQUOTE, e.g. BTC -> BTCUSDT.
func ForBinance(sym string) string {
	s := clean(sym)
	if strings.HasSuffix(s, defaultQuote) {
		return s
	}
	if len(s) <= 5 {
		return s + defaultQuote
	}
	return s
}

// ForBybit uses the same convention as Binance.
func ForBybit(sym string) string {
	return ForBinance(sym)
}

// ForBitunix uses the same convention as Binance.
func ForBitunix(sym string) string {
	return ForBinance(sym)
}

// ForCoinbase renders BASE-USD, e.g. BTCUSDT -> BTC-USD.
func ForCoinbase(sym string) string {
	return stripQuote(sym) + "-USD"
}

// ForUpbit renders QUOTE-BASE, e.g. BTCUSDT -> USDT-BTC.
func ForUpbit(sym string) string {
	return defaultQuote + "-" + stripQuote(sym)
}

// ForOKX renders BASE-QUOTE, e.g. BTCUSDT -> BTC-USDT.
func ForOKX(sym string) string {
	return stripQuote(sym) + "-" + defaultQuote
}

func stripQuote(sym string) string {
	s := clean(sym)
	return strings.TrimSuffix(s, defaultQuote)
}
