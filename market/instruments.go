// market/instruments.go
package market

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedInstrument is returned for symbols outside the catalog.
var (
	ErrUnsupportedInstrument = errors.New("unsupported instrument")
	ErrUnsupportedCurrency   = errors.New("unsupported account currency")
)

// InstrumentClass selects pip-value and lot-size conventions.
type InstrumentClass string

const (
	Forex  InstrumentClass = "forex"
	Metal  InstrumentClass = "metal"
	Crypto InstrumentClass = "crypto"
)

type Instrument struct {
	Symbol        string          `json:"symbol"`
	BaseCurrency  string          `json:"base_currency"`
	QuoteCurrency string          `json:"quote_currency"`
	Class         InstrumentClass `json:"class"`
	JPYQuoted     bool            `json:"jpy_quoted"`
}

// symbols is the fixed catalog, in display order.
var symbols = []string{
	"EUR/USD", "GBP/USD", "USD/JPY", "USD/CHF", "AUD/USD", "USD/CAD", "NZD/USD",
	"EUR/GBP", "EUR/JPY", "GBP/JPY", "CHF/JPY", "EUR/CHF", "AUD/JPY", "CAD/JPY",
	"NZD/JPY", "GBP/CHF", "AUD/CHF", "CAD/CHF", "NZD/CHF", "AUD/CAD", "NZD/CAD",
	"AUD/NZD", "EUR/AUD", "GBP/AUD", "EUR/CAD", "GBP/CAD", "EUR/NZD", "GBP/NZD",
	"XAU/USD", "BTC/USD",
}

var accountCurrencies = []string{"USD", "EUR", "GBP", "JPY", "CHF", "AUD", "CAD", "NZD", "BTC", "ETH"}

// Instruments is built once from the catalog so every symbol resolves to
// exactly one quote currency and class.
var Instruments = buildCatalog(symbols)

func buildCatalog(list []string) map[string]Instrument {
	out := make(map[string]Instrument, len(list))
	for _, s := range list {
		out[s] = classify(s)
	}
	return out
}

func classify(symbol string) Instrument {
	base, quote, _ := strings.Cut(symbol, "/")
	in := Instrument{
		Symbol:        symbol,
		BaseCurrency:  base,
		QuoteCurrency: quote,
		Class:         Forex,
	}

	switch {
	case strings.Contains(symbol, "XAU"):
		in.QuoteCurrency = "USD"
		in.Class = Metal
	case strings.Contains(symbol, "BTC"):
		in.QuoteCurrency = "USD"
		in.Class = Crypto
	default:
		in.JPYQuoted = in.QuoteCurrency == "JPY"
	}
	return in
}

// NormalizeSymbol upper-cases a symbol and accepts OANDA style "EUR_USD".
func NormalizeSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	return strings.ReplaceAll(s, "_", "/")
}

// Resolve maps a symbol to its catalog entry.
func Resolve(symbol string) (Instrument, error) {
	in, ok := Instruments[NormalizeSymbol(symbol)]
	if !ok {
		return Instrument{}, fmt.Errorf("%w: %q", ErrUnsupportedInstrument, symbol)
	}
	return in, nil
}

// Symbols returns the catalog in display order.
func Symbols() []string {
	out := make([]string, len(symbols))
	copy(out, symbols)
	return out
}

// AccountCurrencies returns the currencies an account may be held in.
func AccountCurrencies() []string {
	out := make([]string, len(accountCurrencies))
	copy(out, accountCurrencies)
	return out
}

// IsAccountCurrency reports whether code is a supported account currency.
func IsAccountCurrency(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range accountCurrencies {
		if c == code {
			return true
		}
	}
	return false
}
