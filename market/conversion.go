package market

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"
)

// ErrRateUnavailable is returned by rate sources that cannot price a pair.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

// DefaultRateTimeout bounds a single provider call.
const DefaultRateTimeout = 5 * time.Second

// RateSource returns units of quote currency per 1 unit of base currency.
type RateSource interface {
	FetchRate(ctx context.Context, base, quote string) (float64, error)
}

// TimedRateSource is a RateSource that knows when the provider produced a
// rate, such as one that serves from a cache. A zero fetchedAt means now.
type TimedRateSource interface {
	RateSource
	FetchRateAt(ctx context.Context, base, quote string) (rate float64, fetchedAt time.Time, err error)
}

// RateQuote is the outcome of one rate lookup. FetchedAt is when the
// provider produced the rate, which for a cached rate predates the lookup.
// It is only set when IsRealTime is true.
type RateQuote struct {
	Base       string
	Quote      string
	Rate       float64
	Available  bool
	IsRealTime bool
	FetchedAt  time.Time
}

// Identity reports whether no conversion is needed.
func (q RateQuote) Identity() bool {
	return q.Base == q.Quote
}

// nonConvertible currencies are never sent to the fiat rate provider.
var nonConvertible = map[string]bool{
	"BTC": true,
	"ETH": true,
	"XAU": true,
}

// Convertible reports whether the rate provider can price code.
func Convertible(code string) bool {
	return !nonConvertible[strings.ToUpper(code)]
}

// UnavailableQuote is the approximate-mode quote for a pair.
func UnavailableQuote(account, quote string) RateQuote {
	return RateQuote{Base: account, Quote: quote}
}

// ResolveRate applies the rate acquisition policy for converting an
// account balance into the instrument's quote currency. It never fails:
// anything short of a usable live rate yields an unavailable quote.
func ResolveRate(ctx context.Context, src RateSource, account, quote string, timeout time.Duration) RateQuote {
	account = strings.ToUpper(account)
	quote = strings.ToUpper(quote)

	// Case 1: account currency is the quote currency (EUR/USD in a USD account)
	if account == quote {
		return RateQuote{Base: account, Quote: quote, Rate: 1.0, Available: true}
	}

	// Case 2: the provider only speaks fiat
	if !Convertible(account) || !Convertible(quote) || src == nil {
		return UnavailableQuote(account, quote)
	}

	if timeout <= 0 {
		timeout = DefaultRateTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		rate      float64
		fetchedAt time.Time
		err       error
	)
	if ts, ok := src.(TimedRateSource); ok {
		rate, fetchedAt, err = ts.FetchRateAt(ctx, account, quote)
	} else {
		rate, err = src.FetchRate(ctx, account, quote)
	}
	if err != nil || math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return UnavailableQuote(account, quote)
	}
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	return RateQuote{
		Base:       account,
		Quote:      quote,
		Rate:       rate,
		Available:  true,
		IsRealTime: true,
		FetchedAt:  fetchedAt.UTC(),
	}
}
