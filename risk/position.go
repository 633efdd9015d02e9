package risk

// EUR/USD in a USD account → no conversion, risk base = account size
// EUR/USD in a EUR account → account size × EURUSD rate, or approximated

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rb-rbloxk/ClubLiquidez-1/market"
)

// ErrIncompleteInput means the calculator abstains: a numeric input is
// missing, non-finite or not positive.
var ErrIncompleteInput = errors.New("incomplete input")

// Prompt is shown instead of a result while inputs are incomplete.
const Prompt = "Enter your account size, risk percentage and stop loss to see a position size."

// MetalPipSize is one pip of gold in price units ($0.01 per ounce).
const MetalPipSize = 0.01

type Request struct {
	AccountCurrency string
	AccountSize     float64
	RiskPercent     float64 // 2 means 2%
	StopLossPips    float64
	Instrument      market.Instrument
}

type Result struct {
	Symbol            string                 `json:"symbol"`
	AccountCurrency   string                 `json:"account_currency"`
	QuoteCurrency     string                 `json:"quote_currency"`
	Class             market.InstrumentClass `json:"class"`
	RiskAmount        float64                `json:"risk_amount"` // in QuoteCurrency
	PositionSizeUnits float64                `json:"position_size_units"`
	LotSize           string                 `json:"lot_size"`
	LotType           LotType                `json:"lot_type"`
	StandardLots      string                 `json:"standard_lots"`
	MiniLots          string                 `json:"mini_lots"`
	MicroLots         string                 `json:"micro_lots"`
	Rate              float64                `json:"rate"`
	ConversionNote    string                 `json:"conversion_note,omitempty"`
	UsedRealTimeRate  bool                   `json:"used_real_time_rate"`
	Approximate       bool                   `json:"approximate"`
}

func positive(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0) && x > 0
}

// Complete reports whether every numeric input can be used.
func (r Request) Complete() bool {
	return positive(r.AccountSize) && positive(r.RiskPercent) && positive(r.StopLossPips)
}

// PipValuePerStandardLot is the fixed quote-currency value of one pip
// for one standard lot.
func PipValuePerStandardLot(in market.Instrument) float64 {
	switch in.Class {
	case market.Metal:
		return 1.00
	case market.Crypto:
		return 10.00
	}
	if in.JPYQuoted {
		return 9.09
	}
	return 10.00
}

// Calculate sizes a position from req. The quote is only applied when it
// prices the request's own account/quote pair.
func Calculate(req Request, quote market.RateQuote) (Result, error) {
	if !req.Complete() {
		return Result{}, ErrIncompleteInput
	}
	in := req.Instrument
	if in.Symbol == "" || in.QuoteCurrency == "" {
		return Result{}, fmt.Errorf("%w: empty instrument", market.ErrUnsupportedInstrument)
	}

	account := strings.ToUpper(strings.TrimSpace(req.AccountCurrency))
	res := Result{
		Symbol:          in.Symbol,
		AccountCurrency: account,
		QuoteCurrency:   in.QuoteCurrency,
		Class:           in.Class,
		Rate:            1.0,
	}

	base := req.AccountSize
	if account != in.QuoteCurrency {
		if quote.Available && quote.Base == account && quote.Quote == in.QuoteCurrency {
			base = req.AccountSize * quote.Rate
			res.Rate = quote.Rate
			res.UsedRealTimeRate = quote.IsRealTime
			res.ConversionNote = fmt.Sprintf("%.2f %s × %.4f = %.2f %s",
				req.AccountSize, account, quote.Rate, base, in.QuoteCurrency)
		} else {
			res.Approximate = true
			res.ConversionNote = fmt.Sprintf(
				"real-time %s→%s rate unavailable; account size used as an approximation",
				account, in.QuoteCurrency)
		}
	}

	riskAmount := base * (req.RiskPercent / 100)

	var units float64
	tiers := TiersFor(in.Class)
	if in.Class == market.Metal {
		units = riskAmount / (req.StopLossPips * MetalPipSize)
	} else {
		standardLots := riskAmount / (req.StopLossPips * PipValuePerStandardLot(in))
		units = standardLots * tiers.Standard
	}

	res.RiskAmount = round(riskAmount, 2)
	restate(&res, units, tiers)
	return res, nil
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
