package risk

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rb-rbloxk/ClubLiquidez-1/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func instrument(t *testing.T, symbol string) market.Instrument {
	t.Helper()
	in, err := market.Resolve(symbol)
	require.NoError(t, err)
	return in
}

func liveQuote(base, quote string, rate float64) market.RateQuote {
	return market.RateQuote{
		Base:       base,
		Quote:      quote,
		Rate:       rate,
		Available:  true,
		IsRealTime: true,
		FetchedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestPipValuePerStandardLot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		symbol string
		want   float64
	}{
		{"EUR/USD", 10},
		{"USD/JPY", 9.09},
		{"CHF/JPY", 9.09},
		{"XAU/USD", 1},
		{"BTC/USD", 10},
		{"EUR/GBP", 10},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.symbol, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, PipValuePerStandardLot(instrument(t, tt.symbol)))
		})
	}
}

func TestCalculate_ScenarioA_SameCurrencyForex(t *testing.T) {
	t.Parallel()

	req := Request{
		AccountCurrency: "USD",
		AccountSize:     100000,
		RiskPercent:     1,
		StopLossPips:    20,
		Instrument:      instrument(t, "EUR/USD"),
	}

	got, err := Calculate(req, market.UnavailableQuote("USD", "USD"))
	require.NoError(t, err)

	assert.Equal(t, 1000.0, got.RiskAmount)
	assert.Equal(t, 500000.0, got.PositionSizeUnits)
	assert.Equal(t, StandardLots, got.LotType)
	assert.Equal(t, "5.00", got.LotSize)
	assert.Empty(t, got.ConversionNote)
	assert.False(t, got.Approximate)
	assert.False(t, got.UsedRealTimeRate)
}

func TestCalculate_ScenarioB_Gold(t *testing.T) {
	t.Parallel()

	req := Request{
		AccountCurrency: "USD",
		AccountSize:     10000,
		RiskPercent:     2,
		StopLossPips:    50,
		Instrument:      instrument(t, "XAU/USD"),
	}

	got, err := Calculate(req, market.RateQuote{})
	require.NoError(t, err)

	assert.Equal(t, 200.0, got.RiskAmount)
	assert.Equal(t, 400.0, got.PositionSizeUnits)
	assert.Equal(t, StandardLots, got.LotType)
	assert.Equal(t, "4.00", got.LotSize)
	assert.Equal(t, "40.000", got.MiniLots)
}

func TestCalculate_ScenarioC_BitcoinApproximate(t *testing.T) {
	t.Parallel()

	req := Request{
		AccountCurrency: "EUR",
		AccountSize:     10000,
		RiskPercent:     1,
		StopLossPips:    100,
		Instrument:      instrument(t, "BTC/USD"),
	}

	got, err := Calculate(req, market.UnavailableQuote("EUR", "USD"))
	require.NoError(t, err)

	assert.Equal(t, 100.0, got.RiskAmount)
	assert.Equal(t, 0.1, got.PositionSizeUnits)
	assert.Equal(t, BTC, got.LotType)
	assert.Equal(t, "0.100", got.LotSize)
	assert.False(t, got.UsedRealTimeRate)
	assert.True(t, got.Approximate)
	assert.Contains(t, got.ConversionNote, "approximation")
}

func TestCalculate_ScenarioD_JPY(t *testing.T) {
	t.Parallel()

	req := Request{
		AccountCurrency: "USD",
		AccountSize:     50000,
		RiskPercent:     1,
		StopLossPips:    30,
		Instrument:      instrument(t, "USD/JPY"),
	}

	// JPY-quoted: USD account differs from JPY quote, rate unavailable.
	got, err := Calculate(req, market.UnavailableQuote("USD", "JPY"))
	require.NoError(t, err)

	assert.Equal(t, 500.0, got.RiskAmount)
	assert.InDelta(t, 183333, got.PositionSizeUnits, 100)
	assert.Equal(t, StandardLots, got.LotType)
	assert.Equal(t, "1.83", got.LotSize)
}

func TestCalculate_RealTimeConversion(t *testing.T) {
	t.Parallel()

	req := Request{
		AccountCurrency: "EUR",
		AccountSize:     10000,
		RiskPercent:     1,
		StopLossPips:    10,
		Instrument:      instrument(t, "GBP/USD"),
	}

	got, err := Calculate(req, liveQuote("EUR", "USD", 1.1))
	require.NoError(t, err)

	assert.InDelta(t, 10000*1.1*1/100, got.RiskAmount, 1e-9)
	assert.True(t, got.UsedRealTimeRate)
	assert.False(t, got.Approximate)
	assert.Equal(t, 1.1, got.Rate)
	assert.Contains(t, got.ConversionNote, "EUR")
	assert.Contains(t, got.ConversionNote, "11000.00 USD")
}

func TestCalculate_IgnoresQuoteForOtherPair(t *testing.T) {
	t.Parallel()

	req := Request{
		AccountCurrency: "EUR",
		AccountSize:     10000,
		RiskPercent:     1,
		StopLossPips:    10,
		Instrument:      instrument(t, "USD/JPY"),
	}

	got, err := Calculate(req, liveQuote("EUR", "USD", 1.1))
	require.NoError(t, err)

	assert.Equal(t, 100.0, got.RiskAmount)
	assert.True(t, got.Approximate)
	assert.False(t, got.UsedRealTimeRate)
	assert.NotEmpty(t, got.ConversionNote)
}

func TestCalculate_SameCurrencyRiskIsExact(t *testing.T) {
	t.Parallel()

	for _, size := range []float64{1, 2500, 12345.67, 1e6} {
		for _, pct := range []float64{0.25, 1, 2, 5} {
			req := Request{
				AccountCurrency: "USD",
				AccountSize:     size,
				RiskPercent:     pct,
				StopLossPips:    15,
				Instrument:      instrument(t, "AUD/USD"),
			}
			got, err := Calculate(req, liveQuote("USD", "USD", 3))
			require.NoError(t, err)
			assert.Equal(t, round(size*(pct/100), 2), got.RiskAmount)
			assert.Empty(t, got.ConversionNote)
		}
	}
}

func TestCalculate_LotTiers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		size     float64
		stop     float64
		units    float64
		lotType  LotType
		lotSize  string
		standard string
	}{
		{"standard", 100000, 40, 250000, StandardLots, "2.50", "2.500"},
		{"mini", 10000, 20, 50000, MiniLots, "5.00", "0.500"},
		{"micro", 1000, 20, 5000, MicroLots, "5.00", "0.050"},
		{"sub micro", 100, 50, 200, MicroLots, "0.20", "0.002"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := Request{
				AccountCurrency: "USD",
				AccountSize:     tt.size,
				RiskPercent:     1,
				StopLossPips:    tt.stop,
				Instrument:      instrument(t, "EUR/USD"),
			}
			got, err := Calculate(req, market.RateQuote{})
			require.NoError(t, err)
			assert.Equal(t, tt.units, got.PositionSizeUnits)
			assert.Equal(t, tt.lotType, got.LotType)
			assert.Equal(t, tt.lotSize, got.LotSize)
			assert.Equal(t, tt.standard, got.StandardLots)
		})
	}
}

func TestCalculate_IncompleteInput(t *testing.T) {
	t.Parallel()

	valid := Request{
		AccountCurrency: "USD",
		AccountSize:     1000,
		RiskPercent:     1,
		StopLossPips:    10,
		Instrument:      instrument(t, "EUR/USD"),
	}

	mutations := map[string]func(r *Request){
		"zero stop":      func(r *Request) { r.StopLossPips = 0 },
		"negative stop":  func(r *Request) { r.StopLossPips = -5 },
		"nan stop":       func(r *Request) { r.StopLossPips = math.NaN() },
		"zero account":   func(r *Request) { r.AccountSize = 0 },
		"inf account":    func(r *Request) { r.AccountSize = math.Inf(1) },
		"zero risk":      func(r *Request) { r.RiskPercent = 0 },
		"negative risk":  func(r *Request) { r.RiskPercent = -1 },
		"nan risk":       func(r *Request) { r.RiskPercent = math.NaN() },
	}

	for name, mutate := range mutations {
		mutate := mutate
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			req := valid
			mutate(&req)
			_, err := Calculate(req, market.RateQuote{})
			assert.True(t, errors.Is(err, ErrIncompleteInput))
		})
	}
}

func TestCalculate_EmptyInstrument(t *testing.T) {
	t.Parallel()

	_, err := Calculate(Request{AccountCurrency: "USD", AccountSize: 1, RiskPercent: 1, StopLossPips: 1}, market.RateQuote{})
	assert.True(t, errors.Is(err, market.ErrUnsupportedInstrument))
}

func TestCalculate_TinyStopStaysFinite(t *testing.T) {
	t.Parallel()

	req := Request{
		AccountCurrency: "USD",
		AccountSize:     100000,
		RiskPercent:     1,
		StopLossPips:    1e-9,
		Instrument:      instrument(t, "EUR/USD"),
	}

	got, err := Calculate(req, market.RateQuote{})
	require.NoError(t, err)
	assert.False(t, math.IsInf(got.PositionSizeUnits, 0))
	assert.Greater(t, got.PositionSizeUnits, 1e12)
}

func TestCalculate_Idempotent(t *testing.T) {
	t.Parallel()

	req := Request{
		AccountCurrency: "CHF",
		AccountSize:     7321.5,
		RiskPercent:     1.7,
		StopLossPips:    23.4,
		Instrument:      instrument(t, "GBP/JPY"),
	}
	q := liveQuote("CHF", "JPY", 168.42)

	a, err := Calculate(req, q)
	require.NoError(t, err)
	b, err := Calculate(req, q)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestResultRows(t *testing.T) {
	t.Parallel()

	req := Request{
		AccountCurrency: "EUR",
		AccountSize:     10000,
		RiskPercent:     1,
		StopLossPips:    50,
		Instrument:      instrument(t, "XAU/USD"),
	}
	got, err := Calculate(req, market.RateQuote{})
	require.NoError(t, err)

	rows := got.Rows()
	labels := make([]string, 0, len(rows))
	for _, r := range rows {
		labels = append(labels, r.Label)
	}
	assert.Contains(t, labels, "Conversion")
	assert.Equal(t, "Rate", rows[len(rows)-1].Label)
	assert.Equal(t, "200 oz", rows[2].Value)
}
