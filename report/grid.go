// Package report lays calculator results out as tables and exports
// sizing grids to CSV and XLSX.
package report

import (
	"fmt"

	"github.com/rb-rbloxk/ClubLiquidez-1/market"
	"github.com/rb-rbloxk/ClubLiquidez-1/risk"
)

var (
	DefaultRiskLevels = []float64{0.5, 1, 2}
	DefaultStops      = []float64{10, 20, 30, 50}
)

// GridRow is one risk level / stop distance combination.
type GridRow struct {
	RiskPercent  float64
	StopLossPips float64
	Result       risk.Result
}

// Grid shows how position size responds to risk and stop distance for a
// single account and instrument.
type Grid struct {
	Symbol          string
	AccountCurrency string
	AccountSize     float64
	Rows            []GridRow
}

// BuildGrid sizes req at every combination of riskLevels and stops, risk
// level major. req.RiskPercent and req.StopLossPips are ignored. Empty
// slices fall back to the defaults.
func BuildGrid(req risk.Request, riskLevels, stops []float64, quote market.RateQuote) (Grid, error) {
	if len(riskLevels) == 0 {
		riskLevels = DefaultRiskLevels
	}
	if len(stops) == 0 {
		stops = DefaultStops
	}

	g := Grid{
		Symbol:          req.Instrument.Symbol,
		AccountCurrency: req.AccountCurrency,
		AccountSize:     req.AccountSize,
		Rows:            make([]GridRow, 0, len(riskLevels)*len(stops)),
	}
	for _, pct := range riskLevels {
		for _, stop := range stops {
			r := req
			r.RiskPercent = pct
			r.StopLossPips = stop

			res, err := risk.Calculate(r, quote)
			if err != nil {
				return Grid{}, fmt.Errorf("risk %.2f%% stop %.1f: %w", pct, stop, err)
			}
			g.Rows = append(g.Rows, GridRow{RiskPercent: pct, StopLossPips: stop, Result: res})
		}
	}
	return g, nil
}

// Header is the column layout shared by every grid export.
func Header() []string {
	return []string{"risk_percent", "stop_pips", "risk_amount", "currency", "position_size", "lot_size", "lot_type", "standard_lots", "mini_lots", "micro_lots", "approximate"}
}

// Records returns the grid as strings, header first.
func (g Grid) Records() [][]string {
	out := make([][]string, 0, len(g.Rows)+1)
	out = append(out, Header())
	for _, row := range g.Rows {
		res := row.Result
		out = append(out, []string{
			f(row.RiskPercent),
			f(row.StopLossPips),
			fmt.Sprintf("%.2f", res.RiskAmount),
			res.QuoteCurrency,
			f(res.PositionSizeUnits),
			res.LotSize,
			string(res.LotType),
			res.StandardLots,
			res.MiniLots,
			res.MicroLots,
			fmt.Sprintf("%t", res.Approximate),
		})
	}
	return out
}
