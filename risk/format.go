package risk

import (
	"fmt"

	"github.com/rb-rbloxk/ClubLiquidez-1/market"
)

// Row is one label/value line of a presentation-ready result.
type Row struct {
	Label string
	Value string
}

// Rows renders r for display, in the order the calculator card shows it.
func (r Result) Rows() []Row {
	units := fmt.Sprintf("%.0f", r.PositionSizeUnits)
	switch r.LotType {
	case BTC:
		units = fmt.Sprintf("%.4f BTC", r.PositionSizeUnits)
	default:
		if r.Class == market.Metal {
			units += " oz"
		}
	}

	rows := []Row{
		{"Instrument", r.Symbol},
		{"Lot Size", r.LotSize + " " + string(r.LotType)},
		{"Position Size", units},
		{"Risk Amount", fmt.Sprintf("%s %.2f", r.QuoteCurrency, r.RiskAmount)},
		{"Standard Lots", r.StandardLots},
		{"Mini Lots", r.MiniLots},
		{"Micro Lots", r.MicroLots},
	}
	if r.ConversionNote != "" {
		rows = append(rows, Row{"Conversion", r.ConversionNote})
	}
	switch {
	case r.Approximate:
		rows = append(rows, Row{"Rate", "approximate - real-time rate unavailable"})
	case r.UsedRealTimeRate:
		rows = append(rows, Row{"Rate", "real-time"})
	}
	return rows
}
