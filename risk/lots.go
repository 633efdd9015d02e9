package risk

import (
	"fmt"

	"github.com/rb-rbloxk/ClubLiquidez-1/market"
)

type LotType string

const (
	StandardLots LotType = "Standard Lots"
	MiniLots     LotType = "Mini Lots"
	MicroLots    LotType = "Micro Lots"
	BTC          LotType = "BTC"
)

// Tiers are lot denominators in base units of the instrument.
type Tiers struct {
	Standard float64
	Mini     float64
	Micro    float64
}

var (
	forexTiers  = Tiers{Standard: 100_000, Mini: 10_000, Micro: 1_000}
	metalTiers  = Tiers{Standard: 100, Mini: 10, Micro: 1} // ounces
	cryptoTiers = Tiers{Standard: 1, Mini: 0.1, Micro: 0.01}
)

func TiersFor(class market.InstrumentClass) Tiers {
	switch class {
	case market.Metal:
		return metalTiers
	case market.Crypto:
		return cryptoTiers
	default:
		return forexTiers
	}
}

// restate fills the unit and lot fields of res from raw base units.
func restate(res *Result, units float64, t Tiers) {
	standard := units / t.Standard
	mini := units / t.Mini
	micro := units / t.Micro

	res.StandardLots = fmt.Sprintf("%.3f", standard)
	res.MiniLots = fmt.Sprintf("%.3f", mini)
	res.MicroLots = fmt.Sprintf("%.3f", micro)

	if res.Class == market.Crypto {
		res.PositionSizeUnits = round(units, 4)
		res.LotType = BTC
		res.LotSize = fmt.Sprintf("%.3f", units)
		return
	}

	res.PositionSizeUnits = round(units, 0)
	switch {
	case standard >= 1:
		res.LotType = StandardLots
		res.LotSize = fmt.Sprintf("%.2f", standard)
	case mini >= 1:
		res.LotType = MiniLots
		res.LotSize = fmt.Sprintf("%.2f", mini)
	default:
		res.LotType = MicroLots
		res.LotSize = fmt.Sprintf("%.2f", micro)
	}
}
