package risk

import "math"

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// TradePlanInput sizes a trade from explicit prices rather than pips.
// TakeProfit is optional.
type TradePlanInput struct {
	AccountSize float64
	RiskPercent float64 // 2 means 2%
	Entry       float64
	Stop        float64
	TakeProfit  float64
}

type TradePlan struct {
	Long            bool    `json:"long"`
	PositionSize    float64 `json:"position_size"` // units
	TotalValue      float64 `json:"total_value"`
	RiskAmount      float64 `json:"risk_amount"`
	TakeProfit      float64 `json:"take_profit,omitempty"`
	PotentialProfit float64 `json:"potential_profit"` // negative when the target is behind the entry
	PotentialLoss   float64 `json:"potential_loss"`
	RiskReward      float64 `json:"risk_reward"`
	StandardLots    float64 `json:"standard_lots"`
	MiniLots        float64 `json:"mini_lots"`
	MicroLots       float64 `json:"micro_lots"`
}

// PlanTrade sizes a position so that hitting Stop loses exactly the risk
// amount: size = riskAmount / |entry - stop|.
func PlanTrade(in TradePlanInput) (TradePlan, error) {
	if !positive(in.AccountSize) || !positive(in.RiskPercent) ||
		!positive(in.Entry) || !positive(in.Stop) || in.Entry == in.Stop {
		return TradePlan{}, ErrIncompleteInput
	}
	if math.IsNaN(in.TakeProfit) || math.IsInf(in.TakeProfit, 0) || in.TakeProfit < 0 {
		return TradePlan{}, ErrIncompleteInput
	}

	riskAmount := in.AccountSize * (in.RiskPercent / 100)
	priceRisk := abs(in.Entry - in.Stop)
	size := riskAmount / priceRisk

	p := TradePlan{
		Long:          in.Stop < in.Entry,
		PositionSize:  round(size, 2),
		TotalValue:    round(size*in.Entry, 2),
		RiskAmount:    round(riskAmount, 2),
		PotentialLoss: round(size*priceRisk, 2),
		StandardLots:  round(size/forexTiers.Standard, 3),
		MiniLots:      round(size/forexTiers.Mini, 3),
		MicroLots:     round(size/forexTiers.Micro, 3),
	}
	if in.TakeProfit > 0 {
		p.TakeProfit = in.TakeProfit
		p.PotentialProfit = round(size*reward(in.Entry, in.Stop, in.TakeProfit), 2)
		p.RiskReward = round(RR(in.Entry, in.Stop, in.TakeProfit), 2)
	}
	return p, nil
}

// reward is the price move to takeProfit in the trade's direction. A long
// is one whose stop sits below the entry.
func reward(entry, stop, takeProfit float64) float64 {
	if stop < entry {
		return takeProfit - entry
	}
	return entry - takeProfit
}

// RR is the signed reward/risk ratio; a target on the wrong side of the
// entry gives a negative ratio.
func RR(entry, stop, takeProfit float64) float64 {
	risk := abs(entry - stop)
	if risk == 0 {
		return 0
	}
	return reward(entry, stop, takeProfit) / risk
}
