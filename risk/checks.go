package risk

import "fmt"

type Violation struct {
	Code string `json:"code"`
	Msg  string `json:"message"`
}

// Decision is advisory; a sizing result is shown regardless.
type Decision struct {
	Allowed    bool        `json:"allowed"`
	Violations []Violation `json:"violations,omitempty"`
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// Evaluate checks a risk percentage, and the reward/risk ratio when a
// plan with a take profit is given.
func Evaluate(p Policy, riskPct float64, plan *TradePlan) Decision {
	d := Decision{Allowed: true}

	if p.MaxRiskPct > 0 && riskPct > p.MaxRiskPct {
		d.add("RISK_TOO_HIGH",
			fmt.Sprintf("risk %.2f%% exceeds max %.2f%%", riskPct, p.MaxRiskPct))
	} else if p.DefaultRiskPct > 0 && riskPct > p.DefaultRiskPct {
		d.add("RISK_OVER_DEFAULT",
			fmt.Sprintf("risk %.2f%% exceeds default %.2f%%", riskPct, p.DefaultRiskPct))
	}

	if plan != nil && plan.TakeProfit > 0 && plan.RiskReward < p.MinRR {
		d.add("RR_TOO_LOW",
			fmt.Sprintf("RR %.2f below minimum %.2f", plan.RiskReward, p.MinRR))
	}

	return d
}
