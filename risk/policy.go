package risk

// Policy holds advisory limits. Percentages use the same scale as
// Request.RiskPercent (1 means 1%).
type Policy struct {
	DefaultRiskPct float64 // 1
	MaxRiskPct     float64 // 2
	MinRR          float64 // 1.5
}

func DefaultPolicy() Policy {
	return Policy{
		DefaultRiskPct: 1,
		MaxRiskPct:     2,
		MinRR:          1.5,
	}
}
