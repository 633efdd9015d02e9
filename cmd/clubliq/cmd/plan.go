package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/rb-rbloxk/ClubLiquidez-1/report"
	"github.com/rb-rbloxk/ClubLiquidez-1/risk"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Size a trade from entry, stop and take profit prices",
	Long: `Plan a trade from explicit prices. The position is sized so that
reaching the stop loses exactly the risk amount.

Example:
  clubliq plan --balance 10000 --risk 2 --entry 1.0850 --stop-price 1.0800 --take-profit 1.0950`,
	RunE: runPlan,
}

var (
	planBalance    float64
	planRisk       float64
	planEntry      float64
	planStop       float64
	planTakeProfit float64
)

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().Float64VarP(&planBalance, "balance", "b", 0, "account size (default from config)")
	planCmd.Flags().Float64VarP(&planRisk, "risk", "r", 0, "risk percent, 1 = 1% (default from config)")
	planCmd.Flags().Float64Var(&planEntry, "entry", 0, "entry price (required)")
	planCmd.Flags().Float64Var(&planStop, "stop-price", 0, "stop loss price (required)")
	planCmd.Flags().Float64Var(&planTakeProfit, "take-profit", 0, "take profit price")

	planCmd.MarkFlagRequired("entry")
	planCmd.MarkFlagRequired("stop-price")
}

func runPlan(cmd *cobra.Command, args []string) error {
	in := risk.TradePlanInput{
		AccountSize: cfg.Account.Balance,
		RiskPercent: cfg.Calculator.RiskPercent,
		Entry:       planEntry,
		Stop:        planStop,
		TakeProfit:  planTakeProfit,
	}
	if cmd.Flags().Changed("balance") {
		in.AccountSize = planBalance
	}
	if cmd.Flags().Changed("risk") {
		in.RiskPercent = planRisk
	}

	p, err := risk.PlanTrade(in)
	if errors.Is(err, risk.ErrIncompleteInput) {
		fmt.Println(risk.Prompt)
		return nil
	}
	if err != nil {
		return err
	}

	report.RenderPlan(os.Stdout, p)
	report.RenderViolations(os.Stdout, risk.Evaluate(policy(), in.RiskPercent, &p))
	return nil
}
