package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/rb-rbloxk/ClubLiquidez-1/market"
	"github.com/rb-rbloxk/ClubLiquidez-1/report"
	"github.com/rb-rbloxk/ClubLiquidez-1/risk"
	"github.com/spf13/cobra"
)

var sizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Calculate position size for one trade",
	Long: `Size a position so that a stop loss costs the chosen share of the account.

When the account currency differs from the instrument's quote currency the
account size is converted at the real-time rate. If no rate can be fetched
the result is marked approximate.

Example:
  clubliq size --currency EUR --balance 10000 --risk 1 --stop 20 --instrument GBP/JPY`,
	RunE: runSize,
}

var (
	sizeCurrency   string
	sizeBalance    float64
	sizeRisk       float64
	sizeStop       float64
	sizeInstrument string
	sizeJSON       bool
)

func init() {
	rootCmd.AddCommand(sizeCmd)

	sizeCmd.Flags().StringVar(&sizeCurrency, "currency", "", "account currency (default from config)")
	sizeCmd.Flags().Float64VarP(&sizeBalance, "balance", "b", 0, "account size (default from config)")
	sizeCmd.Flags().Float64VarP(&sizeRisk, "risk", "r", 0, "risk percent per trade, 1 = 1% (default from config)")
	sizeCmd.Flags().Float64VarP(&sizeStop, "stop", "s", 0, "stop loss in pips (default from config)")
	sizeCmd.Flags().StringVarP(&sizeInstrument, "instrument", "i", "", "instrument, e.g. EUR/USD (default from config)")
	sizeCmd.Flags().BoolVar(&sizeJSON, "json", false, "print the result as JSON")
}

// sizeRequest merges flags over configured defaults.
func sizeRequest(cmd *cobra.Command) (risk.Request, error) {
	req := risk.Request{
		AccountCurrency: cfg.Account.Currency,
		AccountSize:     cfg.Account.Balance,
		RiskPercent:     cfg.Calculator.RiskPercent,
		StopLossPips:    cfg.Calculator.StopPips,
	}
	symbol := cfg.Calculator.Instrument

	if cmd.Flags().Changed("currency") {
		req.AccountCurrency = sizeCurrency
	}
	if cmd.Flags().Changed("balance") {
		req.AccountSize = sizeBalance
	}
	if cmd.Flags().Changed("risk") {
		req.RiskPercent = sizeRisk
	}
	if cmd.Flags().Changed("stop") {
		req.StopLossPips = sizeStop
	}
	if cmd.Flags().Changed("instrument") {
		symbol = sizeInstrument
	}

	if !market.IsAccountCurrency(req.AccountCurrency) {
		return risk.Request{}, fmt.Errorf("unsupported account currency %q (supported: %v)", req.AccountCurrency, market.AccountCurrencies())
	}
	inst, err := market.Resolve(symbol)
	if err != nil {
		return risk.Request{}, err
	}
	req.Instrument = inst
	return req, nil
}

func runSize(cmd *cobra.Command, args []string) error {
	req, err := sizeRequest(cmd)
	if err != nil {
		return err
	}
	if !req.Complete() {
		fmt.Println(risk.Prompt)
		return nil
	}

	ctx := cmd.Context()
	src, cleanup, err := rateSource(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	quote := market.ResolveRate(ctx, src, req.AccountCurrency, req.Instrument.QuoteCurrency, rateTimeout())
	res, err := risk.Calculate(req, quote)
	if errors.Is(err, risk.ErrIncompleteInput) {
		fmt.Println(risk.Prompt)
		return nil
	}
	if err != nil {
		return err
	}

	d := risk.Evaluate(policy(), req.RiskPercent, nil)
	if sizeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			risk.Result
			Warnings []risk.Violation `json:"warnings,omitempty"`
		}{res, d.Violations})
	}

	report.RenderResult(os.Stdout, res)
	report.RenderViolations(os.Stdout, d)
	return nil
}

func policy() risk.Policy {
	return risk.Policy{
		DefaultRiskPct: cfg.Calculator.DefaultRiskPercent,
		MaxRiskPct:     cfg.Calculator.MaxRiskPercent,
		MinRR:          cfg.Calculator.MinRR,
	}
}
