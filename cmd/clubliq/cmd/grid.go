package cmd

import (
	"fmt"
	"os"

	"github.com/rb-rbloxk/ClubLiquidez-1/market"
	"github.com/rb-rbloxk/ClubLiquidez-1/report"
	"github.com/spf13/cobra"
)

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Show position sizes across risk levels and stop distances",
	Long: `Build a sizing grid for one account and instrument, showing how the
position shrinks as the stop widens.

Examples:
  clubliq grid --instrument XAU/USD --risks 0.5,1,2 --stops 100,200,300
  clubliq grid --csv grid.csv --xlsx grid.xlsx`,
	RunE: runGrid,
}

var (
	gridRisks []float64
	gridStops []float64
	gridCSV   string
	gridXLSX  string
)

func init() {
	rootCmd.AddCommand(gridCmd)

	gridCmd.Flags().StringVar(&sizeCurrency, "currency", "", "account currency (default from config)")
	gridCmd.Flags().Float64VarP(&sizeBalance, "balance", "b", 0, "account size (default from config)")
	gridCmd.Flags().StringVarP(&sizeInstrument, "instrument", "i", "", "instrument (default from config)")
	gridCmd.Flags().Float64SliceVar(&gridRisks, "risks", report.DefaultRiskLevels, "risk percents")
	gridCmd.Flags().Float64SliceVar(&gridStops, "stops", report.DefaultStops, "stop distances in pips")
	gridCmd.Flags().StringVar(&gridCSV, "csv", "", "also write the grid to this CSV file")
	gridCmd.Flags().StringVar(&gridXLSX, "xlsx", "", "also write the grid to this Excel file")
}

func runGrid(cmd *cobra.Command, args []string) error {
	req, err := sizeRequest(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	src, cleanup, err := rateSource(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	quote := market.ResolveRate(ctx, src, req.AccountCurrency, req.Instrument.QuoteCurrency, rateTimeout())
	g, err := report.BuildGrid(req, gridRisks, gridStops, quote)
	if err != nil {
		return err
	}

	report.RenderGrid(os.Stdout, g)

	if gridCSV != "" {
		if err := report.WriteCSVFile(gridCSV, g); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		fmt.Printf("✓ Wrote %s\n", gridCSV)
	}
	if gridXLSX != "" {
		if err := report.WriteXLSX(gridXLSX, g); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
		fmt.Printf("✓ Wrote %s\n", gridXLSX)
	}
	return nil
}
