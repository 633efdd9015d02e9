package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rb-rbloxk/ClubLiquidez-1/market"
	"github.com/rb-rbloxk/ClubLiquidez-1/risk"
	"github.com/spf13/cobra"
)

var pairsCmd = &cobra.Command{
	Use:   "pairs",
	Short: "List supported instruments and account currencies",
	RunE: func(cmd *cobra.Command, args []string) error {
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetTitle("INSTRUMENTS")
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"Symbol", "Class", "Quote", "Pip Value / Std Lot"})

		for _, sym := range market.Symbols() {
			inst := market.Instruments[sym]
			t.AppendRow(table.Row{
				inst.Symbol,
				string(inst.Class),
				inst.QuoteCurrency,
				fmt.Sprintf("%.2f", risk.PipValuePerStandardLot(inst)),
			})
		}
		t.Render()

		fmt.Printf("Account currencies: %s\n", strings.Join(market.AccountCurrencies(), ", "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pairsCmd)
}
