package cmd

import (
	"fmt"
	"strings"

	"github.com/rb-rbloxk/ClubLiquidez-1/market"
	"github.com/spf13/cobra"
)

var rateCmd = &cobra.Command{
	Use:   "rate ACCOUNT QUOTE",
	Short: "Look up the conversion rate from an account currency to a quote currency",
	Long: `Fetch the rate used to convert account size into the quote currency.

Example:
  clubliq rate EUR JPY`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		src, cleanup, err := rateSource(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		account, quote := strings.ToUpper(args[0]), strings.ToUpper(args[1])
		q := market.ResolveRate(ctx, src, account, quote, rateTimeout())
		switch {
		case q.Identity():
			fmt.Printf("%s→%s: 1 (same currency)\n", account, quote)
		case !q.Available:
			fmt.Printf("%s→%s: unavailable\n", account, quote)
		default:
			fmt.Printf("%s→%s: %.6f (fetched %s)\n", account, quote, q.Rate, q.FetchedAt.Format("2006-01-02 15:04:05 MST"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rateCmd)
}
