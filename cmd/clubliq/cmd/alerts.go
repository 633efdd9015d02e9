package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rb-rbloxk/ClubLiquidez-1/alerts"
	"github.com/spf13/cobra"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Manage price alerts",
	Long: `Create, list and evaluate price alerts stored in SQLite.

Subcommands:
  add     - Create an alert
  list    - List alerts
  pause   - Pause an active alert
  resume  - Re-arm a paused or triggered alert
  rm      - Delete an alert
  check   - Evaluate alerts against a price move

Examples:
  clubliq alerts add --symbol EUR/USD --price 1.0850 --condition above --channel email
  clubliq alerts check --symbol EUR/USD --prev 1.0840 --last 1.0860`,
}

var (
	alertSymbol    string
	alertPrice     float64
	alertCondition string
	alertChannels  []string
	alertStatus    string
	alertPrev      float64
	alertLast      float64
)

var alertsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a price alert",
	RunE: withAlerts(func(cmd *cobra.Command, svc *alerts.Service, args []string) error {
		chs := make([]alerts.Channel, len(alertChannels))
		for i, c := range alertChannels {
			chs[i] = alerts.Channel(c)
		}
		a, err := svc.Create(cmd.Context(), alertSymbol, alertPrice, alerts.Condition(alertCondition), chs)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Created alert %s\n", a.ID)
		return nil
	}),
}

var alertsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List price alerts",
	RunE: withAlerts(func(cmd *cobra.Command, svc *alerts.Service, args []string) error {
		list, err := svc.List(cmd.Context(), alerts.Filter{Symbol: alertSymbol, Status: alerts.Status(alertStatus)})
		if err != nil {
			return err
		}
		renderAlerts("ALERTS", list)
		return nil
	}),
}

var alertsPauseCmd = &cobra.Command{
	Use:   "pause ID",
	Short: "Pause an active alert",
	Args:  cobra.ExactArgs(1),
	RunE: withAlerts(func(cmd *cobra.Command, svc *alerts.Service, args []string) error {
		if _, err := svc.Pause(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("✓ Paused %s\n", args[0])
		return nil
	}),
}

var alertsResumeCmd = &cobra.Command{
	Use:   "resume ID",
	Short: "Re-arm a paused or triggered alert",
	Args:  cobra.ExactArgs(1),
	RunE: withAlerts(func(cmd *cobra.Command, svc *alerts.Service, args []string) error {
		if _, err := svc.Resume(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("✓ Resumed %s\n", args[0])
		return nil
	}),
}

var alertsRmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Delete an alert",
	Args:  cobra.ExactArgs(1),
	RunE: withAlerts(func(cmd *cobra.Command, svc *alerts.Service, args []string) error {
		if err := svc.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("✓ Deleted %s\n", args[0])
		return nil
	}),
}

var alertsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate active alerts against a price move",
	RunE: withAlerts(func(cmd *cobra.Command, svc *alerts.Service, args []string) error {
		fired, err := svc.Evaluate(cmd.Context(), alertSymbol, alertPrev, alertLast)
		if err != nil {
			return err
		}
		if len(fired) == 0 {
			fmt.Println("No alerts triggered")
			return nil
		}
		renderAlerts("TRIGGERED", fired)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(alertsCmd)
	alertsCmd.AddCommand(alertsAddCmd, alertsListCmd, alertsPauseCmd, alertsResumeCmd, alertsRmCmd, alertsCheckCmd)

	alertsAddCmd.Flags().StringVar(&alertSymbol, "symbol", "", "instrument, e.g. EUR/USD (required)")
	alertsAddCmd.Flags().Float64Var(&alertPrice, "price", 0, "alert price (required)")
	alertsAddCmd.Flags().StringVar(&alertCondition, "condition", "above", "above, below or crosses")
	alertsAddCmd.Flags().StringSliceVar(&alertChannels, "channel", []string{"email"}, "notification channels: email, push, sms")
	alertsAddCmd.MarkFlagRequired("symbol")
	alertsAddCmd.MarkFlagRequired("price")

	alertsListCmd.Flags().StringVar(&alertSymbol, "symbol", "", "filter by instrument")
	alertsListCmd.Flags().StringVar(&alertStatus, "status", "", "filter by status: active, paused, triggered")

	alertsCheckCmd.Flags().StringVar(&alertSymbol, "symbol", "", "instrument (required)")
	alertsCheckCmd.Flags().Float64Var(&alertPrev, "prev", 0, "previous price (needed for crosses)")
	alertsCheckCmd.Flags().Float64Var(&alertLast, "last", 0, "latest price (required)")
	alertsCheckCmd.MarkFlagRequired("symbol")
	alertsCheckCmd.MarkFlagRequired("last")
}

// withAlerts opens the configured store for the duration of one command.
func withAlerts(fn func(cmd *cobra.Command, svc *alerts.Service, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		store, err := openAlertStore()
		if err != nil {
			return err
		}
		defer store.Close()

		return fn(cmd, alerts.NewService(store, nil, logger), args)
	}
}

func openAlertStore() (alerts.Store, error) {
	if cfg.Alerts.DBPath == "" || cfg.Alerts.DBPath == ":memory:" {
		return alerts.NewMemoryStore(), nil
	}
	store, err := alerts.NewSQLiteStore(cfg.Alerts.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return store, nil
}

func renderAlerts(title string, list []alerts.Alert) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID", "Symbol", "Condition", "Price", "Channels", "Status", "Created"})

	for _, a := range list {
		chs := make([]string, len(a.Channels))
		for i, c := range a.Channels {
			chs[i] = string(c)
		}
		t.AppendRow(table.Row{
			a.ID,
			a.Symbol,
			string(a.Condition),
			a.Price,
			strings.Join(chs, ","),
			string(a.Status),
			a.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "Total", len(list)})
	t.Render()
}
