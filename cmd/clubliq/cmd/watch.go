package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rb-rbloxk/ClubLiquidez-1/report"
	"github.com/rb-rbloxk/ClubLiquidez-1/risk"
	"github.com/rb-rbloxk/ClubLiquidez-1/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Interactively edit inputs and watch the position size update",
	Long: `Start an interactive calculator. Each line edits one input and the
result is recalculated straight away. Changing the account currency or the
instrument fetches a fresh conversion rate in the background; until it
arrives the result is shown as approximate.

Edits:
  currency=EUR  balance=10000  risk=1  stop=20  instrument=GBP/JPY

Type "quit" or send EOF to exit.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// applyEdit updates in from one "key=value" line.
func applyEdit(in *session.Inputs, line string) error {
	key, val, ok := strings.Cut(strings.TrimSpace(line), "=")
	if !ok {
		return fmt.Errorf("expected key=value, got %q", line)
	}
	key = strings.ToLower(strings.TrimSpace(key))
	val = strings.TrimSpace(val)

	num := func(dst *float64) error {
		if val == "" {
			*dst = 0
			return nil
		}
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = f
		return nil
	}

	switch key {
	case "currency", "account":
		in.AccountCurrency = strings.ToUpper(val)
	case "balance", "size":
		return num(&in.AccountSize)
	case "risk":
		return num(&in.RiskPercent)
	case "stop", "sl":
		return num(&in.StopLossPips)
	case "instrument", "symbol", "pair":
		in.Symbol = val
	default:
		return fmt.Errorf("unknown input %q", key)
	}
	return nil
}

func printState(w io.Writer, st session.State) {
	switch {
	case st.Err != nil && st.Result == nil && st.Instrument.Symbol == "":
		fmt.Fprintf(w, "error: %v\n", st.Err)
	case st.Result == nil:
		fmt.Fprintln(w, risk.Prompt)
	default:
		report.RenderResult(w, *st.Result)
		if st.Fetch.InFlight {
			fmt.Fprintf(w, "fetching %s→%s rate...\n", st.Fetch.Base, st.Fetch.Quote)
		}
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	src, cleanup, err := rateSource(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	debounce, err := cfg.Calculator.DebounceDuration()
	if err != nil {
		return err
	}

	s := session.New(src, session.Options{
		Debounce: debounce,
		Timeout:  rateTimeout(),
		Logger:   logger,
	})
	defer s.Close()

	updates := s.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for st := range updates {
			printState(os.Stdout, st)
		}
	}()

	in := session.Inputs{
		AccountCurrency: cfg.Account.Currency,
		AccountSize:     cfg.Account.Balance,
		RiskPercent:     cfg.Calculator.RiskPercent,
		StopLossPips:    cfg.Calculator.StopPips,
		Symbol:          cfg.Calculator.Instrument,
	}
	s.Update(in)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		if err := applyEdit(&in, line); err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		logger.Debug("input edited", zap.String("edit", line))
		s.Update(in)
	}

	s.Close()
	<-done
	return scanner.Err()
}
