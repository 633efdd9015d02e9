package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/rb-rbloxk/ClubLiquidez-1/risk"
)

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)
	return t
}

// RenderResult prints a single position size result as a label/value card.
func RenderResult(w io.Writer, res risk.Result) {
	t := newTable(w, "POSITION SIZE")
	for _, row := range res.Rows() {
		t.AppendRow(table.Row{row.Label, row.Value})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 15, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft},
	})
	t.Render()
}

// RenderGrid prints the sizing grid with a separator between risk levels.
func RenderGrid(w io.Writer, g Grid) {
	t := newTable(w, fmt.Sprintf("%s  %s %.2f", g.Symbol, g.AccountCurrency, g.AccountSize))
	t.AppendHeader(table.Row{"Risk %", "Stop (pips)", "Risk Amount", "Position Size", "Lot Size", "Standard", "Mini", "Micro"})

	for i, row := range g.Rows {
		if i > 0 && row.RiskPercent != g.Rows[i-1].RiskPercent {
			t.AppendSeparator()
		}
		res := row.Result
		t.AppendRow(table.Row{
			fmt.Sprintf("%.2f%%", row.RiskPercent),
			f(row.StopLossPips),
			fmt.Sprintf("%s %.2f", res.QuoteCurrency, res.RiskAmount),
			f(res.PositionSizeUnits),
			res.LotSize + " " + string(res.LotType),
			res.StandardLots,
			res.MiniLots,
			res.MicroLots,
		})
	}

	if len(g.Rows) > 0 && g.Rows[0].Result.Approximate {
		t.AppendFooter(table.Row{"", "", "approximate - real-time rate unavailable"})
	}
	t.Render()
}

// RenderPlan prints a price-based trade plan.
func RenderPlan(w io.Writer, p risk.TradePlan) {
	t := newTable(w, "TRADE PLAN")
	side := "Short"
	if p.Long {
		side = "Long"
	}
	t.AppendRows([]table.Row{
		{"Direction", side},
		{"Position Size", fmt.Sprintf("%.2f units", p.PositionSize)},
		{"Total Value", fmt.Sprintf("%.2f", p.TotalValue)},
		{"Risk Amount", fmt.Sprintf("%.2f", p.RiskAmount)},
		{"Potential Loss", fmt.Sprintf("%.2f", p.PotentialLoss)},
	})
	if p.TakeProfit > 0 {
		t.AppendRows([]table.Row{
			{"Potential Profit", fmt.Sprintf("%.2f", p.PotentialProfit)},
			{"Risk:Reward", fmt.Sprintf("1:%.2f", p.RiskReward)},
		})
	}
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Standard Lots", fmt.Sprintf("%.3f", p.StandardLots)},
		{"Mini Lots", fmt.Sprintf("%.3f", p.MiniLots)},
		{"Micro Lots", fmt.Sprintf("%.3f", p.MicroLots)},
	})
	t.Render()
}

// RenderViolations prints policy warnings, if any.
func RenderViolations(w io.Writer, d risk.Decision) {
	if len(d.Violations) == 0 {
		return
	}
	t := newTable(w, "WARNINGS")
	for _, v := range d.Violations {
		t.AppendRow(table.Row{v.Code, v.Msg})
	}
	t.Render()
}
