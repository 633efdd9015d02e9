package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rb-rbloxk/ClubLiquidez-1/market"
	"github.com/rb-rbloxk/ClubLiquidez-1/risk"
	"go.uber.org/zap"
)

func sendError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

type positionSizeRequest struct {
	AccountCurrency string  `json:"account_currency"`
	AccountSize     float64 `json:"account_size"`
	RiskPercent     float64 `json:"risk_percent"`
	StopLossPips    float64 `json:"stop_loss_pips"`
	Symbol          string  `json:"symbol" binding:"required"`
}

type positionSizeResponse struct {
	Complete bool             `json:"complete"`
	Prompt   string           `json:"prompt,omitempty"`
	Result   *risk.Result     `json:"result,omitempty"`
	Warnings []risk.Violation `json:"warnings,omitempty"`
}

// GET /api/v1/instruments
func (s *Server) listInstruments(c *gin.Context) {
	out := make([]market.Instrument, 0, len(market.Instruments))
	for _, sym := range market.Symbols() {
		out = append(out, market.Instruments[sym])
	}
	c.JSON(http.StatusOK, gin.H{
		"instruments":        out,
		"account_currencies": market.AccountCurrencies(),
	})
}

// POST /api/v1/position-size
func (s *Server) positionSize(c *gin.Context) {
	var req positionSizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		calculations.WithLabelValues("position_size", "bad_request").Inc()
		sendError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	inst, err := market.Resolve(req.Symbol)
	if err != nil {
		calculations.WithLabelValues("position_size", "unsupported").Inc()
		sendError(c, http.StatusBadRequest, err.Error())
		return
	}

	account := req.AccountCurrency
	if account == "" {
		account = s.opts.DefaultAccountCurrency
	}
	if !market.IsAccountCurrency(account) {
		calculations.WithLabelValues("position_size", "bad_request").Inc()
		sendError(c, http.StatusBadRequest, "unsupported account currency: "+account)
		return
	}

	calc := risk.Request{
		AccountCurrency: account,
		AccountSize:     req.AccountSize,
		RiskPercent:     req.RiskPercent,
		StopLossPips:    req.StopLossPips,
		Instrument:      inst,
	}
	if !calc.Complete() {
		calculations.WithLabelValues("position_size", "incomplete").Inc()
		c.JSON(http.StatusOK, positionSizeResponse{Prompt: risk.Prompt})
		return
	}

	quote := market.ResolveRate(c.Request.Context(), s.rates, calc.AccountCurrency, inst.QuoteCurrency, s.opts.RateTimeout)
	res, err := risk.Calculate(calc, quote)
	if err != nil {
		s.logger.Error("Failed to calculate position size", zap.Error(err))
		calculations.WithLabelValues("position_size", "error").Inc()
		sendError(c, http.StatusInternalServerError, "Failed to calculate position size")
		return
	}

	outcome := "exact"
	if res.Approximate {
		outcome = "approximate"
	}
	calculations.WithLabelValues("position_size", outcome).Inc()

	d := risk.Evaluate(s.opts.Policy, req.RiskPercent, nil)
	c.JSON(http.StatusOK, positionSizeResponse{
		Complete: true,
		Result:   &res,
		Warnings: d.Violations,
	})
}

type tradePlanRequest struct {
	AccountSize float64 `json:"account_size"`
	RiskPercent float64 `json:"risk_percent"`
	Entry       float64 `json:"entry"`
	Stop        float64 `json:"stop"`
	TakeProfit  float64 `json:"take_profit"`
}

type tradePlanResponse struct {
	Complete bool             `json:"complete"`
	Prompt   string           `json:"prompt,omitempty"`
	Plan     *risk.TradePlan  `json:"plan,omitempty"`
	Warnings []risk.Violation `json:"warnings,omitempty"`
}

// POST /api/v1/trade-plan
func (s *Server) tradePlan(c *gin.Context) {
	var req tradePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		calculations.WithLabelValues("trade_plan", "bad_request").Inc()
		sendError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	plan, err := risk.PlanTrade(risk.TradePlanInput{
		AccountSize: req.AccountSize,
		RiskPercent: req.RiskPercent,
		Entry:       req.Entry,
		Stop:        req.Stop,
		TakeProfit:  req.TakeProfit,
	})
	if errors.Is(err, risk.ErrIncompleteInput) {
		calculations.WithLabelValues("trade_plan", "incomplete").Inc()
		c.JSON(http.StatusOK, tradePlanResponse{Prompt: risk.Prompt})
		return
	}
	if err != nil {
		s.logger.Error("Failed to plan trade", zap.Error(err))
		calculations.WithLabelValues("trade_plan", "error").Inc()
		sendError(c, http.StatusInternalServerError, "Failed to plan trade")
		return
	}
	calculations.WithLabelValues("trade_plan", "exact").Inc()

	d := risk.Evaluate(s.opts.Policy, req.RiskPercent, &plan)
	c.JSON(http.StatusOK, tradePlanResponse{
		Complete: true,
		Plan:     &plan,
		Warnings: d.Violations,
	})
}
