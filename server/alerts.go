package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rb-rbloxk/ClubLiquidez-1/alerts"
	"github.com/rb-rbloxk/ClubLiquidez-1/market"
	"go.uber.org/zap"
)

type createAlertRequest struct {
	Symbol    string           `json:"symbol" binding:"required"`
	Price     float64          `json:"price" binding:"required,gt=0"`
	Condition alerts.Condition `json:"condition" binding:"required"`
	Channels  []alerts.Channel `json:"channels" binding:"required,min=1"`
}

type evaluateRequest struct {
	Symbol string  `json:"symbol" binding:"required"`
	Prev   float64 `json:"prev"`
	Last   float64 `json:"last" binding:"required,gt=0"`
}

// alertError maps service errors onto HTTP statuses.
func (s *Server) alertError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, alerts.ErrNotFound):
		sendError(c, http.StatusNotFound, "Alert not found")
	case errors.Is(err, alerts.ErrInvalidAlert), errors.Is(err, market.ErrUnsupportedInstrument):
		sendError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, alerts.ErrInvalidTransition):
		sendError(c, http.StatusConflict, err.Error())
	default:
		s.logger.Error("Alert operation failed", zap.Error(err))
		sendError(c, http.StatusInternalServerError, "Alert operation failed")
	}
}

// GET /api/v1/alerts?symbol=EUR/USD&status=active
func (s *Server) listAlerts(c *gin.Context) {
	list, err := s.alerts.List(c.Request.Context(), alerts.Filter{
		Symbol: c.Query("symbol"),
		Status: alerts.Status(c.Query("status")),
	})
	if err != nil {
		s.alertError(c, err)
		return
	}
	if list == nil {
		list = []alerts.Alert{}
	}
	c.JSON(http.StatusOK, gin.H{"alerts": list})
}

// POST /api/v1/alerts
func (s *Server) createAlert(c *gin.Context) {
	var req createAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	a, err := s.alerts.Create(c.Request.Context(), req.Symbol, req.Price, req.Condition, req.Channels)
	if err != nil {
		s.alertError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// DELETE /api/v1/alerts/:id
func (s *Server) deleteAlert(c *gin.Context) {
	if err := s.alerts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.alertError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/v1/alerts/:id/pause
func (s *Server) pauseAlert(c *gin.Context) {
	a, err := s.alerts.Pause(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.alertError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// POST /api/v1/alerts/:id/resume
func (s *Server) resumeAlert(c *gin.Context) {
	a, err := s.alerts.Resume(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.alertError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// POST /api/v1/alerts/evaluate
func (s *Server) evaluateAlerts(c *gin.Context) {
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	var (
		fired []alerts.Alert
		err   error
	)
	// Without prev the server compares against the last price it was sent.
	// Both paths record last for the next call.
	if req.Prev > 0 {
		fired, err = s.alerts.Evaluate(c.Request.Context(), req.Symbol, req.Prev, req.Last)
	} else {
		fired, err = s.alerts.Observe(c.Request.Context(), req.Symbol, req.Last)
	}
	if err != nil {
		s.alertError(c, err)
		return
	}
	if fired == nil {
		fired = []alerts.Alert{}
	}
	c.JSON(http.StatusOK, gin.H{"triggered": fired})
}
