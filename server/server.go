// Package server exposes the calculator and price alerts over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rb-rbloxk/ClubLiquidez-1/alerts"
	"github.com/rb-rbloxk/ClubLiquidez-1/market"
	"github.com/rb-rbloxk/ClubLiquidez-1/risk"
	"go.uber.org/zap"
)

type Options struct {
	// RateTimeout bounds each exchange rate lookup.
	RateTimeout time.Duration
	Policy      risk.Policy
	// DefaultAccountCurrency is used when a request leaves it blank.
	DefaultAccountCurrency string
}

type Server struct {
	router *gin.Engine
	rates  market.RateSource
	alerts *alerts.Service
	opts   Options
	logger *zap.Logger
}

func New(rates market.RateSource, alertSvc *alerts.Service, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.RateTimeout <= 0 {
		opts.RateTimeout = market.DefaultRateTimeout
	}
	if opts.DefaultAccountCurrency == "" {
		opts.DefaultAccountCurrency = "USD"
	}

	s := &Server{
		rates:  rates,
		alerts: alertSvc,
		opts:   opts,
		logger: logger,
	}
	s.router = s.setupRouter()
	return s
}

func (s *Server) setupRouter() *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(Logger(s.logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/instruments", s.listInstruments)
		v1.POST("/position-size", s.positionSize)
		v1.POST("/trade-plan", s.tradePlan)

		if s.alerts != nil {
			a := v1.Group("/alerts")
			a.GET("", s.listAlerts)
			a.POST("", s.createAlert)
			a.POST("/evaluate", s.evaluateAlerts)
			a.DELETE("/:id", s.deleteAlert)
			a.POST("/:id/pause", s.pauseAlert)
			a.POST("/:id/resume", s.resumeAlert)
		}
	}

	return router
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Config carries listener settings for Run.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, cfg Config) error {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	s.logger.Info("Server exited properly")
	return nil
}
