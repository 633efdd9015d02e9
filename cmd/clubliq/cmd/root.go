package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rb-rbloxk/ClubLiquidez-1/config"
	"github.com/rb-rbloxk/ClubLiquidez-1/fx"
	"github.com/rb-rbloxk/ClubLiquidez-1/market"
	"github.com/rb-rbloxk/ClubLiquidez-1/pkg/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "clubliq",
	Short: "Position sizing and risk tools for forex, gold and bitcoin",
	Long: `clubliq sizes trades so that a stop loss costs a fixed share of the account.

It provides tools for:
  - Position size from account size, risk % and stop loss in pips
  - Real-time account currency conversion with an approximate fallback
  - Trade plans from entry, stop and take profit prices
  - Sizing grids exported to CSV or Excel
  - Price alerts stored in SQLite
  - An HTTP API serving all of the above`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var (
	cfgFile  string
	envFile  string
	logLevel string

	cfg    *config.Config
	logger *zap.Logger
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON); defaults apply when empty")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with CLUBLIQ_* overrides")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

func setup() error {
	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}

	c, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	cfg = c

	l, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	logger = l
	return nil
}

// rateSource builds the provider client behind a Redis cache when one is
// configured, otherwise behind an in-process cache.
func rateSource(ctx context.Context) (market.RateSource, func(), error) {
	timeout, err := cfg.Rates.TimeoutDuration()
	if err != nil {
		return nil, nil, err
	}
	ttl, err := cfg.Rates.CacheTTLDuration()
	if err != nil {
		return nil, nil, err
	}

	client := fx.NewClient(cfg.Rates.BaseURL, cfg.Rates.APIKey, timeout, logger)
	cleanup := func() {}

	var cache fx.Cache = fx.NewMemoryCache()
	if cfg.Rates.RedisAddr != "" {
		rdb, err := fx.NewRedisClient(ctx, fx.RedisConfig{
			Addr:     cfg.Rates.RedisAddr,
			Password: cfg.Rates.RedisPassword,
			DB:       cfg.Rates.RedisDB,
		})
		if err != nil {
			logger.Warn("redis unavailable, using in-process rate cache", zap.Error(err))
		} else {
			cache = fx.NewRedisCache(rdb)
			cleanup = func() { _ = rdb.Close() }
		}
	}

	return fx.NewCachedSource(client, cache, ttl, logger), cleanup, nil
}

func rateTimeout() time.Duration {
	d, err := cfg.Rates.TimeoutDuration()
	if err != nil || d <= 0 {
		return market.DefaultRateTimeout
	}
	return d
}
