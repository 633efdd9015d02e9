package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rb-rbloxk/ClubLiquidez-1/market"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CLUBLIQ_"

// Config represents the complete calculator configuration
type Config struct {
	Account    AccountConfig    `json:"account" yaml:"account"`
	Calculator CalculatorConfig `json:"calculator" yaml:"calculator"`
	Rates      RatesConfig      `json:"rates" yaml:"rates"`
	Alerts     AlertsConfig     `json:"alerts" yaml:"alerts"`
	Server     ServerConfig     `json:"server" yaml:"server"`
	Log        LogConfig        `json:"log" yaml:"log"`
}

// AccountConfig contains the default account used when a request omits it
type AccountConfig struct {
	Currency string  `json:"currency" yaml:"currency"`
	Balance  float64 `json:"balance" yaml:"balance"`
}

// CalculatorConfig contains calculator defaults and advisory limits.
// Percentages use the calculator scale (1 means 1%).
type CalculatorConfig struct {
	Instrument         string  `json:"instrument" yaml:"instrument"`
	RiskPercent        float64 `json:"risk_percent" yaml:"risk_percent"`
	StopPips           float64 `json:"stop_pips" yaml:"stop_pips"`
	Debounce           string  `json:"debounce" yaml:"debounce"` // e.g. "500ms"
	DefaultRiskPercent float64 `json:"default_risk_percent" yaml:"default_risk_percent"`
	MaxRiskPercent     float64 `json:"max_risk_percent" yaml:"max_risk_percent"`
	MinRR              float64 `json:"min_rr" yaml:"min_rr"`
}

// RatesConfig configures the exchange rate provider and its cache
type RatesConfig struct {
	BaseURL       string `json:"base_url" yaml:"base_url"`
	APIKey        string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Timeout       string `json:"timeout" yaml:"timeout"`
	CacheTTL      string `json:"cache_ttl" yaml:"cache_ttl"`
	RedisAddr     string `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty"`
	RedisPassword string `json:"redis_password,omitempty" yaml:"redis_password,omitempty"`
	RedisDB       int    `json:"redis_db,omitempty" yaml:"redis_db,omitempty"`
}

// AlertsConfig contains price alert storage parameters
type AlertsConfig struct {
	DBPath string `json:"db_path" yaml:"db_path"`
}

// ServerConfig contains HTTP API parameters
type ServerConfig struct {
	Addr            string `json:"addr" yaml:"addr"`
	ReadTimeout     string `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    string `json:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout string `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// LogConfig selects the zap level and encoding
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`   // debug, info, warn, error
	Format string `json:"format" yaml:"format"` // json or console
}

func parseDuration(name, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", name)
	}
	return d, nil
}

// DebounceDuration parses Calculator.Debounce.
func (c CalculatorConfig) DebounceDuration() (time.Duration, error) {
	return parseDuration("calculator.debounce", c.Debounce)
}

// TimeoutDuration parses Rates.Timeout.
func (r RatesConfig) TimeoutDuration() (time.Duration, error) {
	return parseDuration("rates.timeout", r.Timeout)
}

// CacheTTLDuration parses Rates.CacheTTL. Zero disables caching.
func (r RatesConfig) CacheTTLDuration() (time.Duration, error) {
	return parseDuration("rates.cache_ttl", r.CacheTTL)
}

// Durations parses the server timeouts.
func (s ServerConfig) Durations() (read, write, shutdown time.Duration, err error) {
	if read, err = parseDuration("server.read_timeout", s.ReadTimeout); err != nil {
		return
	}
	if write, err = parseDuration("server.write_timeout", s.WriteTimeout); err != nil {
		return
	}
	shutdown, err = parseDuration("server.shutdown_timeout", s.ShutdownTimeout)
	return
}

// Load returns Default() when path is empty, otherwise the file at path.
// Environment overrides are applied before validation.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if cfg, err = parse(data); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a file (JSON or YAML based on extension)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg, err := parse(data)
	if err != nil {
		return nil, err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func parse(data []byte) (*Config, error) {
	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}
	return cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process
// environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays CLUBLIQ_* environment variables.
func (c *Config) ApplyEnv() error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = v
		}
	}

	str("ACCOUNT_CURRENCY", &c.Account.Currency)
	str("INSTRUMENT", &c.Calculator.Instrument)
	str("RATES_BASE_URL", &c.Rates.BaseURL)
	str("RATES_API_KEY", &c.Rates.APIKey)
	str("RATES_TIMEOUT", &c.Rates.Timeout)
	str("RATES_CACHE_TTL", &c.Rates.CacheTTL)
	str("REDIS_ADDR", &c.Rates.RedisAddr)
	str("REDIS_PASSWORD", &c.Rates.RedisPassword)
	str("ALERTS_DB", &c.Alerts.DBPath)
	str("SERVER_ADDR", &c.Server.Addr)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	if v, ok := os.LookupEnv(EnvPrefix + "ACCOUNT_BALANCE"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sACCOUNT_BALANCE: %w", EnvPrefix, err)
		}
		c.Account.Balance = f
	}
	if v, ok := os.LookupEnv(EnvPrefix + "REDIS_DB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sREDIS_DB: %w", EnvPrefix, err)
		}
		c.Rates.RedisDB = n
	}
	return nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	// Determine format by extension
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if !market.IsAccountCurrency(c.Account.Currency) {
		return fmt.Errorf("account.currency %q is not supported", c.Account.Currency)
	}
	if c.Account.Balance <= 0 {
		return fmt.Errorf("account.balance must be positive")
	}
	if c.Calculator.RiskPercent <= 0 || c.Calculator.RiskPercent > 100 {
		return fmt.Errorf("calculator.risk_percent must be between 0 and 100")
	}
	if c.Calculator.Instrument == "" {
		return fmt.Errorf("calculator.instrument is required")
	}
	if _, err := market.Resolve(c.Calculator.Instrument); err != nil {
		return fmt.Errorf("unknown instrument: %s", c.Calculator.Instrument)
	}
	if c.Calculator.StopPips <= 0 {
		return fmt.Errorf("calculator.stop_pips must be positive")
	}
	if c.Calculator.MaxRiskPercent < 0 || c.Calculator.DefaultRiskPercent < 0 || c.Calculator.MinRR < 0 {
		return fmt.Errorf("calculator limits must not be negative")
	}
	if _, err := c.Calculator.DebounceDuration(); err != nil {
		return err
	}
	if _, err := c.Rates.TimeoutDuration(); err != nil {
		return err
	}
	if _, err := c.Rates.CacheTTLDuration(); err != nil {
		return err
	}
	if _, _, _, err := c.Server.Durations(); err != nil {
		return err
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	if c.Log.Format != "" && c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("log.format must be 'json' or 'console'")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			Currency: "USD",
			Balance:  10000,
		},
		Calculator: CalculatorConfig{
			Instrument:         "EUR/USD",
			RiskPercent:        1,
			StopPips:           20,
			Debounce:           "500ms",
			DefaultRiskPercent: 1,
			MaxRiskPercent:     2,
			MinRR:              1.5,
		},
		Rates: RatesConfig{
			Timeout:  "5s",
			CacheTTL: "1m",
		},
		Alerts: AlertsConfig{
			DBPath: "./alerts.db",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     "10s",
			WriteTimeout:    "10s",
			ShutdownTimeout: "10s",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
