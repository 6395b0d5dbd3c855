package config

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"TickerLens/internal/model"
)

// Defaults for the analysis section.
const (
	DefaultPeriod              = "10Y"
	DefaultBenchmarkIndex      = "^GSPC"
	DefaultRiskFreeRate        = 0.05
	DefaultMovingAverageWindow = 20
	DefaultQuoteBaseURL        = "https://query2.finance.yahoo.com/v7/finance/options/"
	DefaultAnalysisCron        = "0 30 22 * * 1-5"
)

// DefaultQuoteHeaders is the fixed header set sent to the quote endpoint.
var DefaultQuoteHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
	"Accept":     "application/json",
}

// Analysis holds the parameters every Ticker computation falls back on.
type Analysis struct {
	Period              string   `yaml:"period"`
	BenchmarkIndex      string   `yaml:"benchmark_index"`
	RiskFreeRate        *float64 `yaml:"risk_free_rate"` // nil means DefaultRiskFreeRate
	MovingAverageWindow int      `yaml:"moving_average_window"`
}

// Rate returns a pointer to v, for setting Analysis.RiskFreeRate.
func Rate(v float64) *float64 { return &v }

// DefaultAnalysis returns the documented defaults.
func DefaultAnalysis() Analysis {
	return Analysis{
		Period:              DefaultPeriod,
		BenchmarkIndex:      DefaultBenchmarkIndex,
		RiskFreeRate:        Rate(DefaultRiskFreeRate),
		MovingAverageWindow: DefaultMovingAverageWindow,
	}
}

// RiskFree returns the configured risk-free rate, or DefaultRiskFreeRate when unset.
// An explicit zero is kept.
func (a Analysis) RiskFree() float64 {
	if a.RiskFreeRate == nil {
		return DefaultRiskFreeRate
	}
	return *a.RiskFreeRate
}

// WithDefaults fills unset fields.
func (a Analysis) WithDefaults() Analysis {
	if a.Period == "" {
		a.Period = DefaultPeriod
	}
	if a.BenchmarkIndex == "" {
		a.BenchmarkIndex = DefaultBenchmarkIndex
	}
	if a.RiskFreeRate == nil {
		a.RiskFreeRate = Rate(DefaultRiskFreeRate)
	}
	if a.MovingAverageWindow == 0 {
		a.MovingAverageWindow = DefaultMovingAverageWindow
	}
	return a
}

// Validate checks the analysis parameters.
func (a Analysis) Validate() error {
	if _, err := model.ParsePeriod(a.Period); err != nil {
		return fmt.Errorf("analysis.period: %w", err)
	}
	if strings.TrimSpace(a.BenchmarkIndex) == "" {
		return fmt.Errorf("analysis.benchmark_index is required")
	}
	if rf := a.RiskFree(); math.IsNaN(rf) || math.IsInf(rf, 0) {
		return fmt.Errorf("analysis.risk_free_rate must be finite")
	}
	if a.MovingAverageWindow <= 0 {
		return fmt.Errorf("analysis.moving_average_window must be positive")
	}
	return nil
}

// Quote configures the fundamentals endpoint.
type Quote struct {
	BaseURL string            `yaml:"base_url"`
	Headers map[string]string `yaml:"headers"`
}

// Config holds all application configuration.
type Config struct {
	Analysis   Analysis `yaml:"analysis"`
	Quote      Quote    `yaml:"quote"`
	DataSource struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"data_source"`
	Watchlist []string `yaml:"watchlist"`
	Schedule  struct {
		AnalysisCron string `yaml:"analysis_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Proxy string `yaml:"proxy"`
}

// Load reads .env and the YAML file at path, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TICKERLENS_PERIOD"); v != "" {
		cfg.Analysis.Period = v
	}
	if v := os.Getenv("TICKERLENS_BENCHMARK"); v != "" {
		cfg.Analysis.BenchmarkIndex = v
	}
	if v := os.Getenv("TICKERLENS_RISK_FREE_RATE"); v != "" {
		var rate float64
		if _, err := fmt.Sscanf(v, "%g", &rate); err != nil {
			return nil, fmt.Errorf("parse TICKERLENS_RISK_FREE_RATE: %w", err)
		}
		cfg.Analysis.RiskFreeRate = Rate(rate)
	}
	if v := os.Getenv("TICKERLENS_WATCHLIST"); v != "" {
		cfg.Watchlist = splitSymbols(v)
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_SOURCE_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_SOURCE_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_ANALYSIS"); v != "" {
		cfg.Schedule.AnalysisCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}

	// Defaults
	cfg.Analysis = cfg.Analysis.WithDefaults()
	if cfg.Quote.BaseURL == "" {
		cfg.Quote.BaseURL = DefaultQuoteBaseURL
	}
	if len(cfg.Quote.Headers) == 0 {
		cfg.Quote.Headers = make(map[string]string, len(DefaultQuoteHeaders))
		for k, v := range DefaultQuoteHeaders {
			cfg.Quote.Headers[k] = v
		}
	}
	if cfg.Schedule.AnalysisCron == "" {
		cfg.Schedule.AnalysisCron = DefaultAnalysisCron
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/tickerlens.db"
	}

	return cfg, nil
}

// Validate checks the settings every mode needs.
func (c *Config) Validate() error {
	return c.Analysis.Validate()
}

// ValidateWatch checks the extra settings the watch daemon needs.
func (c *Config) ValidateWatch() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if len(c.Watchlist) == 0 {
		return fmt.Errorf("watchlist must contain at least one symbol")
	}
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}

func splitSymbols(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
