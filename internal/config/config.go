package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"stockCorrelation/internal/analysis"
)

// Config holds all application configuration.
type Config struct {
	Analysis struct {
		Tickers string  `yaml:"tickers"` // comma separated
		Start   string  `yaml:"start"`
		End     string  `yaml:"end"`
		Weights string  `yaml:"weights"` // comma separated, aligned with tickers
		Initial float64 `yaml:"initial"`
	} `yaml:"analysis"`
	Source struct {
		Kind    string        `yaml:"kind"` // yahoo or csv
		CSVPath string        `yaml:"csv_path"`
		Hosts   []string      `yaml:"hosts"`
		Timeout time.Duration `yaml:"timeout"`
		Pause   time.Duration `yaml:"pause"`
		Proxy   string        `yaml:"proxy"`
	} `yaml:"source"`
	Output struct {
		DataDir     string `yaml:"data_dir"`
		PlotsDir    string `yaml:"plots_dir"`
		ChartWidth  int    `yaml:"chart_width"`
		ChartHeight int    `yaml:"chart_height"`
	} `yaml:"output"`
	Schedule struct {
		Cron         string `yaml:"cron"` // six fields, seconds first
		LookbackDays int    `yaml:"lookback_days"`
		RunOnStart   bool   `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Server struct {
		Port        string   `yaml:"port"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Telegram struct {
		BotToken   string `yaml:"bot_token"`
		WebhookURL string `yaml:"webhook_url"`
	} `yaml:"telegram"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
}

const (
	SourceYahoo = "yahoo"
	SourceCSV   = "csv"
)

// Load reads .env, then the YAML file at path (optional), then applies
// environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	// Environment variable overrides
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("STOCKCORR_PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_PRETTY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Log.Pretty = b
		}
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Output.DataDir = v
	}
	if v := os.Getenv("PLOTS_DIR"); v != "" {
		cfg.Output.PlotsDir = v
	}
	if v := os.Getenv("PRICES_CSV"); v != "" {
		cfg.Source.Kind = SourceCSV
		cfg.Source.CSVPath = v
	}
	if v := os.Getenv("YAHOO_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Source.Timeout = d
		}
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Source.Proxy = v
	}
	if v := os.Getenv("SCHEDULE_CRON"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Schedule.RunOnStart = b
		}
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("WEBHOOK_PUBLIC_URL"); v != "" {
		cfg.Telegram.WebhookURL = v
	}

	// Defaults
	def := analysis.DefaultParams()
	if cfg.Analysis.Tickers == "" {
		cfg.Analysis.Tickers = def.Raw().Tickers
	}
	if cfg.Analysis.Start == "" {
		cfg.Analysis.Start = def.Raw().Start
	}
	if cfg.Analysis.End == "" {
		cfg.Analysis.End = def.Raw().End
	}
	if cfg.Analysis.Weights == "" {
		cfg.Analysis.Weights = def.Raw().Weights
	}
	if cfg.Analysis.Initial == 0 {
		cfg.Analysis.Initial = def.Initial
	}
	if cfg.Source.Kind == "" {
		cfg.Source.Kind = SourceYahoo
	}
	if cfg.Source.Timeout == 0 {
		cfg.Source.Timeout = 30 * time.Second
	}
	if cfg.Source.Pause == 0 {
		cfg.Source.Pause = 120 * time.Millisecond
	}
	if cfg.Output.DataDir == "" {
		cfg.Output.DataDir = "data"
	}
	if cfg.Output.PlotsDir == "" {
		cfg.Output.PlotsDir = "plots"
	}
	if cfg.Output.ChartWidth == 0 {
		cfg.Output.ChartWidth = 1000
	}
	if cfg.Output.ChartHeight == 0 {
		cfg.Output.ChartHeight = 500
	}
	if cfg.Schedule.Cron == "" {
		cfg.Schedule.Cron = "0 30 22 * * 1-5"
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8501"
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"*"}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceYahoo:
	case SourceCSV:
		if c.Source.CSVPath == "" {
			return fmt.Errorf("source.csv_path is required for the csv source")
		}
	default:
		return fmt.Errorf("source.kind must be %q or %q, got %q", SourceYahoo, SourceCSV, c.Source.Kind)
	}
	if c.Source.Timeout < 0 {
		return fmt.Errorf("source.timeout must not be negative")
	}
	if c.Source.Proxy != "" {
		if u, err := url.Parse(c.Source.Proxy); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("source.proxy must be an absolute URL such as http://host:port, got %q", c.Source.Proxy)
		}
	}
	if c.Output.ChartWidth < 0 || c.Output.ChartHeight < 0 {
		return fmt.Errorf("output chart size must not be negative")
	}
	if c.Schedule.LookbackDays < 0 {
		return fmt.Errorf("schedule.lookback_days must not be negative")
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.WebhookURL == "") {
		return fmt.Errorf("telegram.bot_token and telegram.webhook_url must be set together")
	}
	p, err := c.Params()
	if err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	return nil
}

// Params parses the configured analysis defaults.
func (c *Config) Params() (analysis.Params, error) {
	return analysis.ParseParams(analysis.RawParams{
		Tickers: c.Analysis.Tickers,
		Start:   c.Analysis.Start,
		End:     c.Analysis.End,
		Weights: c.Analysis.Weights,
		Initial: strconv.FormatFloat(c.Analysis.Initial, 'f', -1, 64),
	})
}

// TelegramEnabled reports whether the chat webhook should be registered.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.WebhookURL != ""
}
