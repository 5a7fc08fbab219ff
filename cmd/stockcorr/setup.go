package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"stockCorrelation/internal/analysis"
	"stockCorrelation/internal/charts"
	"stockCorrelation/internal/config"
	"stockCorrelation/internal/logger"
	"stockCorrelation/internal/market"
)

// setup loads and validates the configuration and builds the logger.
func setup(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, err
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	if err := cfg.Validate(); err != nil {
		return nil, log, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, log, nil
}

func newSource(cfg *config.Config, log zerolog.Logger) analysis.Source {
	if cfg.Source.Kind == config.SourceCSV {
		log.Info().Str("path", cfg.Source.CSVPath).Msg("using csv price source")
		return market.NewCSVFile(cfg.Source.CSVPath)
	}
	return market.NewYahoo(market.YahooOptions{
		Hosts:   cfg.Source.Hosts,
		Timeout: cfg.Source.Timeout,
		Proxy:   cfg.Source.Proxy,
		Pause:   cfg.Source.Pause,
	}, log)
}

func chartOptions(cfg *config.Config) charts.Options {
	return charts.Options{Width: cfg.Output.ChartWidth, Height: cfg.Output.ChartHeight}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
