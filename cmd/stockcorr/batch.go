package main

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"stockCorrelation/internal/report"
)

// batchCmd implements the "batch" command.
type batchCmd struct {
	configPath string
}

func (*batchCmd) Name() string     { return "batch" }
func (*batchCmd) Synopsis() string { return "runs the configured analysis once and writes CSV and PNG files" }
func (*batchCmd) Usage() string {
	return `batch [-config config.yaml]

Fetches the configured tickers, computes daily and cumulative returns, the
correlation matrix and the portfolio value, then writes:

  <data_dir>/multi_stock_prices.csv
  <data_dir>/portfolio_value.csv
  <plots_dir>/multi_cumulative_returns.png
  <plots_dir>/correlation_matrix.png
  <plots_dir>/portfolio_growth.png
`
}

func (c *batchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", "config.yaml", "path to the YAML configuration file (optional)")
}

func (c *batchCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, log, err := setup(c.configPath)
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	p, err := cfg.Params()
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}

	b := &report.Batch{
		Source:   newSource(cfg, log),
		DataDir:  cfg.Output.DataDir,
		PlotsDir: cfg.Output.PlotsDir,
		Charts:   chartOptions(cfg),
		Log:      log,
	}
	if _, err := b.Run(ctx, p); err != nil {
		log.Error().Err(err).Msg("batch run failed")
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
