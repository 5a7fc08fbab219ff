package main

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"stockCorrelation/internal/report"
)

// scheduleCmd implements the "schedule" command.
type scheduleCmd struct {
	configPath string
}

func (*scheduleCmd) Name() string     { return "schedule" }
func (*scheduleCmd) Synopsis() string { return "re-runs the batch analysis on a cron schedule" }
func (*scheduleCmd) Usage() string {
	return `schedule [-config config.yaml]

Runs the batch analysis every time schedule.cron fires (six fields, seconds
first; default "0 30 22 * * 1-5", after the US close on weekdays). With
schedule.lookback_days set, each run covers the last N calendar days instead
of the fixed analysis.start and analysis.end dates.
`
}

func (c *scheduleCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", "config.yaml", "path to the YAML configuration file (optional)")
}

func (c *scheduleCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	s := report.NewScheduler(ctx, b, p, cfg.Schedule.LookbackDays)
	if err := s.Register(cfg.Schedule.Cron); err != nil {
		log.Error().Err(err).Msg("schedule failed")
		return subcommands.ExitFailure
	}
	if cfg.Schedule.RunOnStart {
		s.RunNow()
	}
	s.Start()
	<-ctx.Done()
	s.Stop()
	return subcommands.ExitSuccess
}
