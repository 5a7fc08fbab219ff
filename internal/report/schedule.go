package report

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"stockCorrelation/internal/analysis"
)

// Scheduler re-runs a batch on a cron spec (with seconds field). A run that
// is still going when the next one fires causes that one to be skipped.
type Scheduler struct {
	Cron         *cron.Cron
	Batch        *Batch
	Params       analysis.Params
	LookbackDays int // when positive, each run covers the days before the run date
	Ctx          context.Context
	log          zerolog.Logger
	now          func() time.Time
}

// NewScheduler creates a scheduler for b.
func NewScheduler(ctx context.Context, b *Batch, p analysis.Params, lookbackDays int) *Scheduler {
	return &Scheduler{
		Cron:         cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		Batch:        b,
		Params:       p,
		LookbackDays: lookbackDays,
		Ctx:          ctx,
		log:          b.Log.With().Str("component", "scheduler").Logger(),
		now:          time.Now,
	}
}

// Register adds the batch job under spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.RunNow); err != nil {
		return fmt.Errorf("register batch task: %w", err)
	}
	s.log.Info().Str("spec", spec).Msg("batch task registered")
	return nil
}

func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the scheduler and waits for a running batch to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunNow executes one batch immediately.
func (s *Scheduler) RunNow() {
	p := Window(s.Params, s.LookbackDays, s.now())
	if _, err := s.Batch.Run(s.Ctx, p); err != nil {
		s.log.Error().Err(err).Msg("scheduled batch failed")
	}
}

// Window moves the date range of p to the lookbackDays calendar days ending
// with the day of now. The end date is exclusive, so it is the day after now.
// A non-positive lookback keeps p unchanged.
func Window(p analysis.Params, lookbackDays int, now time.Time) analysis.Params {
	if lookbackDays <= 0 {
		return p
	}
	y, m, d := now.UTC().Date()
	end := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	p.End = end
	p.Start = end.AddDate(0, 0, -lookbackDays)
	return p
}
