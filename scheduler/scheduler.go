package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"gitlab.com/vantagelabs/SignalVantage/helpers"
	"gitlab.com/vantagelabs/SignalVantage/services"
)

// Scheduler drives the two periodic jobs: the tracking pass and the backtest
// recompute. Each invocation runs to completion on its own; nothing is carried
// between runs.
type Scheduler struct {
	Cron        *cron.Cron
	Tracker     *services.SignalTrackerService
	Backtest    *services.BacktestService
	Ctx         context.Context
	passTimeout time.Duration
}

func NewScheduler(ctx context.Context, tracker *services.SignalTrackerService,
	backtest *services.BacktestService, passTimeout time.Duration) *Scheduler {

	if passTimeout <= 0 {
		passTimeout = 2 * time.Minute
	}
	return &Scheduler{
		Cron:        cron.New(cron.WithSeconds()),
		Tracker:     tracker,
		Backtest:    backtest,
		Ctx:         ctx,
		passTimeout: passTimeout,
	}
}

func (s *Scheduler) RegisterAll(trackingCron string, backtestCron string) error {
	if _, err := s.Cron.AddFunc(trackingCron, s.trackingPass); err != nil {
		return fmt.Errorf("register tracking pass: %w", err)
	}
	if _, err := s.Cron.AddFunc(backtestCron, s.backtestRun); err != nil {
		return fmt.Errorf("register backtest run: %w", err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.Cron.Start()
	helpers.Logger.Infoln("scheduler started")
}

func (s *Scheduler) Stop() {
	s.Cron.Stop()
	helpers.Logger.Infoln("scheduler stopped")
}

func (s *Scheduler) trackingPass() {
	ctx, cancel := context.WithTimeout(s.Ctx, s.passTimeout)
	defer cancel()

	report, err := s.Tracker.RunTrackingPass(ctx)
	if err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("tracking pass failed: %v", err))
		return
	}
	helpers.Logger.Infoln(fmt.Sprintf("tracking pass: %d tracked, %d transitioned", report.Tracked, report.Updated))
}

func (s *Scheduler) backtestRun() {
	if err := s.Backtest.ComputeAllBacktests(); err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("backtest run failed: %v", err))
	}
}
