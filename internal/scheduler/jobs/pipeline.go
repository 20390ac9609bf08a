// Package jobs holds the scheduled wrappers around the pipeline stages.
// Each job injects the wall clock as the run's reference time; the engines
// themselves never read it.
package jobs

import (
	"context"
	"time"

	"github.com/rmorand/sciquant/pkg/logger"
)

// RunFunc executes a pipeline stage at a given reference time.
type RunFunc func(ctx context.Context, now time.Time) error

// ScanJob generates picks every weekday after the close.
type ScanJob struct {
	run    RunFunc
	logger *logger.Logger
}

// NewScanJob creates the daily scan job.
func NewScanJob(run RunFunc, log *logger.Logger) *ScanJob {
	return &ScanJob{run: run, logger: log}
}

// Name implements scheduler.Job.
func (j *ScanJob) Name() string { return "daily_scan" }

// Schedule implements scheduler.Job: 21:30 UTC on weekdays, after the US
// close.
func (j *ScanJob) Schedule() string { return "0 30 21 * * 1-5" }

// Run implements scheduler.Job.
func (j *ScanJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled scan")
	return j.run(ctx, time.Now().UTC())
}

// VerifyJob reconciles matured picks hourly.
type VerifyJob struct {
	run    RunFunc
	logger *logger.Logger
}

// NewVerifyJob creates the hourly verification job.
func NewVerifyJob(run RunFunc, log *logger.Logger) *VerifyJob {
	return &VerifyJob{run: run, logger: log}
}

// Name implements scheduler.Job.
func (j *VerifyJob) Name() string { return "hourly_verify" }

// Schedule implements scheduler.Job.
func (j *VerifyJob) Schedule() string { return "0 0 * * * *" }

// Run implements scheduler.Job.
func (j *VerifyJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled verification")
	return j.run(ctx, time.Now().UTC())
}

// BacktestJob rebuilds the backtest report weekly.
type BacktestJob struct {
	run    RunFunc
	logger *logger.Logger
}

// NewBacktestJob creates the weekly backtest job.
func NewBacktestJob(run RunFunc, log *logger.Logger) *BacktestJob {
	return &BacktestJob{run: run, logger: log}
}

// Name implements scheduler.Job.
func (j *BacktestJob) Name() string { return "weekly_backtest" }

// Schedule implements scheduler.Job: Saturday morning, once markets are
// closed for the week.
func (j *BacktestJob) Schedule() string { return "0 0 8 * * 6" }

// Run implements scheduler.Job.
func (j *BacktestJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled backtest")
	return j.run(ctx, time.Now().UTC())
}
