package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"manifest/internal/core/application/geoannotator"
	"manifest/internal/core/application/usecases/commands"
)

// GeocodeRunner runs one batch geocoding pass.
type GeocodeRunner interface {
	Handle(ctx context.Context, cmd commands.GeocodeItemsCommand) (geoannotator.BatchReport, error)
}

// GeocodeBackfillJob periodically resolves coordinates for items that have an
// address but no point yet. A run still in progress when the next tick fires is
// not doubled; Stop cancels the run in flight.
type GeocodeBackfillJob struct {
	runner   GeocodeRunner
	schedule string
	delay    time.Duration
	cron     *cron.Cron
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewGeocodeBackfillJob creates the job. schedule is a six-field cron expression
// (seconds first); delay is the pause between geocoder calls within a run.
func NewGeocodeBackfillJob(runner GeocodeRunner, schedule string, delay time.Duration, logger *slog.Logger) *GeocodeBackfillJob {
	return &GeocodeBackfillJob{
		runner:   runner,
		schedule: schedule,
		delay:    delay,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "geocode_backfill_job"),
	}
}

// Start schedules the job.
func (j *GeocodeBackfillJob) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	if _, err := j.cron.AddFunc(j.schedule, func() { j.RunOnce(ctx) }); err != nil {
		cancel()
		return err
	}

	j.mu.Lock()
	j.cancel = cancel
	j.mu.Unlock()

	j.cron.Start()
	j.logger.InfoContext(ctx, "Geocode backfill job started", "schedule", j.schedule)
	return nil
}

// RunOnce performs a single pass and logs its report.
func (j *GeocodeBackfillJob) RunOnce(ctx context.Context) {
	cmd, err := commands.NewGeocodeItemsCommand(j.delay)
	if err != nil {
		j.logger.ErrorContext(ctx, "Geocode backfill job misconfigured", "error", err)
		return
	}

	report, err := j.runner.Handle(ctx, cmd)
	if err != nil {
		j.logger.WarnContext(ctx, "Geocode backfill job interrupted", "error", err, "resolved", report.Resolved)
		return
	}
	if report.Candidates > 0 {
		j.logger.InfoContext(ctx, "Geocode backfill job finished",
			"candidates", report.Candidates, "resolved", report.Resolved, "notFound", report.NotFound)
	}
}

// Stop cancels the run in flight and waits for it to return.
func (j *GeocodeBackfillJob) Stop() {
	j.mu.Lock()
	if j.cancel != nil {
		j.cancel()
	}
	j.mu.Unlock()

	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Geocode backfill job stopped")
}
