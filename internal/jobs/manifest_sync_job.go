package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"manifest/internal/core/application/usecases/commands"
)

// SyncRunner pushes the manifest to the sync backend.
type SyncRunner interface {
	Handle(ctx context.Context, cmd commands.SyncManifestCommand) (commands.SyncReport, error)
}

// ManifestSyncJob periodically mirrors the manifest into the sync backend.
type ManifestSyncJob struct {
	runner   SyncRunner
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewManifestSyncJob creates the job for a six-field cron schedule.
func NewManifestSyncJob(runner SyncRunner, schedule string, logger *slog.Logger) *ManifestSyncJob {
	return &ManifestSyncJob{
		runner:   runner,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "manifest_sync_job"),
	}
}

// Start schedules the job.
func (j *ManifestSyncJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.RunOnce(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Manifest sync job started", "schedule", j.schedule)
	return nil
}

// RunOnce performs a single sync. Failures are logged; the next tick retries.
func (j *ManifestSyncJob) RunOnce(ctx context.Context) {
	report, err := j.runner.Handle(ctx, commands.NewSyncManifestCommand())
	if err != nil {
		j.logger.ErrorContext(ctx, "Manifest sync job failed", "error", err)
		return
	}
	j.logger.DebugContext(ctx, "Manifest sync job finished",
		"created", report.Created, "updated", report.Updated, "unchanged", report.Unchanged)
}

// Stop stops scheduling and waits for a running sync.
func (j *ManifestSyncJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Manifest sync job stopped")
}
