package jobs

import (
	"fmt"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	geocodeBackfillJob *GeocodeBackfillJob
	manifestSyncJob    *ManifestSyncJob
}

// NewJobManager creates a job manager. Either job may be nil when its feature is
// not configured.
func NewJobManager(geocodeBackfillJob *GeocodeBackfillJob, manifestSyncJob *ManifestSyncJob) *JobManager {
	return &JobManager{
		geocodeBackfillJob: geocodeBackfillJob,
		manifestSyncJob:    manifestSyncJob,
	}
}

// StartAll starts all configured jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if jm.geocodeBackfillJob != nil {
		if err := jm.geocodeBackfillJob.Start(); err != nil {
			return fmt.Errorf("failed to start geocode backfill job: %w", err)
		}
	}

	if jm.manifestSyncJob != nil {
		if err := jm.manifestSyncJob.Start(); err != nil {
			// Stop already started jobs if this one fails
			if jm.geocodeBackfillJob != nil {
				jm.geocodeBackfillJob.Stop()
			}
			return fmt.Errorf("failed to start manifest sync job: %w", err)
		}
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	if jm.manifestSyncJob != nil {
		jm.manifestSyncJob.Stop()
	}
	if jm.geocodeBackfillJob != nil {
		jm.geocodeBackfillJob.Stop()
	}
}
