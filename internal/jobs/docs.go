// Package jobs provides scheduled background tasks for the manifest service.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
// Schedules are six-field expressions with a leading seconds field.
//
// # Available Jobs
//
// 1. GeocodeBackfillJob - resolves coordinates for items that have an address but no point
// 2. ManifestSyncJob - mirrors the manifest into the sync backend (only when one is configured)
//
// # Usage
//
//	jobManager := jobs.NewJobManager(
//		jobs.NewGeocodeBackfillJob(&geocodeHandler, "0 */5 * * * *", time.Second, logger),
//		jobs.NewManifestSyncJob(&syncHandler, "0 * * * * *", logger),
//	)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// Runs never overlap: a tick that fires while the previous run is busy is skipped.
// Failures are logged and retried on the next tick. A failed start stops any job
// that was already running.
package jobs
