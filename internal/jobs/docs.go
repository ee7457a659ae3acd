// Package jobs contains the background jobs of the delivery tracking
// service and the manager that owns their lifecycle.
//
// # Available jobs
//
// EstimateRefreshJob recomputes the delivery estimate of every active
// tracking session once a minute. The refresh measures the remaining leg
// from the rider's last reported location (or the pickup address before the
// first GPS fix) to the delivery address, carries the session's last known
// traffic, weather, and time-of-day factors forward, and stores the new
// ETA on the session.
//
// # Usage
//
// Jobs are not started individually. The composition root builds a
// JobManager with the required command handlers and starts everything at
// once:
//
//	manager := jobs.NewJobManager(refreshHandler, trackingReader, services.VehicleScooter, logger)
//	if err := manager.StartAll(); err != nil {
//		// handle startup failure
//	}
//	defer manager.StopAll()
//
// # Scheduling
//
// Jobs run on cron schedules with second-level precision via
// github.com/robfig/cron/v3. Each job owns its cron instance, so stopping
// one job never disturbs another.
//
// # Error handling
//
// A failure while processing one session is logged and skipped so the
// remaining sessions still get refreshed. Startup failures propagate out of
// StartAll after the already running jobs have been stopped.
package jobs
