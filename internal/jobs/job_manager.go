package jobs

import (
	"fmt"
	"log/slog"

	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/domain/services"
	"lastmile/internal/core/ports"
)

// JobManager owns the lifecycle of all background jobs.
type JobManager struct {
	estimateRefreshJob *EstimateRefreshJob
	logger             *slog.Logger
}

// NewJobManager creates a manager wiring every background job.
func NewJobManager(
	refreshHandler commands.RefreshEstimateCommandHandler,
	sessions ports.TrackingRepository,
	defaultVehicle services.VehicleType,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		estimateRefreshJob: NewEstimateRefreshJob(refreshHandler, sessions, defaultVehicle, logger),
		logger:             logger.With("component", "job_manager"),
	}
}

// StartAll starts every background job. If any job fails to start, the jobs
// already running are stopped before the error is returned.
func (m *JobManager) StartAll() error {
	if err := m.estimateRefreshJob.Start(); err != nil {
		return fmt.Errorf("failed to start estimate refresh job: %w", err)
	}

	m.logger.Info("all background jobs started")

	return nil
}

// StopAll stops every background job.
func (m *JobManager) StopAll() {
	m.estimateRefreshJob.Stop()
	m.logger.Info("all background jobs stopped")
}
