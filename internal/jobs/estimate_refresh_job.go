package jobs

import (
	"context"
	"log/slog"

	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/domain/model/tracking"
	"lastmile/internal/core/domain/services"
	"lastmile/internal/core/ports"

	"github.com/robfig/cron/v3"
)

// EstimateRefreshJob periodically recomputes the ETA of every active
// tracking session so the estimate follows the rider's actual position
// instead of going stale after the last manual refresh.
type EstimateRefreshJob struct {
	handler  commands.RefreshEstimateCommandHandler
	sessions ports.TrackingRepository
	vehicle  services.VehicleType
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewEstimateRefreshJob creates a job that refreshes delivery estimates on a
// schedule. The vehicle type is a fleet-wide default used when a session's
// stored estimate carries no factors yet.
func NewEstimateRefreshJob(
	handler commands.RefreshEstimateCommandHandler,
	sessions ports.TrackingRepository,
	vehicle services.VehicleType,
	logger *slog.Logger,
) *EstimateRefreshJob {
	return &EstimateRefreshJob{
		handler:  handler,
		sessions: sessions,
		vehicle:  vehicle,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "estimate_refresh_job"),
	}
}

// Start begins the periodic estimate refresh, once a minute.
func (j *EstimateRefreshJob) Start() error {
	_, err := j.cron.AddFunc("0 * * * * *", func() {
		ctx := context.Background()
		j.refreshAll(ctx)
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("estimate refresh job started")

	return nil
}

// Stop halts the periodic estimate refresh.
func (j *EstimateRefreshJob) Stop() {
	j.cron.Stop()
	j.logger.Info("estimate refresh job stopped")
}

func (j *EstimateRefreshJob) refreshAll(ctx context.Context) {
	sessions, err := j.sessions.GetAllActive(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "listing active sessions failed", "error", err)
		return
	}

	for _, session := range sessions {
		cmd, err := commands.NewRefreshEstimateCommand(
			session.OfferID(), j.vehicle, currentFactors(session),
		)
		if err != nil {
			j.logger.ErrorContext(ctx, "building refresh estimate command failed",
				"offer_id", session.OfferID().String(), "error", err)
			continue
		}

		if err := j.handler.Handle(ctx, cmd); err != nil {
			j.logger.ErrorContext(ctx, "refreshing estimate failed",
				"offer_id", session.OfferID().String(), "error", err)
		}
	}
}

// currentFactors carries a session's last known conditions forward; a session
// that was never estimated gets neutral ones.
func currentFactors(session *tracking.Session) tracking.EstimateFactors {
	if estimate := session.Estimate(); estimate != nil {
		return estimate.Factors
	}

	return tracking.EstimateFactors{
		Traffic:   tracking.TrafficModerate,
		Weather:   tracking.WeatherClear,
		TimeOfDay: tracking.TimeOffPeak,
	}
}
